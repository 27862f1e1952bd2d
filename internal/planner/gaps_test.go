package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-planner/internal/requirements"
)

func TestSkillGaps_UserSkillSuppressesGap(t *testing.T) {
	reqs := []requirements.Aggregated{
		{Type: requirements.TypeTool, Label: "Use AutoCAD in role-relevant workflows", NormalizedKey: "autocad", Frequency: 3},
		{Type: requirements.TypeGate, Label: "Obtain Red Seal certification before applying", NormalizedKey: "red seal", Frequency: 2},
	}
	input := &Input{Skills: []string{"AutoCAD"}}

	gaps := skillGaps(reqs, input)
	require.Len(t, gaps, 1)
	assert.Equal(t, requirements.TypeGate, gaps[0].Type)
}

func TestSkillGaps_ExperienceTextSuppressesGap(t *testing.T) {
	reqs := []requirements.Aggregated{
		{Type: requirements.TypeGate, Label: "Obtain Red Seal certification before applying", NormalizedKey: "red seal", Frequency: 2},
	}
	input := &Input{ExperienceText: "Earned my Red Seal in 2021 after finishing the apprenticeship."}

	assert.Empty(t, skillGaps(reqs, input))
}

func TestSkillGaps_VagueLabelFiltered(t *testing.T) {
	reqs := []requirements.Aggregated{
		{Type: requirements.TypeSoftSignal, Label: "communication", NormalizedKey: "communication", Frequency: 9},
		{Type: requirements.TypeTool, Label: "Use AutoCAD in role-relevant workflows", NormalizedKey: "autocad", Frequency: 1},
	}

	gaps := skillGaps(reqs, &Input{})
	require.Len(t, gaps, 1)
	assert.Equal(t, "Use AutoCAD in role-relevant workflows", gaps[0].Label)
}

func TestBuildRoadmap_PhasesByType(t *testing.T) {
	gaps := []SkillGap{
		{Label: "Obtain Red Seal certification before applying", Type: requirements.TypeGate},
		{Label: "Use AutoCAD in role-relevant workflows", Type: requirements.TypeTool},
		{Label: "Demonstrate 3+ years of relevant experience", Type: requirements.TypeExperienceSignal},
	}

	r := buildRoadmap(gaps, nil, 12)
	assert.Equal(t, []string{"Obtain Red Seal certification before applying"}, r.Immediate)
	assert.Equal(t, []string{"Use AutoCAD in role-relevant workflows"}, r.ShortTerm)
	assert.Equal(t, []string{"Demonstrate 3+ years of relevant experience"}, r.MediumTerm)
}

func TestBuildRoadmap_ShortTimelinePullsToolsForward(t *testing.T) {
	gaps := []SkillGap{
		{Label: "Use AutoCAD in role-relevant workflows", Type: requirements.TypeTool},
	}

	r := buildRoadmap(gaps, nil, 2)
	assert.Contains(t, r.Immediate, "Use AutoCAD in role-relevant workflows")
	assert.Empty(t, r.ShortTerm)
}

func TestBuildRoadmap_MissingSkillsAppended(t *testing.T) {
	r := buildRoadmap(nil, []string{"electrical wiring", "blueprint reading"}, 12)
	assert.Equal(t, []string{"Build working proficiency in electrical wiring"}, r.ShortTerm)
	assert.Equal(t, []string{"Build working proficiency in blueprint reading"}, r.MediumTerm)
}

func TestResumeReframes_MetricSegmentsSurface(t *testing.T) {
	text := "Managed a portfolio of 40 accounts worth $2M annually.\nHelped teammates when needed.\nCut churn by 12% over two quarters."

	got := resumeReframes(text)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "40 accounts")
	assert.Contains(t, got[1], "12%")
}

func TestResumeReframes_NoMetricsSuggestsAddingThem(t *testing.T) {
	got := resumeReframes("Helped customers and wrote internal docs.")
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "quantifiable")
}

func TestResumeReframes_EmptyTextYieldsNothing(t *testing.T) {
	assert.Empty(t, resumeReframes("   "))
}

func TestBottleneck_NamesWeakestComponent(t *testing.T) {
	b := Breakdown{
		SkillOverlap:         10, // 25% of 40
		ExperienceSimilarity: 20,
		EducationAlignment:   10,
		CertificationGap:     3, // 20% of 15
		TimelineFeasibility:  9,
	}
	assert.Contains(t, bottleneck(b), "missing credentials")
}

func TestBottleneck_TieBreaksInComponentOrder(t *testing.T) {
	b := Breakdown{} // all zero
	assert.Contains(t, bottleneck(b), "skill coverage")
}
