package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_GateWinsOverEverything(t *testing.T) {
	// Mentions a tool and years, but the licence phrasing decides.
	seg := "Must hold a valid 309A licence and have 5 years with AutoCAD"
	assert.Equal(t, TypeGate, Classify(seg))
}

func TestClassify_GateVocabulary(t *testing.T) {
	assert.Equal(t, TypeGate, Classify("Red Seal endorsement is mandatory"))
	assert.Equal(t, TypeGate, Classify("Security clearance at the secret level"))
	assert.Equal(t, TypeGate, Classify("Registered with the provincial college"))
	assert.Equal(t, TypeGate, Classify("Completion of a recognized apprenticeship program"))
}

func TestClassify_ToolByAlias(t *testing.T) {
	assert.Equal(t, TypeTool, Classify("Daily work in AutoCAD and Revit"))
	assert.Equal(t, TypeTool, Classify("We use node and docker in our stack"))
}

func TestClassify_ToolByContextualPattern(t *testing.T) {
	assert.Equal(t, TypeTool, Classify("Experience with SAP S/4HANA modules"))
	assert.Equal(t, TypeTool, Classify("Proficiency in MS Office Suite required daily"))
}

func TestClassify_ContextualPatternRejectsGenericPhrase(t *testing.T) {
	// "software" and "systems" carry no tool signal, so this is not a tool.
	assert.Equal(t, TypeHardSkill, Classify("Experience with software preferred for this role"))
	assert.NotEqual(t, TypeTool, Classify("Operate equipment safely around the yard"))
}

func TestClassify_ExperienceSignal(t *testing.T) {
	assert.Equal(t, TypeExperienceSignal, Classify("3+ years of electrical troubleshooting work"))
	assert.Equal(t, TypeExperienceSignal, Classify("A strong portfolio of completed projects"))
	assert.Equal(t, TypeExperienceSignal, Classify("Track record of shipped features at scale"))
	assert.Equal(t, TypeExperienceSignal, Classify("Previously managed a budget over $2M"))
	assert.Equal(t, TypeExperienceSignal, Classify("Completed clinical rotations in acute care"))
}

func TestClassify_SoftSignal(t *testing.T) {
	assert.Equal(t, TypeSoftSignal, Classify("Excellent communication and interpersonal abilities"))
	assert.Equal(t, TypeSoftSignal, Classify("Comfortable presenting to stakeholders weekly"))
}

func TestClassify_DefaultsToHardSkill(t *testing.T) {
	assert.Equal(t, TypeHardSkill, Classify("Read blueprints and schematics accurately"))
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	segments := []string{
		"Must have Red Seal certification",
		"Experience with AutoCAD required",
		"5 years in commercial plumbing",
		"Strong teamwork orientation",
		"Install and maintain HVAC units",
		"!!!",
		"x",
	}
	for _, seg := range segments {
		first := Classify(seg)
		assert.True(t, first.Valid(), "segment %q produced invalid type", seg)
		assert.Equal(t, first, Classify(seg), "segment %q not deterministic", seg)
	}
}

func TestTypeRank_GateSortsFirst(t *testing.T) {
	assert.Less(t, TypeGate.Rank(), TypeTool.Rank())
	assert.Less(t, TypeTool.Rank(), TypeExperienceSignal.Rank())
	assert.Less(t, TypeExperienceSignal.Rank(), TypeSoftSignal.Rank())
	assert.Less(t, TypeSoftSignal.Rank(), TypeHardSkill.Rank())
}

func TestCanonicalTool_AliasMapping(t *testing.T) {
	for _, alias := range []string{"node", "nodejs", "Node.js"} {
		name, ok := CanonicalTool(alias)
		assert.True(t, ok, alias)
		assert.Equal(t, "Node.js", name)
	}
}

func TestCanonicalTool_Unknown(t *testing.T) {
	_, ok := CanonicalTool("some in-house thing")
	assert.False(t, ok)
}

func TestFindToolMentions_NoSubstringFalsePositive(t *testing.T) {
	// "excel" must not fire inside "excellent".
	assert.Empty(t, findToolMentions("Excellent communication expected of all hires"))
}

func TestFindToolMentions_MultiWordAlias(t *testing.T) {
	got := findToolMentions("Build dashboards in Power BI for operations")
	assert.Equal(t, []string{"Power BI"}, got)
}

func TestPlausibleToolPhrase_RejectsLongPhrases(t *testing.T) {
	assert.False(t, plausibleToolPhrase("a wide variety of modern maintenance management approaches"))
}

func TestPlausibleToolPhrase_AcceptsStructuredNames(t *testing.T) {
	assert.True(t, plausibleToolPhrase("S/4HANA"))
	assert.True(t, plausibleToolPhrase("Unity 3D"))
	assert.True(t, plausibleToolPhrase("MS Office Suite"))
}
