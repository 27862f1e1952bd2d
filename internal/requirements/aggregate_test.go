package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractedFixture(typ Type, label, postingID string, conf float64) Extracted {
	return Extracted{
		Type:          typ,
		Label:         label,
		NormalizedKey: label, // tests use pre-normalized labels as keys
		Confidence:    conf,
		Evidence:      newEvidence(SourceAdzuna, "segment for "+label, postingID, conf),
	}
}

func TestAggregate_FrequencyCountsDistinctPostings(t *testing.T) {
	items := []Extracted{
		extractedFixture(TypeTool, "use autocad", "p1", 0.8),
		extractedFixture(TypeTool, "use autocad", "p1", 0.8), // same posting, no increment
		extractedFixture(TypeTool, "use autocad", "p2", 0.8),
	}

	got := Aggregate(items)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Frequency)
}

func TestAggregate_FrequencyCountsOccurrencesWithoutPostingID(t *testing.T) {
	items := []Extracted{
		extractedFixture(TypeHardSkill, "install fixtures", "", 0.7),
		extractedFixture(TypeHardSkill, "install fixtures", "", 0.7),
	}

	got := Aggregate(items)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Frequency)
}

func TestAggregate_HighestConfidenceLabelWins(t *testing.T) {
	low := extractedFixture(TypeTool, "use autocad", "p1", 0.6)
	high := extractedFixture(TypeTool, "use autocad", "p2", 0.9)
	high.Label = "Use AutoCAD in drafting workflows"

	got := Aggregate([]Extracted{low, high})
	require.Len(t, got, 1)
	assert.Equal(t, "Use AutoCAD in drafting workflows", got[0].Label)
}

func TestAggregate_TypeSeparatesKeys(t *testing.T) {
	items := []Extracted{
		extractedFixture(TypeTool, "same key", "p1", 0.8),
		extractedFixture(TypeHardSkill, "same key", "p1", 0.8),
	}
	assert.Len(t, Aggregate(items), 2)
}

func TestAggregate_EvidenceDedupAndCap(t *testing.T) {
	var items []Extracted
	for i := 0; i < 10; i++ {
		e := extractedFixture(TypeGate, "obtain licence", string(rune('a'+i)), 0.9)
		items = append(items, e)
	}
	// A literal duplicate evidence entry.
	items = append(items, items[0])

	got := Aggregate(items)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Evidence, maxEvidencePerPass)
	assert.Equal(t, 10, got[0].Frequency)
}

func TestMergeEvidence_DedupsAndCaps(t *testing.T) {
	var a, b []Evidence
	for i := 0; i < 5; i++ {
		a = append(a, newEvidence(SourceUserPosting, "user segment "+string(rune('a'+i)), "", 0.9))
		b = append(b, newEvidence(SourceAdzuna, "market segment "+string(rune('a'+i)), "p1", 0.8))
	}
	// Overlap with a must not appear twice.
	b = append(b, a[0])

	got := MergeEvidence(a, b)
	assert.Len(t, got, MaxStoredEvidence)
	// Entries from a come first and survive the cap untouched.
	assert.Equal(t, a, got[:5])

	seen := make(map[string]bool)
	for _, ev := range got {
		key := ev.Source + "|" + ev.Quote + "|" + ev.PostingID
		assert.False(t, seen[key], "duplicate evidence %q", key)
		seen[key] = true
	}
}

func TestMergeEvidence_ShortListsUnchanged(t *testing.T) {
	a := []Evidence{newEvidence(SourceUserPosting, "segment one", "", 0.9)}
	b := []Evidence{newEvidence(SourceAdzuna, "segment two", "p1", 0.8)}
	got := MergeEvidence(a, b)
	require.Len(t, got, 2)
	assert.Equal(t, a[0], got[0])
	assert.Equal(t, b[0], got[1])
}

func TestAggregate_SortOrder(t *testing.T) {
	items := []Extracted{
		extractedFixture(TypeHardSkill, "b skill", "p1", 0.7),
		extractedFixture(TypeGate, "a gate", "p2", 0.9),
		extractedFixture(TypeTool, "c tool", "p3", 0.8),
		extractedFixture(TypeTool, "c tool", "p4", 0.8),
	}

	got := Aggregate(items)
	require.Len(t, got, 3)
	// Highest frequency first.
	assert.Equal(t, "c tool", got[0].Label)
	// Same frequency tier: gate outranks hard_skill.
	assert.Equal(t, TypeGate, got[1].Type)
	assert.Equal(t, TypeHardSkill, got[2].Type)
}

func TestAggregate_GateSortsFirstWithinFrequencyTier(t *testing.T) {
	items := []Extracted{
		extractedFixture(TypeSoftSignal, "a soft", "p1", 0.6),
		extractedFixture(TypeGate, "z gate", "p2", 0.9),
	}
	got := Aggregate(items)
	require.Len(t, got, 2)
	assert.Equal(t, TypeGate, got[0].Type)
}

func TestAggregate_Idempotent(t *testing.T) {
	items := []Extracted{
		extractedFixture(TypeGate, "obtain licence", "p1", 0.9),
		extractedFixture(TypeTool, "use autocad", "p1", 0.8),
		extractedFixture(TypeTool, "use autocad", "p2", 0.8),
	}

	once := Aggregate(items)
	again := ReaggregateRecords(once)
	assert.Equal(t, once, again)
}

func TestActionable_DropsVagueAggregates(t *testing.T) {
	vague := Aggregated{Type: TypeHardSkill, Label: "mechanical experience"}
	solid := Aggregated{Type: TypeTool, Label: "Use AutoCAD in role-relevant workflows"}
	assert.False(t, Actionable(vague))
	assert.True(t, Actionable(solid))
}
