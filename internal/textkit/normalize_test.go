package textkit

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_LowercasesAndStripsPunctuation(t *testing.T) {
	assert.Equal(t, "registered nurse rn", Normalize("Registered Nurse (RN)!"))
}

func TestNormalize_ExpandsSymbolAliases(t *testing.T) {
	assert.Equal(t, "cplusplus and csharp developer", Normalize("C++ and C# developer"))
	assert.Equal(t, "nodejs", Normalize("Node.js"))
	assert.Equal(t, "cicd pipeline", Normalize("CI/CD pipeline"))
}

func TestNormalize_FoldsDiacritics(t *testing.T) {
	assert.Equal(t, "electricien agree", Normalize("Électricien agréé"))
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "heavy duty mechanic", Normalize("  Heavy-Duty   Mechanic \n"))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("  --- "))
}

func TestCompact_RemovesWhitespace(t *testing.T) {
	assert.Equal(t, "autocad", Compact("Auto CAD"))
	assert.Equal(t, "autocad", Compact("AutoCAD"))
}

func TestClipRunes_ShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "électricien", ClipRunes("électricien", 40))
	assert.Equal(t, "", ClipRunes("", 10))
}

func TestClipRunes_MultiByteBoundary(t *testing.T) {
	// "x" shifts every two-byte "é" onto an odd offset, so a byte-exact cut
	// at 220 would land mid-rune.
	s := "x" + strings.Repeat("é", 115)
	got := ClipRunes(s, 220)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(s, got))
	assert.LessOrEqual(t, len(got), 220)
	assert.Equal(t, 219, len(got))
}

func TestTokens_StemsTrivialPlurals(t *testing.T) {
	assert.Equal(t, []string{"certification", "tool", "safety"}, Tokens("certifications tools safety"))
}

func TestTokens_StemsIesToY(t *testing.T) {
	assert.Equal(t, []string{"capability", "assembly"}, Tokens("capabilities assemblies"))
}

func TestTokens_KeepsShortTokens(t *testing.T) {
	// "gas" is <= 3 chars so the trailing-s rule must not fire
	assert.Equal(t, []string{"gas", "fitter"}, Tokens("gas fitters"))
}

func TestTokens_IrregularPlurals(t *testing.T) {
	assert.Equal(t, []string{"analysis", "of", "data"}, Tokens("analyses of data"))
}

func TestNormalizeKey_Deterministic(t *testing.T) {
	a := NormalizeKey("Use AutoCAD in role-relevant workflows")
	b := NormalizeKey("use  autocad in Role Relevant workflows!")
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestSimilarity_IdenticalAndDisjoint(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("electrical apprentice", "Electrical Apprentices"), 0.001)
	assert.Equal(t, 0.0, Similarity("plumber", "welder"))
}

func TestSimilarity_PartialOverlap(t *testing.T) {
	// tokens: {software, engineer} vs {software, developer} -> 1/3
	assert.InDelta(t, 1.0/3.0, Similarity("software engineer", "software developer"), 0.001)
}

func TestSimilarity_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "electrician"))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestDiceCoefficient_Identical(t *testing.T) {
	assert.Equal(t, 1.0, DiceCoefficient("welder", "Welder"))
}

func TestDiceCoefficient_ShortInput(t *testing.T) {
	assert.Equal(t, 0.0, DiceCoefficient("a", "ab"))
	assert.Equal(t, 0.0, DiceCoefficient("", "millwright"))
}

func TestDiceCoefficient_CloseSpelling(t *testing.T) {
	got := DiceCoefficient("millwright", "milwright")
	assert.Greater(t, got, 0.8)
	assert.Less(t, got, 1.0)
}

func TestDiceCoefficient_Symmetric(t *testing.T) {
	assert.InDelta(t,
		DiceCoefficient("carpenter", "carpentry"),
		DiceCoefficient("carpentry", "carpenter"),
		0.0001)
}

func TestClamp01_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.42, Clamp01(0.42))
}
