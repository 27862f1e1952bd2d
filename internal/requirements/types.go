// Package requirements turns free-text job-requirement statements into typed,
// evidence-backed requirement records and aggregates them across text sources.
package requirements

import "github.com/jonathan/career-planner/internal/textkit"

// Type classifies a requirement statement.
type Type string

const (
	TypeGate             Type = "gate"
	TypeTool             Type = "tool"
	TypeExperienceSignal Type = "experience_signal"
	TypeSoftSignal       Type = "soft_signal"
	TypeHardSkill        Type = "hard_skill"
)

// typeRanks orders types for tie-breaks; gates sort first.
var typeRanks = map[Type]int{
	TypeGate:             0,
	TypeTool:             1,
	TypeExperienceSignal: 2,
	TypeSoftSignal:       3,
	TypeHardSkill:        4,
}

// Rank returns the sort rank of t. Unknown types sort last.
func (t Type) Rank() int {
	if r, ok := typeRanks[t]; ok {
		return r
	}
	return len(typeRanks)
}

// Valid reports whether t is one of the five allowed types.
func (t Type) Valid() bool {
	_, ok := typeRanks[t]
	return ok
}

// Evidence source tags, in priority order.
const (
	SourceUserPosting = "user_posting"
	SourceAdzuna      = "adzuna"
	SourceOnet        = "onet"
)

// maxQuoteLen bounds evidence quotes.
const maxQuoteLen = 220

// Evidence ties a requirement back to the text it was derived from. Quote is
// a verbatim substring of its source segment. Immutable once created.
type Evidence struct {
	Source     string  `json:"source"`
	Quote      string  `json:"quote"`
	PostingID  string  `json:"posting_id,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Extracted is a single classifier output for one segment.
type Extracted struct {
	Type          Type     `json:"type"`
	Label         string   `json:"label"`
	NormalizedKey string   `json:"normalized_key"`
	Confidence    float64  `json:"confidence"`
	Evidence      Evidence `json:"evidence"`
}

// Aggregated merges extracted requirements sharing (type, normalizedKey)
// across text sources.
type Aggregated struct {
	Type          Type       `json:"type"`
	Label         string     `json:"label"`
	NormalizedKey string     `json:"normalized_key"`
	Frequency     int        `json:"frequency"`
	Evidence      []Evidence `json:"evidence"`
}

// newEvidence builds an evidence record with the quote clipped to the
// allowed length. Clipping keeps a rune-aligned prefix so the quote stays
// valid UTF-8 and a literal substring of the segment.
func newEvidence(source, segment, postingID string, confidence float64) Evidence {
	quote := textkit.ClipRunes(segment, maxQuoteLen)
	return Evidence{
		Source:     source,
		Quote:      quote,
		PostingID:  postingID,
		Confidence: confidence,
	}
}
