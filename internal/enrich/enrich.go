package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/career-planner/internal/requirements"
	"github.com/jonathan/career-planner/internal/textkit"
)

const (
	// DefaultTimeout bounds one enrichment call end to end.
	DefaultTimeout = 18 * time.Second

	// maxPromptSegments caps how many uncovered segments go into a prompt.
	maxPromptSegments = 24

	// llmConfidence is assigned to every accepted model candidate. It sits
	// below every heuristic confidence so rule-based evidence wins merges.
	llmConfidence = 0.6

	maxQuoteLen = 220

	// maxQuoteOverhang is how many compact characters a quote may exceed its
	// source segment by and still count as that segment lightly rewrapped. It
	// is far below the compact length of any neighboring segment, so a quote
	// stitched across segment boundaries never fits the allowance.
	maxQuoteOverhang = 8
)

// candidateSchema validates the model output before anything is trusted.
const candidateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"maxItems": 24,
	"items": {
		"type": "object",
		"required": ["type", "label", "quote"],
		"additionalProperties": false,
		"properties": {
			"type": {
				"type": "string",
				"enum": ["gate", "tool", "experience_signal", "soft_signal", "hard_skill"]
			},
			"label": {"type": "string", "minLength": 3, "maxLength": 180},
			"quote": {"type": "string", "minLength": 3, "maxLength": 300}
		}
	}
}`

type candidate struct {
	Type  requirements.Type `json:"type"`
	Label string            `json:"label"`
	Quote string            `json:"quote"`
}

// Enricher proposes typed requirements for segments the rule-based extractor
// could not classify.
type Enricher struct {
	gen     Generator
	timeout time.Duration
}

// New creates an enricher over a generator.
func New(gen Generator) *Enricher {
	return &Enricher{gen: gen, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-call timeout.
func (e *Enricher) WithTimeout(d time.Duration) *Enricher {
	e.timeout = d
	return e
}

// EnrichLowConfidence returns extra requirement candidates for the segments
// of text that covered leaves unclassified. Any failure, including timeout,
// schema mismatch, or a quote the source text does not contain, drops the
// affected candidates silently.
func (e *Enricher) EnrichLowConfidence(ctx context.Context, text string, covered []requirements.Extracted, source, postingID string) []requirements.Extracted {
	if e == nil || e.gen == nil {
		return nil
	}

	segments := requirements.UncoveredSegments(text, covered)
	if len(segments) == 0 {
		return nil
	}
	if len(segments) > maxPromptSegments {
		segments = segments[:maxPromptSegments]
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.gen.GenerateJSON(ctx, buildPrompt(segments))
	if err != nil {
		return nil
	}

	candidates, err := parseCandidates(out)
	if err != nil {
		return nil
	}

	return acceptCandidates(candidates, segments, source, postingID)
}

// parseCandidates schema-validates and decodes the model output.
func parseCandidates(raw string) ([]candidate, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(candidateSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate candidates: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("candidates do not match schema")
	}

	var candidates []candidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return candidates, nil
}

// acceptCandidates keeps candidates whose quote provably comes from one of
// the prompted segments and whose label survives task shaping.
func acceptCandidates(candidates []candidate, segments []string, source, postingID string) []requirements.Extracted {
	compactSegs := make([]string, 0, len(segments))
	for _, s := range segments {
		compactSegs = append(compactSegs, textkit.Compact(s))
	}

	var out []requirements.Extracted
	seen := make(map[string]bool)
	for _, c := range candidates {
		if !c.Type.Valid() {
			continue
		}
		if !quoteMatchesSegment(c.Quote, compactSegs) {
			continue
		}
		label := requirements.ShapeTaskLabel(c.Label)
		if label == "" {
			continue
		}

		key := textkit.NormalizeKey(label)
		if key == "" || seen[string(c.Type)+"|"+key] {
			continue
		}
		seen[string(c.Type)+"|"+key] = true

		quote := textkit.ClipRunes(c.Quote, maxQuoteLen)
		out = append(out, requirements.Extracted{
			Type:          c.Type,
			Label:         label,
			NormalizedKey: key,
			Confidence:    llmConfidence,
			Evidence: requirements.Evidence{
				Source:     source,
				Quote:      quote,
				PostingID:  postingID,
				Confidence: llmConfidence,
			},
		})
	}
	return out
}

// quoteMatchesSegment checks the quote against each prompted segment on its
// own. A quote contained in one segment counts. A quote that contains a
// segment counts only when the excess stays under maxQuoteOverhang, so a
// slight rewrap of a short line passes while a quote spanning two segments or
// padding a segment with invented text does not.
func quoteMatchesSegment(quote string, compactSegs []string) bool {
	cq := textkit.Compact(quote)
	if cq == "" {
		return false
	}
	for _, cs := range compactSegs {
		if cs == "" {
			continue
		}
		if strings.Contains(cs, cq) {
			return true
		}
		if len(cq)-len(cs) <= maxQuoteOverhang && strings.Contains(cq, cs) {
			return true
		}
	}
	return false
}

// buildPrompt numbers the uncovered segments and asks for strict JSON.
func buildPrompt(segments []string) string {
	var b strings.Builder
	b.WriteString("You classify job-posting requirement statements.\n")
	b.WriteString("For each numbered segment below, decide whether it states a concrete requirement. ")
	b.WriteString("Respond with a JSON array only. Each element must be an object with keys ")
	b.WriteString(`"type" (one of "gate", "tool", "experience_signal", "soft_signal", "hard_skill"), `)
	b.WriteString(`"label" (a short imperative task phrase), and "quote" (the exact segment text the requirement came from).`)
	b.WriteString("\nSkip segments that state no requirement. Do not invent requirements.\n\nSegments:\n")
	for i, s := range segments {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}
