package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-planner/internal/requirements"
)

type fakeGenerator struct {
	out    string
	err    error
	delay  time.Duration
	calls  int
	prompt string
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.out, f.err
}

func (f *fakeGenerator) Close() error { return nil }

const codeSegment = "Knowledge of the provincial electrical code is required."

func TestEnrichLowConfidence_AcceptsValidCandidate(t *testing.T) {
	gen := &fakeGenerator{
		out: `[{"type": "hard_skill", "label": "Interpret the provincial electrical code", "quote": "Knowledge of the provincial electrical code is required."}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "a-1")

	require.Len(t, got, 1)
	assert.Equal(t, requirements.TypeHardSkill, got[0].Type)
	assert.Equal(t, "Interpret the provincial electrical code", got[0].Label)
	assert.Equal(t, llmConfidence, got[0].Confidence)
	assert.Equal(t, requirements.SourceAdzuna, got[0].Evidence.Source)
	assert.Equal(t, "a-1", got[0].Evidence.PostingID)
	assert.NotEmpty(t, got[0].NormalizedKey)
}

func TestEnrichLowConfidence_GeneratorErrorFailsClosed(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Nil(t, got)
}

func TestEnrichLowConfidence_InvalidJSONFailsClosed(t *testing.T) {
	gen := &fakeGenerator{out: "I could not find any requirements."}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Nil(t, got)
}

func TestEnrichLowConfidence_SchemaViolationRejected(t *testing.T) {
	gen := &fakeGenerator{
		out: `[{"type": "certification", "label": "Interpret the provincial electrical code", "quote": "Knowledge of the provincial electrical code is required."}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Nil(t, got)
}

func TestEnrichLowConfidence_FabricatedQuoteRejected(t *testing.T) {
	gen := &fakeGenerator{
		out: `[{"type": "hard_skill", "label": "Interpret building permits", "quote": "Familiarity with municipal building permits."}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Empty(t, got)
	assert.Equal(t, 1, gen.calls)
}

func TestEnrichLowConfidence_QuoteSpanningSegmentsRejected(t *testing.T) {
	// Each sentence is a separate segment; a quote stitched across both is
	// not a quote from either.
	text := "Knowledge of the provincial electrical code is required.\nAbility to read single line diagrams is required."
	gen := &fakeGenerator{
		out: `[{"type": "hard_skill", "label": "Interpret code and diagrams", "quote": "Knowledge of the provincial electrical code is required. Ability to read single line diagrams is required."}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), text, nil, requirements.SourceAdzuna, "")
	assert.Empty(t, got)
	assert.Equal(t, 1, gen.calls)
}

func TestEnrichLowConfidence_QuoteContainingWholeTextRejected(t *testing.T) {
	// A quote that contains the whole posting plus invented trailing words
	// must not pass as sourced text.
	gen := &fakeGenerator{
		out: `[{"type": "hard_skill", "label": "Interpret the provincial electrical code", "quote": "Knowledge of the provincial electrical code is required. Familiarity with arc flash suites expected."}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Empty(t, got)
	assert.Equal(t, 1, gen.calls)
}

func TestEnrichLowConfidence_QuoteMatchIgnoresFormatting(t *testing.T) {
	gen := &fakeGenerator{
		out: `[{"type": "hard_skill", "label": "Interpret the provincial electrical code", "quote": "knowledge of the  provincial electrical CODE is required"}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	require.Len(t, got, 1)
}

func TestEnrichLowConfidence_NoUncoveredSegmentsSkipsModel(t *testing.T) {
	covered := []requirements.Extracted{{
		Type:       requirements.TypeHardSkill,
		Label:      "Interpret the provincial electrical code",
		Confidence: 0.95,
		Evidence: requirements.Evidence{
			Source:     requirements.SourceAdzuna,
			Quote:      codeSegment,
			Confidence: 0.95,
		},
	}}

	gen := &fakeGenerator{out: "[]"}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, covered, requirements.SourceAdzuna, "a-1")
	assert.Nil(t, got)
	assert.Zero(t, gen.calls)
}

func TestEnrichLowConfidence_TimeoutFailsClosed(t *testing.T) {
	gen := &fakeGenerator{delay: 100 * time.Millisecond, out: "[]"}
	e := New(gen).WithTimeout(10 * time.Millisecond)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Nil(t, got)
}

func TestEnrichLowConfidence_PromptCappedAtSegmentLimit(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("Knowledge of regulation set %d is required.", i))
	}
	text := strings.Join(lines, "\n")

	gen := &fakeGenerator{out: "[]"}
	e := New(gen)

	e.EnrichLowConfidence(context.Background(), text, nil, requirements.SourceAdzuna, "")
	require.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.prompt, "24. ")
	assert.NotContains(t, gen.prompt, "25. ")
}

func TestEnrichLowConfidence_DuplicateCandidatesDeduped(t *testing.T) {
	gen := &fakeGenerator{
		out: `[
			{"type": "hard_skill", "label": "Interpret the provincial electrical code", "quote": "Knowledge of the provincial electrical code is required."},
			{"type": "hard_skill", "label": "Interpret the Provincial Electrical Code", "quote": "Knowledge of the provincial electrical code is required."}
		]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Len(t, got, 1)
}

func TestEnrichLowConfidence_VagueLabelRejected(t *testing.T) {
	gen := &fakeGenerator{
		out: `[{"type": "soft_signal", "label": "communication", "quote": "Knowledge of the provincial electrical code is required."}]`,
	}
	e := New(gen)

	got := e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, "")
	assert.Empty(t, got)
}

func TestCleanJSONBlock_StripsFences(t *testing.T) {
	in := "```json\n[{\"type\": \"tool\"}]\n```"
	assert.Equal(t, `[{"type": "tool"}]`, cleanJSONBlock(in))
}

func TestNilEnricherIsInert(t *testing.T) {
	var e *Enricher
	assert.Nil(t, e.EnrichLowConfidence(context.Background(), codeSegment, nil, requirements.SourceAdzuna, ""))
}
