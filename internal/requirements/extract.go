package requirements

import (
	"regexp"
	"strings"

	"github.com/jonathan/career-planner/internal/textkit"
)

const (
	minSegmentLen  = 10
	maxSegmentLen  = 280
	maxSegments    = 120
	baseConfidence = 0.7
)

// reSegmentSplit breaks raw text on newlines, bullet markers, and sentence
// boundaries.
var reSegmentSplit = regexp.MustCompile(`[\n\r]+|[•▪·]|(?:[.!?])\s+`)

// SplitSegments splits raw text into bounded segments: 10-280 characters
// after trimming, capped at 120 segments per text.
func SplitSegments(text string) []string {
	parts := reSegmentSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		seg := strings.TrimSpace(strings.Trim(p, "-*— \t"))
		if len(seg) < minSegmentLen {
			continue
		}
		if len(seg) > maxSegmentLen {
			seg = textkit.ClipRunes(seg, maxSegmentLen)
			if i := strings.LastIndex(seg, " "); i > maxSegmentLen/2 {
				seg = seg[:i]
			}
		}
		out = append(out, seg)
		if len(out) == maxSegments {
			break
		}
	}
	return out
}

// Extract runs the full requirement extraction over one text source.
// source tags the resulting evidence; postingID may be empty for user text.
// Results are deduplicated within the source by (type, normalizedKey).
func Extract(text, source, postingID string) []Extracted {
	var out []Extracted
	seen := make(map[string]bool)

	add := func(typ Type, label, segment string, confidence float64) {
		shaped := ShapeTaskLabel(label)
		if shaped == "" {
			return
		}
		key := textkit.NormalizeKey(shaped)
		dedupKey := string(typ) + "|" + key
		if seen[dedupKey] {
			return
		}
		seen[dedupKey] = true
		out = append(out, Extracted{
			Type:          typ,
			Label:         shaped,
			NormalizedKey: key,
			Confidence:    confidence,
			Evidence:      newEvidence(source, segment, postingID, confidence),
		})
	}

	for _, segment := range SplitSegments(text) {
		extractSegment(segment, add)
	}
	return out
}

// extractSegment emits every requirement one segment supports. A segment can
// legitimately yield several records of different types (a gate plus a tool
// plus an experience signal).
func extractSegment(segment string, add func(Type, string, string, float64)) {
	// Tools: every mention becomes its own requirement.
	for _, tool := range findToolMentions(segment) {
		add(TypeTool, toolLabel(tool), segment, 0.85)
	}
	if len(findToolMentions(segment)) == 0 {
		if phrase, ok := contextualToolPhrase(segment); ok {
			if canonical, known := CanonicalTool(phrase); known {
				phrase = canonical
			}
			add(TypeTool, toolLabel(phrase), segment, 0.75)
		}
	}

	// Gates: named credentials first, generic phrasing only as fallback.
	if reGate.MatchString(segment) {
		for _, label := range gateLabels(segment) {
			add(TypeGate, label, segment, 0.9)
		}
	}

	// Experience signals.
	if reYears.MatchString(segment) || rePortfolio.MatchString(segment) ||
		reShipped.MatchString(segment) || reBudget.MatchString(segment) ||
		reClinical.MatchString(segment) {
		if label := experienceLabel(segment); label != "" {
			add(TypeExperienceSignal, label, segment, 0.8)
		}
	}

	// Soft signals only when the segment classified soft overall, so a gate
	// sentence mentioning "communication" does not double-emit.
	if Classify(segment) == TypeSoftSignal {
		add(TypeSoftSignal, softSignalLabel(segment), segment, 0.65)
	}

	// Hard skill attempt, gated on an action verb inside the segment.
	if label := hardSkillLabel(segment); label != "" {
		add(TypeHardSkill, label, segment, baseConfidence)
	}
}

// CoverageThreshold is the heuristic-confidence floor below which a segment
// counts as poorly covered for enrichment purposes.
const CoverageThreshold = 0.81

// UncoveredSegments returns the segments of text that contain requirement-cue
// vocabulary but are either untouched by the extracted set or only covered at
// confidence below CoverageThreshold.
func UncoveredSegments(text string, extracted []Extracted) []string {
	covered := make(map[string]float64)
	for _, e := range extracted {
		q := textkit.Normalize(e.Evidence.Quote)
		if prev, ok := covered[q]; !ok || e.Confidence > prev {
			covered[q] = e.Confidence
		}
	}

	var out []string
	for _, segment := range SplitSegments(text) {
		if !hasRequirementCue(segment) {
			continue
		}
		// Stored quotes are the segment clipped to maxQuoteLen, so the
		// lookup key has to go through the same clip.
		key := textkit.Normalize(textkit.ClipRunes(segment, maxQuoteLen))
		conf, ok := covered[key]
		if !ok || conf < CoverageThreshold {
			out = append(out, segment)
		}
	}
	return out
}

// reRequirementCue marks segments worth a second, model-assisted look.
var reRequirementCue = regexp.MustCompile(`(?i)\b(must|required?|preferr?ed|asset|qualifi|experience|abilit|proficien|knowledge|responsib|demonstrated)\b`)

func hasRequirementCue(segment string) bool {
	return reRequirementCue.MatchString(segment)
}
