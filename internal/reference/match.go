package reference

import (
	"context"
	"sort"
	"strings"

	"github.com/jonathan/career-planner/internal/textkit"
)

// MatchThreshold is the minimum confidence for a query to count as resolved
// to an occupation. Tuned heuristically; override-worthy, not derived.
const MatchThreshold = 0.72

// Confidence tiers. Each tier only wins when it beats the tiers before it,
// so an exact alias hit is never demoted by a weak bigram score.
const (
	aliasExactHigh = 0.99
	aliasExactLow  = 0.98

	containHigh = 0.90
	containLow  = 0.86

	aliasContainHigh = 0.84
	aliasContainLow  = 0.80

	tokenBandBase = 0.50
	tokenBandSpan = 0.34
	tokenFloor    = 0.30

	bigramBandBase = 0.45
	bigramBandSpan = 0.38
	bigramFloor    = 0.60
)

// Match pairs an occupation with the confidence the query resolved to it.
type Match struct {
	Occupation *Occupation
	Confidence float64
}

// queryForms precomputes the matching forms of one query string.
type queryForms struct {
	norm    string
	compact string
	raw     string
}

func newQueryForms(q string) queryForms {
	return queryForms{
		norm:    textkit.Normalize(q),
		compact: textkit.Compact(q),
		raw:     q,
	}
}

// Search resolves a role query to ranked occupation candidates. Results are
// sorted confidence desc, alphabetical on title for ties. A limit <= 0
// returns every scoring candidate.
func (c *Catalog) Search(ctx context.Context, region, query string, limit int) ([]Match, error) {
	occupations, err := c.Occupations(ctx, region)
	if err != nil {
		return nil, err
	}

	q := newQueryForms(query)
	if q.norm == "" {
		return nil, nil
	}

	var matches []Match
	for i := range occupations {
		occ := &occupations[i]
		if conf := scoreRoleCandidate(q, occ); conf > 0 {
			matches = append(matches, Match{Occupation: occ, Confidence: conf})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Occupation.Title < matches[j].Occupation.Title
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// BestMatch resolves a query to its single best occupation, or nil when no
// candidate clears MatchThreshold.
func (c *Catalog) BestMatch(ctx context.Context, region, query string) (*Match, error) {
	matches, err := c.Search(ctx, region, query, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 || matches[0].Confidence < MatchThreshold {
		return nil, nil
	}
	return &matches[0], nil
}

// scoreRoleCandidate walks the confidence tiers for one occupation.
func scoreRoleCandidate(q queryForms, occ *Occupation) float64 {
	if q.norm == occ.normTitle {
		return 1.0
	}

	conf := 0.0
	for i := range occ.normAliases {
		switch {
		case q.norm == occ.normAliases[i]:
			conf = maxFloat(conf, aliasExactHigh)
		case q.compact != "" && q.compact == occ.compactAliases[i]:
			conf = maxFloat(conf, aliasExactLow)
		}
	}

	if c := containmentConfidence(q.compact, occ.compactTitle, containLow, containHigh); c > conf {
		conf = c
	}
	for i := range occ.compactAliases {
		if c := containmentConfidence(q.compact, occ.compactAliases[i], aliasContainLow, aliasContainHigh); c > conf {
			conf = c
		}
	}

	if sim := textkit.Similarity(q.raw, occ.Title); sim >= tokenFloor {
		if c := tokenBandBase + tokenBandSpan*sim; c > conf {
			conf = c
		}
	}
	if d := textkit.DiceCoefficient(q.raw, occ.Title); d >= bigramFloor {
		if c := bigramBandBase + bigramBandSpan*d; c > conf {
			conf = c
		}
	}
	return textkit.Clamp01(conf)
}

// SkillConfidence scores a free-text skill query against one reference skill
// name, using the same tiers minus aliases.
func SkillConfidence(query string, s Skill) float64 {
	q := newQueryForms(query)
	if q.norm == "" || s.norm == "" {
		return 0
	}
	if q.norm == s.norm {
		return 1.0
	}

	conf := containmentConfidence(q.compact, s.compact, containLow, containHigh)
	if sim := textkit.Similarity(q.raw, s.Name); sim >= tokenFloor {
		if c := tokenBandBase + tokenBandSpan*sim; c > conf {
			conf = c
		}
	}
	if d := textkit.DiceCoefficient(q.raw, s.Name); d >= bigramFloor {
		if c := bigramBandBase + bigramBandSpan*d; c > conf {
			conf = c
		}
	}
	return textkit.Clamp01(conf)
}

// RoleProximity blends token overlap and bigram similarity between a
// free-text role and the occupation's title or aliases, whichever is
// closest. Unlike the tiered search confidence it is a smooth ratio, which
// makes it usable as a scoring component.
func (o *Occupation) RoleProximity(query string) float64 {
	q := newQueryForms(query)
	if q.norm == "" {
		return 0
	}

	best := blendedSimilarity(q, o.Title, o.normTitle, o.compactTitle)
	for i, alias := range o.Aliases {
		if b := blendedSimilarity(q, alias, o.normAliases[i], o.compactAliases[i]); b > best {
			best = b
		}
	}
	return best
}

func blendedSimilarity(q queryForms, raw, norm, compact string) float64 {
	if q.norm == norm {
		return 1.0
	}
	blend := 0.6*textkit.Similarity(q.raw, raw) + 0.4*textkit.DiceCoefficient(q.raw, raw)
	if c := containmentConfidence(q.compact, compact, 0.55, 0.9); c > blend {
		blend = c
	}
	return textkit.Clamp01(blend)
}

// BestSkill resolves a skill query against the occupation's skill edges.
func (o *Occupation) BestSkill(query string) (Skill, float64) {
	var best Skill
	bestConf := 0.0
	for _, s := range o.Skills {
		if conf := SkillConfidence(query, s); conf > bestConf {
			best, bestConf = s, conf
		}
	}
	return best, bestConf
}

// containmentConfidence scores compact substring containment in either
// direction, scaled by how much of the longer string the shorter one covers.
// Very short fragments never count.
func containmentConfidence(a, b string, low, high float64) float64 {
	if len(a) < 4 || len(b) < 4 {
		return 0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return 0
	}
	ratio := float64(len(shorter)) / float64(len(longer))
	return low + (high-low)*ratio
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
