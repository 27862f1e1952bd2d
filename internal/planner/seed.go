package planner

import (
	"sort"

	"github.com/jonathan/career-planner/internal/reference"
)

// seeded is one shortlist entry with its blended role proximity.
type seeded struct {
	occ       *reference.Occupation
	proximity float64
}

// seedShortlist ranks occupations by textual relevance to the user's roles
// and keeps the closest maxShortlist entries that carry weighted skill
// edges. In not-sure mode only the current role drives the seeding.
func seedShortlist(input *Input, occupations []reference.Occupation) []seeded {
	discovery := input.NotSureMode || input.TargetRole == ""

	var out []seeded
	for i := range occupations {
		occ := &occupations[i]
		if len(occ.Skills) == 0 {
			continue
		}

		current := occ.RoleProximity(input.CurrentRole)
		proximity := current
		if !discovery {
			proximity = seedTargetShare*occ.RoleProximity(input.TargetRole) + seedCurrentShare*current
		}
		out = append(out, seeded{occ: occ, proximity: proximity})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].proximity != out[j].proximity {
			return out[i].proximity > out[j].proximity
		}
		return out[i].occ.Title < out[j].occ.Title
	})
	if len(out) > maxShortlist {
		out = out[:maxShortlist]
	}
	return out
}

// scoredCandidate pairs a seeded entry with its breakdown.
type scoredCandidate struct {
	seeded
	breakdown Breakdown
	profile   skillProfile
	score     int
}

// relevanceFilter applies the strict pass and falls back to the loose pass
// when strict leaves nothing. Both passes keep the MinScore floor.
func relevanceFilter(cands []scoredCandidate, discovery bool) []scoredCandidate {
	proxFloor, overlapFloor := targetedProximityFloor, targetedOverlapFloor
	if discovery {
		proxFloor, overlapFloor = discoveryProximityFloor, discoveryOverlapFloor
	}

	keep := func(strict bool) []scoredCandidate {
		var out []scoredCandidate
		for _, c := range cands {
			if c.score < MinScore {
				continue
			}
			proxOK := c.proximity >= proxFloor
			overlapOK := c.profile.overlap >= overlapFloor
			if strict && proxOK && overlapOK {
				out = append(out, c)
			}
			if !strict && (proxOK || overlapOK) {
				out = append(out, c)
			}
		}
		return out
	}

	if strict := keep(true); len(strict) > 0 {
		return strict
	}
	return keep(false)
}

// rankCandidates orders by score, proximity, then title for determinism.
func rankCandidates(cands []scoredCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		if cands[i].proximity != cands[j].proximity {
			return cands[i].proximity > cands[j].proximity
		}
		return cands[i].occ.Title < cands[j].occ.Title
	})
}
