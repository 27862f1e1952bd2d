package evidence

import (
	"github.com/jonathan/career-planner/internal/requirements"
)

// mergeWithBaseline backfills the static occupational baseline under the
// live evidence. Baseline requirements are only added for types that
// neither the user posting nor the market data produced, so live signal
// always outranks the reference taxonomy.
func mergeWithBaseline(user, market, baseline []requirements.Aggregated) []requirements.Aggregated {
	if len(baseline) == 0 {
		requirements.SortAggregated(market)
		return market
	}

	present := make(map[requirements.Type]bool)
	for _, r := range user {
		present[r.Type] = true
	}
	for _, r := range market {
		present[r.Type] = true
	}

	merged := market
	for _, r := range baseline {
		if !present[r.Type] {
			merged = append(merged, r)
		}
	}
	requirements.SortAggregated(merged)
	return merged
}
