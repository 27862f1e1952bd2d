package requirements

import "sort"

// maxEvidencePerPass caps the evidence list built during one aggregation.
const maxEvidencePerPass = 5

// MaxStoredEvidence caps the evidence list on a stored aggregated record
// after cross-source merging.
const MaxStoredEvidence = 8

// Aggregate merges extracted requirements by (type, normalizedKey).
// Frequency increments once per distinct posting id, or once per occurrence
// when no posting id is present. The highest-confidence label wins. Evidence
// is deduplicated by (source, quote, postingID) and capped. The result is
// sorted by frequency desc, then type rank, then label; aggregating an
// already-aggregated set changes nothing beyond re-sorting.
func Aggregate(items []Extracted) []Aggregated {
	type bucket struct {
		agg          Aggregated
		bestConf     float64
		postingSeen  map[string]bool
		evidenceSeen map[string]bool
	}

	buckets := make(map[string]*bucket)
	var order []string

	for _, item := range items {
		key := string(item.Type) + "|" + item.NormalizedKey
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				agg: Aggregated{
					Type:          item.Type,
					Label:         item.Label,
					NormalizedKey: item.NormalizedKey,
				},
				bestConf:     item.Confidence,
				postingSeen:  make(map[string]bool),
				evidenceSeen: make(map[string]bool),
			}
			buckets[key] = b
			order = append(order, key)
		}

		if item.Confidence > b.bestConf {
			b.bestConf = item.Confidence
			b.agg.Label = item.Label
		}

		if pid := item.Evidence.PostingID; pid != "" {
			if !b.postingSeen[pid] {
				b.postingSeen[pid] = true
				b.agg.Frequency++
			}
		} else {
			b.agg.Frequency++
		}

		evKey := item.Evidence.Source + "|" + item.Evidence.Quote + "|" + item.Evidence.PostingID
		if !b.evidenceSeen[evKey] && len(b.agg.Evidence) < maxEvidencePerPass {
			b.evidenceSeen[evKey] = true
			b.agg.Evidence = append(b.agg.Evidence, item.Evidence)
		}
	}

	out := make([]Aggregated, 0, len(order))
	for _, key := range order {
		out = append(out, buckets[key].agg)
	}
	SortAggregated(out)
	return out
}

// MergeEvidence unions two evidence lists, deduplicating by
// (source, quote, postingID) and capping the result at MaxStoredEvidence.
// Entries from a keep their order and win ties against b.
func MergeEvidence(a, b []Evidence) []Evidence {
	out := make([]Evidence, 0, len(a))
	seen := make(map[string]bool)
	for _, list := range [][]Evidence{a, b} {
		for _, ev := range list {
			key := ev.Source + "|" + ev.Quote + "|" + ev.PostingID
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ev)
			if len(out) == MaxStoredEvidence {
				return out
			}
		}
	}
	return out
}

// SortAggregated orders records by frequency desc, then type rank (gate
// first), then label alphabetically.
func SortAggregated(items []Aggregated) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Frequency != items[j].Frequency {
			return items[i].Frequency > items[j].Frequency
		}
		if items[i].Type.Rank() != items[j].Type.Rank() {
			return items[i].Type.Rank() < items[j].Type.Rank()
		}
		return items[i].Label < items[j].Label
	})
}

// ReaggregateRecords re-sorts already-aggregated records without altering
// frequencies or evidence, for callers merging stored rows.
func ReaggregateRecords(items []Aggregated) []Aggregated {
	out := make([]Aggregated, len(items))
	copy(out, items)
	SortAggregated(out)
	return out
}

// Actionable reports whether an aggregated requirement is specific enough to
// surface to a user: its label still passes task-level shaping.
func Actionable(r Aggregated) bool {
	return ShapeTaskLabel(r.Label) != ""
}
