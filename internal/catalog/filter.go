// pattern: Functional Core

package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter returns the entries whose label or address fuzzily matches query,
// best match first. An empty query returns every entry in order.
func Filter(entries []Entry, query string) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]Entry(nil), entries...)
	}

	labels := make([]string, len(entries))
	addresses := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
		addresses[i] = e.Address
	}

	best := make(map[int]int, len(entries))
	for _, ranks := range []fuzzy.Ranks{
		fuzzy.RankFindNormalizedFold(query, labels),
		fuzzy.RankFindNormalizedFold(query, addresses),
	} {
		for _, r := range ranks {
			if d, ok := best[r.OriginalIndex]; !ok || r.Distance < d {
				best[r.OriginalIndex] = r.Distance
			}
		}
	}

	idx := make([]int, 0, len(best))
	for i := range best {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if best[idx[a]] != best[idx[b]] {
			return best[idx[a]] < best[idx[b]]
		}
		return idx[a] < idx[b]
	})

	out := make([]Entry, len(idx))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}
