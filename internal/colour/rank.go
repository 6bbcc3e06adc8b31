package colour

import (
	"cmp"
	"fmt"
	"slices"
)

// RankAndPad orders clusters by member count, largest first, and returns
// exactly topN of them. Ties keep their original order. Clusters without
// members are never selected; when fewer than topN populated clusters exist
// the primary cluster is repeated to fill the result.
func RankAndPad(clusters []Cluster, topN int) ([]Cluster, error) {
	if topN < 1 || topN > MaxTopN {
		return nil, fmt.Errorf("%w: top_n must be between 1 and %d, got %d", ErrInvalidOption, MaxTopN, topN)
	}

	ranked := make([]Cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.Count > 0 {
			ranked = append(ranked, c)
		}
	}
	if len(ranked) == 0 {
		return nil, ErrEmptyInput
	}

	slices.SortStableFunc(ranked, func(a, b Cluster) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for len(ranked) < topN {
		ranked = append(ranked, ranked[0])
	}
	return ranked, nil
}
