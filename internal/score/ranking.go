package score

import "slices"

// assignRanks sets dense ranks by score descending: equal scores share a rank
// and the next lower score gets the next integer. Request order decides the
// position inside a group of equal scores.
func assignRanks(results []BidderResult) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		switch {
		case results[a].Score > results[b].Score:
			return -1
		case results[a].Score < results[b].Score:
			return 1
		default:
			return a - b
		}
	})

	rank := 0
	for pos, i := range order {
		if pos == 0 || results[i].Score != results[order[pos-1]].Score {
			rank++
		}
		results[i].Rank = rank
	}
}

func sortByRank(results []BidderResult) {
	slices.SortFunc(results, func(a, b BidderResult) int {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return a.Index - b.Index
	})
}
