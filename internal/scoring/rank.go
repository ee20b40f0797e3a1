package scoring

import "sort"

// RankMatches sorts matches by score, highest first, and assigns 1-based
// rank positions. The sort is stable: equal scores keep their input order.
func RankMatches(matches []MatchResult) []MatchResult {
	ranked := append([]MatchResult(nil), matches...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
