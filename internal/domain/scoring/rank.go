package scoring

import "sort"

type RankEntry struct {
	Key    string
	Points int
	Rank   int
}

// CompetitionRank orders entries by points descending (key ascending on ties)
// and assigns standard competition ranks: 1, 1, 3, 4, 4, 6.
func CompetitionRank(entries []RankEntry) []RankEntry {
	out := append([]RankEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Key < out[j].Key
	})

	for i := range out {
		if i > 0 && out[i].Points == out[i-1].Points {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}
