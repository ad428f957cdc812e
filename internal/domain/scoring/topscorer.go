package scoring

import "sort"

// PlayerGoals is the tournament goal tally of one player.
type PlayerGoals struct {
	PlayerID string
	Name     string
	Goals    int
}

// TopscorerBoard is the ranking used to score topscorer picks.
// Topscorers holds every player tied at MaxGoals. Top3 holds every player
// whose tally is among the three highest distinct goal values, so it can
// contain more than three players.
type TopscorerBoard struct {
	MaxGoals       int
	Topscorers     map[string]struct{}
	Top3           map[string]struct{}
	TopscorerNames []string
}

const topDistinctValues = 3

func NewTopscorerBoard(players []PlayerGoals) TopscorerBoard {
	board := TopscorerBoard{
		Topscorers: make(map[string]struct{}),
		Top3:       make(map[string]struct{}),
	}
	if len(players) == 0 {
		return board
	}

	distinct := make([]int, 0, len(players))
	seen := make(map[int]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.Goals]; ok {
			continue
		}
		seen[p.Goals] = struct{}{}
		distinct = append(distinct, p.Goals)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	board.MaxGoals = distinct[0]
	cutoff := distinct[min(topDistinctValues, len(distinct))-1]

	sorted := append([]PlayerGoals(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Goals != sorted[j].Goals {
			return sorted[i].Goals > sorted[j].Goals
		}
		return sorted[i].Name < sorted[j].Name
	})
	for _, p := range sorted {
		if p.Goals == board.MaxGoals {
			board.Topscorers[p.PlayerID] = struct{}{}
			board.TopscorerNames = append(board.TopscorerNames, p.Name)
		}
		if p.Goals >= cutoff {
			board.Top3[p.PlayerID] = struct{}{}
		}
	}

	return board
}

func (b TopscorerBoard) IsTopscorer(playerID string) bool {
	_, ok := b.Topscorers[playerID]
	return ok
}

func (b TopscorerBoard) InTop3(playerID string) bool {
	_, ok := b.Top3[playerID]
	return ok
}

// Points scores a topscorer pick. An exact topscorer never falls back to top-3 points.
func (b TopscorerBoard) Points(rules Rules, playerID string) int {
	switch {
	case playerID == "":
		return 0
	case b.IsTopscorer(playerID):
		return rules.TopscorerCorrect
	case b.InTop3(playerID):
		return rules.TopscorerInTop3
	default:
		return 0
	}
}
