package scoring

import "strings"

// MinGroupSizeForBonus guards the all-correct bonus against malformed groups.
const MinGroupSizeForBonus = 4

type GroupScore struct {
	Points           int
	CorrectPositions int
	Bonus            bool
}

// GroupPoints compares predicted and official group orders position by position.
func GroupPoints(rules Rules, official, predicted []string) GroupScore {
	var score GroupScore

	n := min(len(official), len(predicted))
	for i := 0; i < n; i++ {
		if SameName(official[i], predicted[i]) {
			score.CorrectPositions++
			score.Points += rules.GroupPositionCorrect
		}
	}

	if len(official) >= MinGroupSizeForBonus && score.CorrectPositions == len(official) {
		score.Bonus = true
		score.Points += rules.GroupAllCorrect
	}
	return score
}

// SameName compares team or country names ignoring case and surrounding space.
// Blank names never match.
func SameName(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
