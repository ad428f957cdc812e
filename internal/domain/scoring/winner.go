package scoring

import "strings"

// WinnerPoints scores a tournament-winner pick. finalist may be empty.
func WinnerPoints(rules Rules, winner, finalist, predicted string) int {
	if strings.TrimSpace(winner) == "" {
		return 0
	}
	switch {
	case SameName(predicted, winner):
		return rules.WinnerCorrect
	case SameName(predicted, finalist):
		return rules.WinnerFinalist
	default:
		return 0
	}
}
