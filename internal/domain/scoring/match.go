package scoring

// Outcome is the three-way result of a scoreline.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case away > home:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// MatchPoints scores a predicted scoreline against the final one.
func MatchPoints(rules Rules, predictedHome, predictedAway, actualHome, actualAway int) int {
	if predictedHome == actualHome && predictedAway == actualAway {
		return rules.CorrectScore
	}
	if OutcomeOf(predictedHome, predictedAway) == OutcomeOf(actualHome, actualAway) {
		return rules.CorrectResult
	}
	return 0
}
