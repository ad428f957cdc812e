package scoring

import (
	"errors"
	"fmt"
)

var ErrInvalidRules = errors.New("invalid scoring rules")

// Rules holds the point value awarded per prediction category.
type Rules struct {
	CorrectScore         int `json:"correct_score" yaml:"correct_score"`
	CorrectResult        int `json:"correct_result" yaml:"correct_result"`
	TopscorerCorrect     int `json:"topscorer_correct" yaml:"topscorer_correct"`
	TopscorerInTop3      int `json:"topscorer_in_top3" yaml:"topscorer_in_top3"`
	GroupPositionCorrect int `json:"group_position_correct" yaml:"group_position_correct"`
	GroupAllCorrect      int `json:"group_all_correct" yaml:"group_all_correct"`
	WinnerCorrect        int `json:"wk_winner_correct" yaml:"wk_winner_correct"`
	WinnerFinalist       int `json:"wk_winner_finalist" yaml:"wk_winner_finalist"`
}

// DefaultRules returns the built-in point values. The winner value is the
// canonical 15 used by the global settings defaults.
func DefaultRules() Rules {
	return Rules{
		CorrectScore:         5,
		CorrectResult:        2,
		TopscorerCorrect:     10,
		TopscorerInTop3:      3,
		GroupPositionCorrect: 3,
		GroupAllCorrect:      10,
		WinnerCorrect:        15,
		WinnerFinalist:       5,
	}
}

func (r Rules) Validate() error {
	values := map[string]int{
		"correct_score":          r.CorrectScore,
		"correct_result":         r.CorrectResult,
		"topscorer_correct":      r.TopscorerCorrect,
		"topscorer_in_top3":      r.TopscorerInTop3,
		"group_position_correct": r.GroupPositionCorrect,
		"group_all_correct":      r.GroupAllCorrect,
		"wk_winner_correct":      r.WinnerCorrect,
		"wk_winner_finalist":     r.WinnerFinalist,
	}
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidRules, key, value)
		}
	}
	return nil
}

// RulesOverride is a partial Rules document as stored on a pool or in the
// default_scoring_rules setting. Nil fields fall through to the next layer.
type RulesOverride struct {
	CorrectScore         *int `json:"correct_score,omitempty" yaml:"correct_score,omitempty"`
	CorrectResult        *int `json:"correct_result,omitempty" yaml:"correct_result,omitempty"`
	TopscorerCorrect     *int `json:"topscorer_correct,omitempty" yaml:"topscorer_correct,omitempty"`
	TopscorerInTop3      *int `json:"topscorer_in_top3,omitempty" yaml:"topscorer_in_top3,omitempty"`
	GroupPositionCorrect *int `json:"group_position_correct,omitempty" yaml:"group_position_correct,omitempty"`
	GroupAllCorrect      *int `json:"group_all_correct,omitempty" yaml:"group_all_correct,omitempty"`
	WinnerCorrect        *int `json:"wk_winner_correct,omitempty" yaml:"wk_winner_correct,omitempty"`
	WinnerFinalist       *int `json:"wk_winner_finalist,omitempty" yaml:"wk_winner_finalist,omitempty"`
}

func (o RulesOverride) IsZero() bool {
	return o == RulesOverride{}
}

// Resolve layers overrides over base in order; later overrides win.
func Resolve(base Rules, overrides ...RulesOverride) Rules {
	out := base
	for _, o := range overrides {
		apply(&out.CorrectScore, o.CorrectScore)
		apply(&out.CorrectResult, o.CorrectResult)
		apply(&out.TopscorerCorrect, o.TopscorerCorrect)
		apply(&out.TopscorerInTop3, o.TopscorerInTop3)
		apply(&out.GroupPositionCorrect, o.GroupPositionCorrect)
		apply(&out.GroupAllCorrect, o.GroupAllCorrect)
		apply(&out.WinnerCorrect, o.WinnerCorrect)
		apply(&out.WinnerFinalist, o.WinnerFinalist)
	}
	return out
}

func apply(dst *int, value *int) {
	if value != nil && *value >= 0 {
		*dst = *value
	}
}
