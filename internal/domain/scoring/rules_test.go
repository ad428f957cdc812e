package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	require.Equal(t, 5, rules.CorrectScore)
	require.Equal(t, 2, rules.CorrectResult)
	require.Equal(t, 10, rules.TopscorerCorrect)
	require.Equal(t, 3, rules.TopscorerInTop3)
	require.Equal(t, 3, rules.GroupPositionCorrect)
	require.Equal(t, 10, rules.GroupAllCorrect)
	require.Equal(t, 15, rules.WinnerCorrect)
	require.Equal(t, 5, rules.WinnerFinalist)
	require.NoError(t, rules.Validate())
}

func TestResolve_LaterOverridesWin(t *testing.T) {
	global := RulesOverride{CorrectScore: intPtr(6), WinnerCorrect: intPtr(25)}
	pool := RulesOverride{CorrectScore: intPtr(4), CorrectResult: intPtr(0)}

	got := Resolve(DefaultRules(), global, pool)

	require.Equal(t, 4, got.CorrectScore)
	require.Equal(t, 0, got.CorrectResult)
	require.Equal(t, 25, got.WinnerCorrect)
	require.Equal(t, 10, got.TopscorerCorrect)
}

func TestResolve_IgnoresNegativeValues(t *testing.T) {
	got := Resolve(DefaultRules(), RulesOverride{GroupAllCorrect: intPtr(-1)})
	require.Equal(t, 10, got.GroupAllCorrect)
	require.True(t, RulesOverride{}.IsZero())
}

func TestRulesValidate(t *testing.T) {
	rules := DefaultRules()
	rules.WinnerFinalist = -2
	err := rules.Validate()
	if !errors.Is(err, ErrInvalidRules) {
		t.Fatalf("expected ErrInvalidRules, got %v", err)
	}
}
