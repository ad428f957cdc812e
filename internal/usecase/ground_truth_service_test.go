package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/memory"
)

func TestGroundTruthService_SetTournamentResult(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	settings := memory.NewSettingRepository(store)
	svc := NewGroundTruthService(memory.NewGroupStandingRepository(store), settings)
	ctx := context.Background()

	result, err := svc.SetTournamentResult(ctx, SetTournamentResultInput{Winner: " Spain ", Finalist: "England"})
	require.NoError(t, err)
	require.Equal(t, "Spain", result.Winner)

	snapshot, err := settings.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Spain", snapshot.Result.Winner)
	require.Equal(t, "England", snapshot.Result.Finalist)

	_, err = svc.SetTournamentResult(ctx, SetTournamentResultInput{Winner: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetTournamentResult(ctx, SetTournamentResultInput{Winner: "Spain", Finalist: "spain"})
	require.ErrorIs(t, err, ErrInvalidInput)

	store.FailWritesFor(setting.KeyTournamentResult)
	_, err = svc.SetTournamentResult(ctx, SetTournamentResultInput{Winner: "Brazil"})
	require.ErrorIs(t, err, memory.ErrInjectedWrite)
}

func TestGroundTruthService_SetGroupStanding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   SetGroupStandingInput
		wantErr bool
	}{
		{name: "valid", input: SetGroupStandingInput{GroupLabel: " b ", Teams: []string{"England", " USA", "Iran", "Wales"}}},
		{name: "missing label", input: SetGroupStandingInput{Teams: []string{"England", "USA"}}, wantErr: true},
		{name: "single team", input: SetGroupStandingInput{GroupLabel: "B", Teams: []string{"England"}}, wantErr: true},
		{name: "blank team", input: SetGroupStandingInput{GroupLabel: "B", Teams: []string{"England", " "}}, wantErr: true},
		{name: "duplicate team", input: SetGroupStandingInput{GroupLabel: "B", Teams: []string{"England", "ENGLAND"}}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			groups := memory.NewGroupStandingRepository(store)
			svc := NewGroundTruthService(groups, memory.NewSettingRepository(store))

			standing, err := svc.SetGroupStanding(context.Background(), tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "B", standing.GroupLabel)
			require.Equal(t, []string{"England", "USA", "Iran", "Wales"}, standing.Teams)
			require.False(t, standing.UpdatedAt.IsZero())

			stored, err := groups.List(context.Background())
			require.NoError(t, err)
			require.Len(t, stored, 1)
			require.Equal(t, "B", stored[0].GroupLabel)
		})
	}
}
