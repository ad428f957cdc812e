package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/memory"
)

func TestScoringService_ScoreGroups(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	store.PutGroupStanding(
		groupstanding.Standing{GroupLabel: "A", Teams: []string{"Netherlands", "Senegal", "Ecuador", "Qatar"}},
		groupstanding.Standing{GroupLabel: "B", Teams: []string{"England", "USA", "Iran", "Wales"}},
	)
	store.PutPool(pool.Pool{ID: "p1"})
	store.PutMember(
		pool.Member{ID: "mem-u1", PoolID: "p1", UserID: "u1"},
		pool.Member{ID: "mem-u2", PoolID: "p1", UserID: "u2"},
		pool.Member{ID: "mem-u3", PoolID: "p1", UserID: "u3"},
	)
	store.PutGroupPrediction(
		prediction.GroupPrediction{ID: "g1", UserID: "u1", PoolID: "p1", GroupLabel: "a", Teams: []string{"netherlands", "senegal", "ecuador", "qatar"}},
		prediction.GroupPrediction{ID: "g2", UserID: "u2", PoolID: "p1", GroupLabel: "A", Teams: []string{"Netherlands", "Senegal", "Ecuador", "Wales"}},
		prediction.GroupPrediction{ID: "g3", UserID: "u3", PoolID: "p1", GroupLabel: "B", Teams: []string{"England", "Iran", "USA", "Wales"}},
		prediction.GroupPrediction{ID: "g4", UserID: "u3", PoolID: "p1", GroupLabel: "C", Teams: []string{"Argentina", "Mexico", "Poland", "Saudi Arabia"}},
	)
	fx := newScoringFixture(t, store)

	result, err := fx.service.ScoreGroups(context.Background(), ScoringOptions{})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.GroupsProcessed)
	require.Equal(t, 3, result.Updated)
	require.NotEmpty(t, result.Message)

	want := map[string]int{"g1": 4*3 + 10, "g2": 3 * 3, "g3": 2 * 3}
	for id, points := range want {
		p, ok := fx.store.GroupPrediction(id)
		require.True(t, ok)
		require.NotNil(t, p.PointsEarned)
		require.Equal(t, points, *p.PointsEarned, "prediction %s", id)
	}
	ungraded, _ := fx.store.GroupPrediction("g4")
	require.Nil(t, ungraded.PointsEarned)

	m := requireMember(t, fx.store, "mem-u1", 22, 1)
	require.Equal(t, 22, m.Breakdown.Group)
	requireMember(t, fx.store, "mem-u2", 9, 2)
	requireMember(t, fx.store, "mem-u3", 6, 3)
}

func TestScoringService_ScoreGroups_NoStandings(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t, memory.NewStore())

	result, err := fx.service.ScoreGroups(context.Background(), ScoringOptions{})
	require.NoError(t, err)
	require.True(t, result.NoOp)
	require.Equal(t, msgNoGroupStandings, result.Message)
	require.Zero(t, result.GroupsProcessed)
}
