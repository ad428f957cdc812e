package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/poule-scoring/internal/mocks/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/platform/id"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

// flakyLedger fails the first n pool locks and then delegates.
type flakyLedger struct {
	next pool.Ledger

	mu       sync.Mutex
	failures int
}

func (l *flakyLedger) WithPoolLock(ctx context.Context, poolID string, fn func(ctx context.Context, tx pool.LedgerTx) error) error {
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		l.mu.Unlock()
		return errStoreDown
	}
	l.mu.Unlock()
	return l.next.WithPoolLock(ctx, poolID, fn)
}

// gatedMatchRepo blocks ListFinished until released.
type gatedMatchRepo struct {
	next    match.Repository
	entered chan struct{}
	release chan struct{}
}

func (r *gatedMatchRepo) ListFinished(ctx context.Context) ([]match.Match, error) {
	close(r.entered)
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.next.ListFinished(ctx)
}

func TestScoringService_CallerCancelDoesNotAbortSharedRun(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t, seedMatchPools())
	gate := &gatedMatchRepo{
		next:    memory.NewMatchRepository(fx.store),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	fx.service.matchRepo = gate

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := fx.service.ScoreMatches(ctx, ScoringOptions{})
		errs <- err
	}()

	<-gate.entered
	cancel()
	require.ErrorIs(t, <-errs, context.Canceled)

	close(gate.release)
	require.Eventually(t, func() bool {
		fx.recorder.mu.Lock()
		defer fx.recorder.mu.Unlock()
		return fx.recorder.outcomes[PassMatches] == OutcomeSuccess
	}, time.Second, 5*time.Millisecond)
	requireMember(t, fx.store, "mem-p1-u1", 10, 1)
}

func TestScoringService_ScoreMatches_RerunRepairsSkippedMemberWrite(t *testing.T) {
	t.Parallel()

	store := seedMatchPools()
	store.FailWritesFor("mem-p1-u2")
	fx := newScoringFixture(t, store)
	ctx := context.Background()

	_, err := fx.service.ScoreMatches(ctx, ScoringOptions{})
	require.NoError(t, err)
	stale, ok := fx.store.Member("mem-p1-u2")
	require.True(t, ok)
	require.Zero(t, stale.Points)
	require.Nil(t, stale.Rank)

	store.ClearWriteFailures()

	second, err := fx.service.ScoreMatches(ctx, ScoringOptions{})
	require.NoError(t, err)
	require.Zero(t, second.Updated)
	require.Equal(t, 2, second.PoolsRanked)

	requireMember(t, fx.store, "mem-p1-u2", 4, 2)
	requireMember(t, fx.store, "mem-p1-u4", 4, 2)
	requireMember(t, fx.store, "mem-p1-u3", 2, 4)
}

func TestScoringService_ScoreMatches_RerunRepairsFailedAggregation(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t, seedMatchPools())
	fx.standings.ledger = &flakyLedger{next: memory.NewPoolRepository(fx.store), failures: 2}
	ctx := context.Background()

	_, err := fx.service.ScoreMatches(ctx, ScoringOptions{})
	require.ErrorIs(t, err, ErrDependencyUnavailable)
	requireMatchPoints(t, fx.store, "p1-u1-m1", intPtr(5))
	stale, _ := fx.store.Member("mem-p1-u1")
	require.Zero(t, stale.Points)

	second, err := fx.service.ScoreMatches(ctx, ScoringOptions{})
	require.NoError(t, err)
	require.Zero(t, second.Updated)
	require.Equal(t, 2, second.PoolsRanked)

	requireMember(t, fx.store, "mem-p1-u1", 10, 1)
	requireMember(t, fx.store, "mem-p2-u1", 7, 1)
}

func TestScoringService_RunAll_FailedPassStillRanksFinishedPasses(t *testing.T) {
	t.Parallel()

	store := seedMatchPools()
	store.PutSettings(setting.Snapshot{Result: tournament.Result{Winner: "Argentina", Finalist: "France"}})
	store.PutWinnerPrediction(prediction.WinnerPrediction{ID: "w1", UserID: "u1", PoolID: "p1", Country: "Argentina"})
	fx := newScoringFixture(t, store)

	matches := matchmock.NewRepository(t)
	matches.On("ListFinished", mock.Anything).Return(nil, errStoreDown).Once()
	fx.service.matchRepo = matches

	result, err := fx.service.RunAll(context.Background(), ScoringOptions{})
	require.ErrorIs(t, err, ErrDependencyUnavailable)
	require.ErrorContains(t, err, "matches pass")
	require.Equal(t, OutcomeError, fx.recorder.outcomes[PassAll])
	require.Equal(t, 1, result.PoolsRanked)

	u1 := requireMember(t, fx.store, "mem-p1-u1", 15, 1)
	require.Equal(t, 15, u1.Breakdown.Winner)
	require.Zero(t, u1.Breakdown.Match)
}

func TestScoringService_ForceRanksEveryPoolWithMembers(t *testing.T) {
	t.Parallel()

	store := seedMatchPools()
	store.PutPool(pool.Pool{ID: "p3", Name: "Quiet"})
	store.PutMember(pool.Member{ID: "mem-p3-u9", PoolID: "p3", UserID: "u9"})
	fx := newScoringFixture(t, store)
	ctx := context.Background()

	plain, err := fx.service.ScoreMatches(ctx, ScoringOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, plain.PoolsRanked)

	forced, err := fx.service.ScoreMatches(ctx, ScoringOptions{Force: true})
	require.NoError(t, err)
	require.Equal(t, 3, forced.PoolsRanked)
	requireMember(t, fx.store, "mem-p3-u9", 0, 1)
}

func TestStandingsService_RecalculateAllFlushesCachedLeaderboards(t *testing.T) {
	t.Parallel()

	fx := newScoringFixture(t, seedMatchPools())
	ctx := context.Background()
	pools := memory.NewPoolRepository(fx.store)
	cached := NewStandingsService(StandingsServiceDeps{
		PoolRepo: cache.NewPoolRepository(pools, time.Minute),
		Ledger:   pools,
		Logger:   logging.NewNop(),
	})

	before, err := cached.List(ctx, "p1")
	require.NoError(t, err)
	require.Zero(t, before[0].Points)

	_, err = fx.service.ScoreMatches(ctx, ScoringOptions{})
	require.NoError(t, err)

	stale, err := cached.List(ctx, "p1")
	require.NoError(t, err)
	require.Zero(t, stale[0].Points)

	result, err := cached.RecalculateAll(ctx, "run-2")
	require.NoError(t, err)
	require.Equal(t, 2, result.PoolsRanked)

	fresh, err := cached.List(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "u1", fresh[0].UserID)
	require.Equal(t, 10, fresh[0].Points)
}

func TestStandingsService_RecalculateAllListFailure(t *testing.T) {
	t.Parallel()

	store := seedMatchPools()
	store.FailReads(errStoreDown)
	fx := newScoringFixture(t, store)

	_, err := fx.standings.RecalculateAll(context.Background(), "run-1")
	require.ErrorIs(t, err, ErrDependencyUnavailable)
	require.True(t, errors.Is(err, errStoreDown))
}

func TestNewScoringService_KeepsZeroBaseRules(t *testing.T) {
	t.Parallel()

	store := seedMatchPools()
	pools := memory.NewPoolRepository(store)
	service := NewScoringService(ScoringServiceDeps{
		MatchRepo:      memory.NewMatchRepository(store),
		PredictionRepo: memory.NewPredictionRepository(store),
		PlayerRepo:     memory.NewPlayerRepository(store),
		GroupRepo:      memory.NewGroupStandingRepository(store),
		SettingRepo:    memory.NewSettingRepository(store),
		PoolRepo:       pools,
		Standings:      NewStandingsService(StandingsServiceDeps{PoolRepo: pools, Ledger: pools, Logger: logging.NewNop()}),
		IDs:            id.Static("run-zero"),
		Logger:         logging.NewNop(),
	})
	require.Equal(t, scoring.Rules{}, service.baseRules)

	_, err := service.ScoreMatches(context.Background(), ScoringOptions{})
	require.NoError(t, err)

	requireMatchPoints(t, store, "p1-u1-m1", intPtr(0))
	requireMember(t, store, "mem-p1-u1", 0, 1)
}
