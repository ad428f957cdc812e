package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/poule-scoring/internal/platform/id"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

func intPtr(v int) *int { return &v }

type capturePublisher struct {
	mu        sync.Mutex
	standings []scoringevent.StandingsUpdated
	passes    []scoringevent.PassCompleted
	err       error
}

func (p *capturePublisher) PublishStandings(_ context.Context, event scoringevent.StandingsUpdated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.standings = append(p.standings, event)
	return p.err
}

func (p *capturePublisher) PublishPassCompleted(_ context.Context, event scoringevent.PassCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passes = append(p.passes, event)
	return p.err
}

type captureRecorder struct {
	mu       sync.Mutex
	outcomes map[string]string
	failed   map[string]int
}

func newCaptureRecorder() *captureRecorder {
	return &captureRecorder{outcomes: make(map[string]string), failed: make(map[string]int)}
}

func (r *captureRecorder) PassFinished(pass, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[pass] = outcome
}

func (r *captureRecorder) PredictionsScored(pass string, _ int, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[pass] += failed
}

func (r *captureRecorder) StandingsRecalculated(int, int, int) {}

type scoringFixture struct {
	store     *memory.Store
	service   *ScoringService
	standings *StandingsService
	publisher *capturePublisher
	recorder  *captureRecorder
}

func newScoringFixture(t *testing.T, store *memory.Store) scoringFixture {
	t.Helper()

	publisher := &capturePublisher{}
	recorder := newCaptureRecorder()
	pools := memory.NewPoolRepository(store)
	standings := NewStandingsService(StandingsServiceDeps{
		PoolRepo:  pools,
		Ledger:    pools,
		Publisher: publisher,
		Recorder:  recorder,
		Logger:    logging.NewNop(),
		Workers:   2,
	})
	service := NewScoringService(ScoringServiceDeps{
		MatchRepo:      memory.NewMatchRepository(store),
		PredictionRepo: memory.NewPredictionRepository(store),
		PlayerRepo:     memory.NewPlayerRepository(store),
		GroupRepo:      memory.NewGroupStandingRepository(store),
		SettingRepo:    memory.NewSettingRepository(store),
		PoolRepo:       pools,
		Standings:      standings,
		Publisher:      publisher,
		Recorder:       recorder,
		IDs:            id.Static("run-test"),
		BaseRules:      scoring.DefaultRules(),
		Logger:         logging.NewNop(),
	})
	return scoringFixture{
		store:     store,
		service:   service,
		standings: standings,
		publisher: publisher,
		recorder:  recorder,
	}
}

// seedMatchPools builds two pools around two finished matches (2-1 and 1-1)
// and one pending match.
func seedMatchPools() *memory.Store {
	store := memory.NewStore()
	store.PutMatch(
		match.Match{ID: "m1", HomeTeam: "Netherlands", AwayTeam: "Senegal", HomeScore: intPtr(2), AwayScore: intPtr(1), Status: match.StatusFinished},
		match.Match{ID: "m2", HomeTeam: "Qatar", AwayTeam: "Ecuador", HomeScore: intPtr(1), AwayScore: intPtr(1), Status: match.StatusFinished},
		match.Match{ID: "m3", HomeTeam: "England", AwayTeam: "Iran", Status: match.StatusPending},
	)
	store.PutPool(
		pool.Pool{ID: "p1", Name: "Office"},
		pool.Pool{ID: "p2", Name: "Friends", Rules: scoring.RulesOverride{CorrectScore: intPtr(7), WinnerCorrect: intPtr(25)}},
	)
	store.PutMember(
		pool.Member{ID: "mem-p1-u1", PoolID: "p1", UserID: "u1"},
		pool.Member{ID: "mem-p1-u2", PoolID: "p1", UserID: "u2"},
		pool.Member{ID: "mem-p1-u3", PoolID: "p1", UserID: "u3"},
		pool.Member{ID: "mem-p1-u4", PoolID: "p1", UserID: "u4"},
		pool.Member{ID: "mem-p2-u1", PoolID: "p2", UserID: "u1"},
		pool.Member{ID: "mem-p2-u5", PoolID: "p2", UserID: "u5"},
	)
	store.PutMatchPrediction(
		prediction.MatchPrediction{ID: "p1-u1-m1", UserID: "u1", PoolID: "p1", MatchID: "m1", HomeGoals: 2, AwayGoals: 1},
		prediction.MatchPrediction{ID: "p1-u1-m2", UserID: "u1", PoolID: "p1", MatchID: "m2", HomeGoals: 1, AwayGoals: 1},
		prediction.MatchPrediction{ID: "p1-u1-m3", UserID: "u1", PoolID: "p1", MatchID: "m3", HomeGoals: 3, AwayGoals: 0},
		prediction.MatchPrediction{ID: "p1-u2-m1", UserID: "u2", PoolID: "p1", MatchID: "m1", HomeGoals: 3, AwayGoals: 0},
		prediction.MatchPrediction{ID: "p1-u2-m2", UserID: "u2", PoolID: "p1", MatchID: "m2", HomeGoals: 0, AwayGoals: 0},
		prediction.MatchPrediction{ID: "p1-u3-m1", UserID: "u3", PoolID: "p1", MatchID: "m1", HomeGoals: 1, AwayGoals: 2},
		prediction.MatchPrediction{ID: "p1-u3-m2", UserID: "u3", PoolID: "p1", MatchID: "m2", HomeGoals: 2, AwayGoals: 2, IsAIGenerated: true},
		prediction.MatchPrediction{ID: "p1-u4-m1", UserID: "u4", PoolID: "p1", MatchID: "m1", HomeGoals: 4, AwayGoals: 1},
		prediction.MatchPrediction{ID: "p1-u4-m2", UserID: "u4", PoolID: "p1", MatchID: "m2", HomeGoals: 0, AwayGoals: 0},
		prediction.MatchPrediction{ID: "p2-u1-m1", UserID: "u1", PoolID: "p2", MatchID: "m1", HomeGoals: 2, AwayGoals: 1},
		prediction.MatchPrediction{ID: "p2-u5-m1", UserID: "u5", PoolID: "p2", MatchID: "m1", HomeGoals: 1, AwayGoals: 0},
	)
	return store
}

func requireMember(t *testing.T, store *memory.Store, memberID string, points, rank int) pool.Member {
	t.Helper()

	m, ok := store.Member(memberID)
	require.True(t, ok, "member %s not found", memberID)
	require.Equal(t, points, m.Points, "points of %s", memberID)
	require.NotNil(t, m.Rank, "rank of %s", memberID)
	require.Equal(t, rank, *m.Rank, "rank of %s", memberID)
	return m
}

func requireMatchPoints(t *testing.T, store *memory.Store, predictionID string, want *int) {
	t.Helper()

	p, ok := store.MatchPrediction(predictionID)
	require.True(t, ok)
	if want == nil {
		require.Nil(t, p.PointsEarned, "prediction %s", predictionID)
		return
	}
	require.NotNil(t, p.PointsEarned, "prediction %s", predictionID)
	require.Equal(t, *want, *p.PointsEarned, "prediction %s", predictionID)
}

var errStoreDown = errors.New("connection refused")
