package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

const defaultStandingsWorkers = 4

// StandingsService aggregates member totals and ranks per pool.
type StandingsService struct {
	poolRepo  pool.Repository
	ledger    pool.Ledger
	publisher scoringevent.Publisher
	recorder  ScoringRecorder
	logger    *logging.Logger
	workers   int
	now       func() time.Time
}

type StandingsServiceDeps struct {
	PoolRepo  pool.Repository
	Ledger    pool.Ledger
	Publisher scoringevent.Publisher
	Recorder  ScoringRecorder
	Logger    *logging.Logger
	Workers   int
}

// RecalculateResult summarises one aggregation sweep.
type RecalculateResult struct {
	PoolsRanked    int
	MembersUpdated int
	MembersFailed  int
}

func NewStandingsService(deps StandingsServiceDeps) *StandingsService {
	s := &StandingsService{
		poolRepo:  deps.PoolRepo,
		ledger:    deps.Ledger,
		publisher: deps.Publisher,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		workers:   deps.Workers,
		now:       time.Now,
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if s.recorder == nil {
		s.recorder = noopRecorder{}
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.workers < 1 {
		s.workers = defaultStandingsWorkers
	}
	return s
}

// List returns a pool leaderboard ordered by rank.
func (s *StandingsService) List(ctx context.Context, poolID string) ([]pool.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.List", attribute.String("pool.id", poolID))
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("%w: check pool: %w", ErrDependencyUnavailable, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}

	members, err := s.poolRepo.ListStandings(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("%w: list standings: %w", ErrDependencyUnavailable, err)
	}
	return members, nil
}

// Recalculate re-aggregates every given pool. Pools are independent, so they
// are processed concurrently; each pool is one locked transaction.
// Member write failures are logged and skipped. Any pool whose members or
// points cannot be read fails the sweep.
func (s *StandingsService) Recalculate(ctx context.Context, runID string, poolIDs []string) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Recalculate", attribute.Int("pool.count", len(poolIDs)))
	defer span.End()

	targets := uniqueSorted(poolIDs)
	if len(targets) == 0 {
		return RecalculateResult{}, nil
	}

	workerCount := min(s.workers, len(targets))
	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("create standings worker pool: %w", err)
	}
	defer workers.Release()

	var (
		mu     sync.Mutex
		result RecalculateResult
		errs   []error
		wg     sync.WaitGroup
	)
	for _, poolID := range targets {
		poolID := poolID
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			updated, failed, err := s.recalculatePool(ctx, runID, poolID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("pool %s: %w", poolID, err))
				return
			}
			result.PoolsRanked++
			result.MembersUpdated += updated
			result.MembersFailed += failed
		}); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit pool %s: %w", poolID, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	s.recorder.StandingsRecalculated(result.PoolsRanked, result.MembersUpdated, result.MembersFailed)
	if len(errs) > 0 {
		return result, fmt.Errorf("%w: recalculate standings: %w", ErrDependencyUnavailable, errors.Join(errs...))
	}
	return result, nil
}

// leaderboardCache is implemented by pool repositories that cache reads.
type leaderboardCache interface {
	InvalidateAll(ctx context.Context) int
}

// RecalculateAll re-aggregates every pool that has members. A cached pool
// repository is flushed first so no stale leaderboard outlives the sweep.
func (s *StandingsService) RecalculateAll(ctx context.Context, runID string) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RecalculateAll")
	defer span.End()

	poolIDs, err := s.poolRepo.ListPoolIDsWithMembers(ctx)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("%w: list pools with members: %w", ErrDependencyUnavailable, err)
	}
	if c, ok := s.poolRepo.(leaderboardCache); ok {
		dropped := c.InvalidateAll(ctx)
		s.logger.DebugContext(ctx, "cached leaderboards dropped", "run_id", runID, "count", dropped)
	}
	return s.Recalculate(ctx, runID, poolIDs)
}

func (s *StandingsService) recalculatePool(ctx context.Context, runID, poolID string) (int, int, error) {
	var (
		updated, failed int
		final           []pool.Member
	)
	calculatedAt := s.now().UTC()

	err := s.ledger.WithPoolLock(ctx, poolID, func(ctx context.Context, tx pool.LedgerTx) error {
		updated, failed, final = 0, 0, nil

		members, err := tx.ListMembers(ctx)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		totals, err := tx.SumEarnedPoints(ctx)
		if err != nil {
			return fmt.Errorf("sum earned points: %w", err)
		}

		entries := make([]scoring.RankEntry, 0, len(members))
		for _, m := range members {
			entries = append(entries, scoring.RankEntry{Key: m.UserID, Points: totals[m.UserID].Total()})
		}
		rankByUser := make(map[string]int, len(entries))
		for _, e := range scoring.CompetitionRank(entries) {
			rankByUser[e.Key] = e.Rank
		}

		final = make([]pool.Member, 0, len(members))
		for _, current := range members {
			next := nextStanding(current, totals[current.UserID], rankByUser[current.UserID])
			if !current.StandingChanged(next) {
				final = append(final, current)
				continue
			}

			next.ScoringGeneration = runID
			next.CalculatedAt = &calculatedAt
			if err := tx.SaveStanding(ctx, next); err != nil {
				failed++
				s.logger.WarnContext(ctx, "member standing write failed, skipping",
					"run_id", runID,
					"pool_id", poolID,
					"member_id", current.ID,
					"user_id", current.UserID,
					"error", err,
				)
				final = append(final, current)
				continue
			}
			updated++
			final = append(final, next)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if updated > 0 {
		s.publishStandings(ctx, runID, poolID, final, calculatedAt)
	}
	s.logger.DebugContext(ctx, "pool standings recalculated",
		"run_id", runID,
		"pool_id", poolID,
		"members", len(final),
		"updated", updated,
		"failed", failed,
	)
	return updated, failed, nil
}

func nextStanding(current pool.Member, breakdown pool.CategoryPoints, rank int) pool.Member {
	next := current
	next.Breakdown = breakdown
	next.Points = breakdown.Total()
	next.Rank = &rank
	if current.Rank != nil && *current.Rank != rank {
		previous := *current.Rank
		next.PreviousRank = &previous
	}
	return next
}

func (s *StandingsService) publishStandings(ctx context.Context, runID, poolID string, members []pool.Member, at time.Time) {
	rows := make([]scoringevent.StandingRow, 0, len(members))
	for _, m := range members {
		row := scoringevent.StandingRow{UserID: m.UserID, Points: m.Points, PreviousRank: m.PreviousRank}
		if m.Rank != nil {
			row.Rank = *m.Rank
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rank != rows[j].Rank {
			return rows[i].Rank < rows[j].Rank
		}
		return rows[i].UserID < rows[j].UserID
	})

	event := scoringevent.StandingsUpdated{
		RunID:        runID,
		PoolID:       poolID,
		Standings:    rows,
		CalculatedAt: at,
	}
	if err := s.publisher.PublishStandings(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish standings failed", "run_id", runID, "pool_id", poolID, "error", err)
	}
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
