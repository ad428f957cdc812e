package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/player"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/platform/id"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
	"github.com/riskibarqy/poule-scoring/internal/platform/resilience"
)

const (
	PassMatches    = "matches"
	PassTopscorers = "topscorers"
	PassGroups     = "groups"
	PassWinner     = "winner"
	PassAll        = "all"
)

// ScoringService runs the scoring passes. Each call re-reads ground truth and
// settings; nothing is carried over between runs.
type ScoringService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	playerRepo     player.Repository
	groupRepo      groupstanding.Repository
	settingRepo    setting.Repository
	poolRepo       pool.Repository
	standings      *StandingsService
	publisher      scoringevent.Publisher
	recorder       ScoringRecorder
	ids            id.Generator
	baseRules      scoring.Rules
	logger         *logging.Logger
	flight         resilience.SingleFlight
	now            func() time.Time
}

type ScoringServiceDeps struct {
	MatchRepo      match.Repository
	PredictionRepo prediction.Repository
	PlayerRepo     player.Repository
	GroupRepo      groupstanding.Repository
	SettingRepo    setting.Repository
	PoolRepo       pool.Repository
	Standings      *StandingsService
	Publisher      scoringevent.Publisher
	Recorder       ScoringRecorder
	IDs            id.Generator
	// BaseRules are the process defaults below the default_scoring_rules
	// setting. A zero value is kept as is and scores every prediction zero.
	BaseRules scoring.Rules
	Logger    *logging.Logger
}

func NewScoringService(deps ScoringServiceDeps) *ScoringService {
	s := &ScoringService{
		matchRepo:      deps.MatchRepo,
		predictionRepo: deps.PredictionRepo,
		playerRepo:     deps.PlayerRepo,
		groupRepo:      deps.GroupRepo,
		settingRepo:    deps.SettingRepo,
		poolRepo:       deps.PoolRepo,
		standings:      deps.Standings,
		publisher:      deps.Publisher,
		recorder:       deps.Recorder,
		ids:            deps.IDs,
		baseRules:      deps.BaseRules,
		logger:         deps.Logger,
		now:            time.Now,
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if s.recorder == nil {
		s.recorder = noopRecorder{}
	}
	if s.ids == nil {
		s.ids = id.NewUUIDGenerator()
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

type ScoringOptions struct {
	// Force re-aggregates every pool with members. Without it a pass
	// re-aggregates every pool holding a prediction it scored.
	Force bool
}

// PassSummary carries the fields shared by every pass result.
type PassSummary struct {
	RunID       string
	Success     bool
	NoOp        bool
	Message     string
	Updated     int
	Failed      int
	PoolsRanked int
}

type MatchScoringResult struct {
	PassSummary
	MatchesProcessed int
}

type TopscorerScoringResult struct {
	PassSummary
	TopScorers []string
	MaxGoals   int
}

type GroupScoringResult struct {
	PassSummary
	GroupsProcessed int
}

type WinnerScoringResult struct {
	PassSummary
	Winner   string
	Finalist string
}

// scoringRun is the configuration snapshot handed to every pass of one invocation.
type scoringRun struct {
	ID       string
	Settings setting.Snapshot
	defaults scoring.Rules

	mu    sync.Mutex
	rules map[string]scoring.Rules
}

func (r *scoringRun) rulesFor(poolID string) scoring.Rules {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rules, ok := r.rules[poolID]; ok {
		return rules
	}
	return r.defaults
}

// passOutcome is what a pass reports back before aggregation.
type passOutcome struct {
	noOp    bool
	message string
	updated int
	failed  int
	touched map[string]struct{}
}

func newPassOutcome() passOutcome {
	return passOutcome{touched: make(map[string]struct{})}
}

func noOpOutcome(message string) passOutcome {
	out := newPassOutcome()
	out.noOp = true
	out.message = message
	return out
}

func (o passOutcome) pools() []string {
	out := make([]string, 0, len(o.touched))
	for poolID := range o.touched {
		out = append(out, poolID)
	}
	return out
}

type passFunc func(ctx context.Context, run *scoringRun) (passOutcome, error)

func (s *ScoringService) beginRun(ctx context.Context) (*scoringRun, error) {
	runID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}

	snapshot, err := s.settingRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load global settings: %w", ErrDependencyUnavailable, err)
	}

	return &scoringRun{
		ID:       runID,
		Settings: snapshot,
		defaults: scoring.Resolve(s.baseRules, snapshot.DefaultRules),
		rules:    make(map[string]scoring.Rules),
	}, nil
}

// loadPoolRules resolves the rules of every pool referenced by the pass.
func (s *ScoringService) loadPoolRules(ctx context.Context, run *scoringRun, poolIDs []string) error {
	targets := uniqueSorted(poolIDs)
	if len(targets) == 0 {
		return nil
	}

	overrides, err := s.poolRepo.ListRules(ctx, targets)
	if err != nil {
		return fmt.Errorf("%w: load pool scoring rules: %w", ErrDependencyUnavailable, err)
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	for _, poolID := range targets {
		run.rules[poolID] = scoring.Resolve(s.baseRules, run.Settings.DefaultRules, overrides[poolID])
	}
	return nil
}

// scoredRow is one prediction with its freshly computed points.
type scoredRow struct {
	id     string
	poolID string
	stored *int
	points int
}

// persistPoints writes rows whose points changed. Write failures are logged
// and skipped.
func (s *ScoringService) persistPoints(ctx context.Context, run *scoringRun, pass string, category prediction.Category, rows []scoredRow, out *passOutcome) {
	for _, row := range rows {
		out.touched[row.poolID] = struct{}{}
		if !prediction.PointsChanged(row.stored, row.points) {
			continue
		}

		if err := s.predictionRepo.UpdatePoints(ctx, category, row.id, row.points); err != nil {
			out.failed++
			s.logger.WarnContext(ctx, "prediction points write failed, skipping",
				"run_id", run.ID,
				"pass", pass,
				"prediction_id", row.id,
				"pool_id", row.poolID,
				"points", row.points,
				"error", err,
			)
			continue
		}
		out.updated++
	}
	s.recorder.PredictionsScored(pass, out.updated, out.failed)
}

// execute runs one pass end to end: settings snapshot, scoring, aggregation.
func (s *ScoringService) execute(ctx context.Context, pass string, opts ScoringOptions, fn passFunc) (PassSummary, error) {
	start := s.now()

	run, err := s.beginRun(ctx)
	if err != nil {
		s.finishWithError(ctx, "", pass, start, err)
		return PassSummary{}, err
	}

	out, err := fn(ctx, run)
	if err != nil {
		s.finishWithError(ctx, run.ID, pass, start, err)
		return PassSummary{RunID: run.ID}, err
	}

	summary := PassSummary{
		RunID:   run.ID,
		Success: !out.noOp,
		NoOp:    out.noOp,
		Message: out.message,
		Updated: out.updated,
		Failed:  out.failed,
	}
	if !out.noOp {
		ranked, err := s.rankPools(ctx, run.ID, out.pools(), opts.Force)
		summary.PoolsRanked = ranked.PoolsRanked
		if err != nil {
			s.finishWithError(ctx, run.ID, pass, start, err)
			return summary, err
		}
	}

	s.finish(ctx, pass, start, summary)
	return summary, nil
}

// rankPools re-aggregates the given pools, or every pool with members when
// force is set. Unchanged members are not rewritten, so re-ranking a pool
// whose predictions did not move is cheap.
func (s *ScoringService) rankPools(ctx context.Context, runID string, poolIDs []string, force bool) (RecalculateResult, error) {
	if force {
		return s.standings.RecalculateAll(ctx, runID)
	}
	return s.standings.Recalculate(ctx, runID, poolIDs)
}

func (s *ScoringService) finish(ctx context.Context, pass string, start time.Time, summary PassSummary) {
	duration := s.now().Sub(start)
	outcome := OutcomeSuccess
	if summary.NoOp {
		outcome = OutcomeNoOp
	}
	s.recorder.PassFinished(pass, outcome, duration)

	s.logger.InfoContext(ctx, "scoring pass finished",
		"run_id", summary.RunID,
		"pass", pass,
		"outcome", outcome,
		"updated", summary.Updated,
		"failed", summary.Failed,
		"pools_ranked", summary.PoolsRanked,
		"duration", duration,
	)

	event := scoringevent.PassCompleted{
		RunID:        summary.RunID,
		Pass:         pass,
		Updated:      summary.Updated,
		Failed:       summary.Failed,
		PoolsRanked:  summary.PoolsRanked,
		NoOp:         summary.NoOp,
		Message:      summary.Message,
		CompletedAt:  s.now().UTC(),
		DurationMsec: duration.Milliseconds(),
	}
	if err := s.publisher.PublishPassCompleted(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish pass completed failed", "run_id", summary.RunID, "pass", pass, "error", err)
	}
}

func (s *ScoringService) finishWithError(ctx context.Context, runID, pass string, start time.Time, err error) {
	s.recorder.PassFinished(pass, OutcomeError, s.now().Sub(start))
	s.logger.ErrorContext(ctx, "scoring pass failed", "run_id", runID, "pass", pass, "error", err)
}

func flightKey(pass string, opts ScoringOptions) string {
	return "scoring:" + pass + ":force=" + strconv.FormatBool(opts.Force)
}
