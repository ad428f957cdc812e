package usecase

import (
	"context"
	"fmt"
	"strings"

	concpool "github.com/sourcegraph/conc/pool"
)

// RunAllResult bundles every pass of one combined run. PoolsRanked counts the
// single aggregation sweep performed after all passes.
type RunAllResult struct {
	RunID       string
	Matches     MatchScoringResult
	Topscorers  TopscorerScoringResult
	Groups      GroupScoringResult
	Winner      WinnerScoringResult
	PoolsRanked int
}

// RunAll runs the four passes concurrently against one settings snapshot and
// re-ranks the union of their pools once.
func (s *ScoringService) RunAll(ctx context.Context, opts ScoringOptions) (RunAllResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RunAll")
	defer span.End()

	v, err, _ := s.flight.Do(ctx, flightKey(PassAll, opts), func(ctx context.Context) (any, error) {
		return s.runAll(ctx, opts)
	})
	result, _ := v.(RunAllResult)
	return result, err
}

func (s *ScoringService) runAll(ctx context.Context, opts ScoringOptions) (RunAllResult, error) {
	start := s.now()

	run, err := s.beginRun(ctx)
	if err != nil {
		s.finishWithError(ctx, "", PassAll, start, err)
		return RunAllResult{}, err
	}
	result := RunAllResult{RunID: run.ID}

	var (
		matchesOut, topscorersOut, groupsOut, winnerOut passOutcome
	)
	tasks := concpool.New().WithErrors().WithContext(ctx)
	tasks.Go(func(ctx context.Context) error {
		out, processed, err := s.scoreMatches(ctx, run)
		matchesOut = out
		result.Matches.MatchesProcessed = processed
		return wrapPassErr(PassMatches, err)
	})
	tasks.Go(func(ctx context.Context) error {
		out, board, err := s.scoreTopscorers(ctx, run)
		topscorersOut = out
		if err == nil && !out.noOp {
			result.Topscorers.TopScorers = board.TopscorerNames
			result.Topscorers.MaxGoals = board.MaxGoals
		}
		return wrapPassErr(PassTopscorers, err)
	})
	tasks.Go(func(ctx context.Context) error {
		out, groups, err := s.scoreGroups(ctx, run)
		groupsOut = out
		result.Groups.GroupsProcessed = groups
		return wrapPassErr(PassGroups, err)
	})
	tasks.Go(func(ctx context.Context) error {
		out, err := s.scoreWinner(ctx, run)
		winnerOut = out
		if err == nil && !out.noOp {
			result.Winner.Winner = strings.TrimSpace(run.Settings.Result.Winner)
			result.Winner.Finalist = strings.TrimSpace(run.Settings.Result.Finalist)
		}
		return wrapPassErr(PassWinner, err)
	})
	err = tasks.Wait()
	outcomes := []passOutcome{matchesOut, topscorersOut, groupsOut, winnerOut}
	if err != nil {
		// Points already written by the passes that finished still reach the
		// standings; the next run repairs the rest.
		ranked, rankErr := s.standings.Recalculate(ctx, run.ID, rankablePools(outcomes))
		result.PoolsRanked = ranked.PoolsRanked
		if rankErr != nil {
			s.logger.WarnContext(ctx, "partial standings recalculation failed", "run_id", run.ID, "error", rankErr)
		}
		s.finishWithError(ctx, run.ID, PassAll, start, err)
		return result, err
	}

	result.Matches.PassSummary = summaryOf(run.ID, matchesOut)
	result.Topscorers.PassSummary = summaryOf(run.ID, topscorersOut)
	result.Groups.PassSummary = summaryOf(run.ID, groupsOut)
	result.Winner.PassSummary = summaryOf(run.ID, winnerOut)

	ranked, err := s.rankPools(ctx, run.ID, rankablePools(outcomes), opts.Force)
	result.PoolsRanked = ranked.PoolsRanked
	if err != nil {
		s.finishWithError(ctx, run.ID, PassAll, start, err)
		return result, err
	}

	s.finish(ctx, PassAll, start, PassSummary{
		RunID:       run.ID,
		Success:     true,
		Message:     "Scored all prediction categories",
		Updated:     matchesOut.updated + topscorersOut.updated + groupsOut.updated + winnerOut.updated,
		Failed:      matchesOut.failed + topscorersOut.failed + groupsOut.failed + winnerOut.failed,
		PoolsRanked: ranked.PoolsRanked,
	})
	return result, nil
}

func rankablePools(outcomes []passOutcome) []string {
	pools := make([]string, 0)
	for _, out := range outcomes {
		if out.noOp {
			continue
		}
		pools = append(pools, out.pools()...)
	}
	return pools
}

func summaryOf(runID string, out passOutcome) PassSummary {
	return PassSummary{
		RunID:   runID,
		Success: !out.noOp,
		NoOp:    out.noOp,
		Message: out.message,
		Updated: out.updated,
		Failed:  out.failed,
	}
}

func wrapPassErr(pass string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s pass: %w", pass, err)
}
