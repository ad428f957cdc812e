package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

const msgWinnerNotSet = "Tournament winner not set yet"

// ScoreWinner scores tournament-winner picks against the wk_results setting.
func (s *ScoringService) ScoreWinner(ctx context.Context, opts ScoringOptions) (WinnerScoringResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreWinner")
	defer span.End()

	v, err, _ := s.flight.Do(ctx, flightKey(PassWinner, opts), func(ctx context.Context) (any, error) {
		var result WinnerScoringResult
		summary, err := s.execute(ctx, PassWinner, opts, func(ctx context.Context, run *scoringRun) (passOutcome, error) {
			out, err := s.scoreWinner(ctx, run)
			if !out.noOp {
				result.Winner = strings.TrimSpace(run.Settings.Result.Winner)
				result.Finalist = strings.TrimSpace(run.Settings.Result.Finalist)
			}
			return out, err
		})
		result.PassSummary = summary
		return result, err
	})
	result, _ := v.(WinnerScoringResult)
	return result, err
}

func (s *ScoringService) scoreWinner(ctx context.Context, run *scoringRun) (passOutcome, error) {
	res := run.Settings.Result
	if !res.HasWinner() {
		return noOpOutcome(msgWinnerNotSet), nil
	}

	predictions, err := s.predictionRepo.ListWinnerPredictions(ctx)
	if err != nil {
		return passOutcome{}, fmt.Errorf("%w: list winner predictions: %w", ErrDependencyUnavailable, err)
	}

	poolIDs := make([]string, 0, len(predictions))
	for _, p := range predictions {
		poolIDs = append(poolIDs, p.PoolID)
	}
	if err := s.loadPoolRules(ctx, run, poolIDs); err != nil {
		return passOutcome{}, err
	}

	rows := make([]scoredRow, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, scoredRow{
			id:     p.ID,
			poolID: p.PoolID,
			stored: p.PointsEarned,
			points: scoring.WinnerPoints(run.rulesFor(p.PoolID), res.Winner, res.Finalist, p.Country),
		})
	}

	out := newPassOutcome()
	s.persistPoints(ctx, run, PassWinner, prediction.CategoryWinner, rows, &out)
	out.message = fmt.Sprintf("Scored %d winner predictions", out.updated)
	return out, nil
}
