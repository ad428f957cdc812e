package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

const (
	msgNoTopscorerInput = "No players or topscorer predictions to score"
	msgNoGoalsYet       = "No goals scored yet"
)

// ScoreTopscorers scores topscorer picks against the current goal ranking.
func (s *ScoringService) ScoreTopscorers(ctx context.Context, opts ScoringOptions) (TopscorerScoringResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreTopscorers")
	defer span.End()

	v, err, _ := s.flight.Do(ctx, flightKey(PassTopscorers, opts), func(ctx context.Context) (any, error) {
		var result TopscorerScoringResult
		summary, err := s.execute(ctx, PassTopscorers, opts, func(ctx context.Context, run *scoringRun) (passOutcome, error) {
			out, board, err := s.scoreTopscorers(ctx, run)
			if !out.noOp {
				result.TopScorers = board.TopscorerNames
				result.MaxGoals = board.MaxGoals
			}
			return out, err
		})
		result.PassSummary = summary
		return result, err
	})
	result, _ := v.(TopscorerScoringResult)
	return result, err
}

func (s *ScoringService) scoreTopscorers(ctx context.Context, run *scoringRun) (passOutcome, scoring.TopscorerBoard, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return passOutcome{}, scoring.TopscorerBoard{}, fmt.Errorf("%w: list players: %w", ErrDependencyUnavailable, err)
	}
	predictions, err := s.predictionRepo.ListTopscorerPredictions(ctx)
	if err != nil {
		return passOutcome{}, scoring.TopscorerBoard{}, fmt.Errorf("%w: list topscorer predictions: %w", ErrDependencyUnavailable, err)
	}
	if len(players) == 0 || len(predictions) == 0 {
		return noOpOutcome(msgNoTopscorerInput), scoring.TopscorerBoard{}, nil
	}

	goals := make([]scoring.PlayerGoals, 0, len(players))
	for _, p := range players {
		goals = append(goals, scoring.PlayerGoals{PlayerID: p.ID, Name: p.Name, Goals: p.Goals})
	}
	board := scoring.NewTopscorerBoard(goals)
	if board.MaxGoals <= 0 {
		return noOpOutcome(msgNoGoalsYet), board, nil
	}

	poolIDs := make([]string, 0, len(predictions))
	for _, p := range predictions {
		poolIDs = append(poolIDs, p.PoolID)
	}
	if err := s.loadPoolRules(ctx, run, poolIDs); err != nil {
		return passOutcome{}, board, err
	}

	rows := make([]scoredRow, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, scoredRow{
			id:     p.ID,
			poolID: p.PoolID,
			stored: p.PointsEarned,
			points: board.Points(run.rulesFor(p.PoolID), p.PlayerID),
		})
	}

	out := newPassOutcome()
	s.persistPoints(ctx, run, PassTopscorers, prediction.CategoryTopscorer, rows, &out)
	out.message = fmt.Sprintf("Scored %d topscorer predictions", out.updated)
	return out, board, nil
}
