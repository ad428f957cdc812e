package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

const msgNoFinishedMatches = "No finished matches to score"

// ScoreMatches scores every match prediction of finished matches and
// re-ranks every pool holding one of those predictions.
func (s *ScoringService) ScoreMatches(ctx context.Context, opts ScoringOptions) (MatchScoringResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreMatches")
	defer span.End()

	v, err, _ := s.flight.Do(ctx, flightKey(PassMatches, opts), func(ctx context.Context) (any, error) {
		var result MatchScoringResult
		summary, err := s.execute(ctx, PassMatches, opts, func(ctx context.Context, run *scoringRun) (passOutcome, error) {
			out, processed, err := s.scoreMatches(ctx, run)
			result.MatchesProcessed = processed
			return out, err
		})
		result.PassSummary = summary
		return result, err
	})
	result, _ := v.(MatchScoringResult)
	return result, err
}

func (s *ScoringService) scoreMatches(ctx context.Context, run *scoringRun) (passOutcome, int, error) {
	finished, err := s.matchRepo.ListFinished(ctx)
	if err != nil {
		return passOutcome{}, 0, fmt.Errorf("%w: list finished matches: %w", ErrDependencyUnavailable, err)
	}

	byID := make(map[string]match.Match, len(finished))
	matchIDs := make([]string, 0, len(finished))
	for _, m := range finished {
		if !m.Scoreable() {
			continue
		}
		byID[m.ID] = m
		matchIDs = append(matchIDs, m.ID)
	}
	if len(matchIDs) == 0 {
		return noOpOutcome(msgNoFinishedMatches), 0, nil
	}

	predictions, err := s.predictionRepo.ListMatchPredictions(ctx, matchIDs)
	if err != nil {
		return passOutcome{}, 0, fmt.Errorf("%w: list match predictions: %w", ErrDependencyUnavailable, err)
	}

	poolIDs := make([]string, 0, len(predictions))
	for _, p := range predictions {
		poolIDs = append(poolIDs, p.PoolID)
	}
	if err := s.loadPoolRules(ctx, run, poolIDs); err != nil {
		return passOutcome{}, 0, err
	}

	rows := make([]scoredRow, 0, len(predictions))
	for _, p := range predictions {
		m, ok := byID[p.MatchID]
		if !ok {
			continue
		}
		rows = append(rows, scoredRow{
			id:     p.ID,
			poolID: p.PoolID,
			stored: p.PointsEarned,
			points: scoring.MatchPoints(run.rulesFor(p.PoolID), p.HomeGoals, p.AwayGoals, *m.HomeScore, *m.AwayScore),
		})
	}

	out := newPassOutcome()
	s.persistPoints(ctx, run, PassMatches, prediction.CategoryMatch, rows, &out)
	out.message = fmt.Sprintf("Scored %d match predictions across %d matches", out.updated, len(matchIDs))
	return out, len(matchIDs), nil
}
