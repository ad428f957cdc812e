package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

const msgNoGroupStandings = "No actual group standings set"

// ScoreGroups scores group-order predictions for every group with an official order.
func (s *ScoringService) ScoreGroups(ctx context.Context, opts ScoringOptions) (GroupScoringResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreGroups")
	defer span.End()

	v, err, _ := s.flight.Do(ctx, flightKey(PassGroups, opts), func(ctx context.Context) (any, error) {
		var result GroupScoringResult
		summary, err := s.execute(ctx, PassGroups, opts, func(ctx context.Context, run *scoringRun) (passOutcome, error) {
			out, groups, err := s.scoreGroups(ctx, run)
			result.GroupsProcessed = groups
			return out, err
		})
		result.PassSummary = summary
		return result, err
	})
	result, _ := v.(GroupScoringResult)
	return result, err
}

func (s *ScoringService) scoreGroups(ctx context.Context, run *scoringRun) (passOutcome, int, error) {
	standings, err := s.groupRepo.List(ctx)
	if err != nil {
		return passOutcome{}, 0, fmt.Errorf("%w: list group standings: %w", ErrDependencyUnavailable, err)
	}

	official := make(map[string][]string, len(standings))
	labels := make([]string, 0, len(standings))
	for _, st := range standings {
		label := groupstanding.NormalizeLabel(st.GroupLabel)
		if label == "" || len(st.Teams) == 0 {
			continue
		}
		if _, dup := official[label]; !dup {
			labels = append(labels, label)
		}
		official[label] = st.Teams
	}
	if len(official) == 0 {
		return noOpOutcome(msgNoGroupStandings), 0, nil
	}

	predictions, err := s.predictionRepo.ListGroupPredictions(ctx, labels)
	if err != nil {
		return passOutcome{}, 0, fmt.Errorf("%w: list group predictions: %w", ErrDependencyUnavailable, err)
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
		teams, ok := official[groupstanding.NormalizeLabel(p.GroupLabel)]
		if !ok {
			continue
		}
		score := scoring.GroupPoints(run.rulesFor(p.PoolID), teams, p.Teams)
		rows = append(rows, scoredRow{
			id:     p.ID,
			poolID: p.PoolID,
			stored: p.PointsEarned,
			points: score.Points,
		})
	}

	out := newPassOutcome()
	s.persistPoints(ctx, run, PassGroups, prediction.CategoryGroup, rows, &out)
	out.message = fmt.Sprintf("Scored %d group predictions across %d groups", out.updated, len(official))
	return out, len(official), nil
}
