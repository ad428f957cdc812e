package prediction

import "context"

type Repository interface {
	ListMatchPredictions(ctx context.Context, matchIDs []string) ([]MatchPrediction, error)
	ListTopscorerPredictions(ctx context.Context) ([]TopscorerPrediction, error)
	ListGroupPredictions(ctx context.Context, groupLabels []string) ([]GroupPrediction, error)
	ListWinnerPredictions(ctx context.Context) ([]WinnerPrediction, error)

	// UpdatePoints writes points_earned for one prediction row of the given category.
	UpdatePoints(ctx context.Context, category Category, predictionID string, points int) error
}
