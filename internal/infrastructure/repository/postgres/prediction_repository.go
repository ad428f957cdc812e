package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	qb "github.com/riskibarqy/poule-scoring/internal/platform/querybuilder"
)

var predictionTables = map[prediction.Category]string{
	prediction.CategoryMatch:     "match_predictions",
	prediction.CategoryTopscorer: "topscorer_predictions",
	prediction.CategoryGroup:     "group_predictions",
	prediction.CategoryWinner:    "winner_predictions",
}

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListMatchPredictions(ctx context.Context, matchIDs []string) ([]prediction.MatchPrediction, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("id", "user_id", "pool_id", "match_id", "home_goals", "away_goals", "points_earned", "is_ai_generated").
		From("match_predictions").
		Where(qb.InStrings("match_id", matchIDs)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match predictions query: %w", err)
	}

	var rows []matchPredictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match predictions: %w", err)
	}

	out := make([]prediction.MatchPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.MatchPrediction{
			ID:            row.ID,
			UserID:        row.UserID,
			PoolID:        row.PoolID,
			MatchID:       row.MatchID,
			HomeGoals:     row.HomeGoals,
			AwayGoals:     row.AwayGoals,
			PointsEarned:  nullIntToPtr(row.PointsEarned),
			IsAIGenerated: row.IsAIGenerated,
		})
	}
	return out, nil
}

func (r *PredictionRepository) ListTopscorerPredictions(ctx context.Context) ([]prediction.TopscorerPrediction, error) {
	query, args, err := qb.Select("id", "user_id", "pool_id", "player_id", "points_earned").
		From("topscorer_predictions").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select topscorer predictions query: %w", err)
	}

	var rows []topscorerPredictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select topscorer predictions: %w", err)
	}

	out := make([]prediction.TopscorerPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.TopscorerPrediction{
			ID:           row.ID,
			UserID:       row.UserID,
			PoolID:       row.PoolID,
			PlayerID:     row.PlayerID,
			PointsEarned: nullIntToPtr(row.PointsEarned),
		})
	}
	return out, nil
}

func (r *PredictionRepository) ListGroupPredictions(ctx context.Context, groupLabels []string) ([]prediction.GroupPrediction, error) {
	if len(groupLabels) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("id", "user_id", "pool_id", "group_label", "teams", "points_earned").
		From("group_predictions").
		Where(qb.InStrings("UPPER(TRIM(group_label))", groupLabels)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select group predictions query: %w", err)
	}

	var rows []groupPredictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select group predictions: %w", err)
	}

	out := make([]prediction.GroupPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.GroupPrediction{
			ID:           row.ID,
			UserID:       row.UserID,
			PoolID:       row.PoolID,
			GroupLabel:   row.GroupLabel,
			Teams:        []string(row.Teams),
			PointsEarned: nullIntToPtr(row.PointsEarned),
		})
	}
	return out, nil
}

func (r *PredictionRepository) ListWinnerPredictions(ctx context.Context) ([]prediction.WinnerPrediction, error) {
	query, args, err := qb.Select("id", "user_id", "pool_id", "country", "points_earned").
		From("winner_predictions").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select winner predictions query: %w", err)
	}

	var rows []winnerPredictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select winner predictions: %w", err)
	}

	out := make([]prediction.WinnerPrediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.WinnerPrediction{
			ID:           row.ID,
			UserID:       row.UserID,
			PoolID:       row.PoolID,
			Country:      row.Country,
			PointsEarned: nullIntToPtr(row.PointsEarned),
		})
	}
	return out, nil
}

// UpdatePoints writes one row outside any transaction so a failure affects
// only that prediction.
func (r *PredictionRepository) UpdatePoints(ctx context.Context, category prediction.Category, predictionID string, points int) error {
	query, args, err := updatePointsQuery(category, predictionID, points)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s prediction points: %w", category, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for %s prediction: %w", category, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s prediction %s not found", category, predictionID)
	}
	return nil
}

func updatePointsQuery(category prediction.Category, predictionID string, points int) (string, []any, error) {
	table, ok := predictionTables[category]
	if !ok {
		return "", nil, fmt.Errorf("unknown prediction category %q", category)
	}

	query, args, err := qb.Update(table).
		Set("points_earned", points).
		Where(qb.Eq("id", predictionID)).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build update %s points query: %w", category, err)
	}
	return query, args, nil
}
