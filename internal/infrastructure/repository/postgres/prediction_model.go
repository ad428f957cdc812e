package postgres

import (
	"database/sql"

	"github.com/lib/pq"
)

type matchPredictionTableModel struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	PoolID        string        `db:"pool_id"`
	MatchID       string        `db:"match_id"`
	HomeGoals     int           `db:"home_goals"`
	AwayGoals     int           `db:"away_goals"`
	PointsEarned  sql.NullInt64 `db:"points_earned"`
	IsAIGenerated bool          `db:"is_ai_generated"`
}

type topscorerPredictionTableModel struct {
	ID           string        `db:"id"`
	UserID       string        `db:"user_id"`
	PoolID       string        `db:"pool_id"`
	PlayerID     string        `db:"player_id"`
	PointsEarned sql.NullInt64 `db:"points_earned"`
}

type groupPredictionTableModel struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	PoolID       string         `db:"pool_id"`
	GroupLabel   string         `db:"group_label"`
	Teams        pq.StringArray `db:"teams"`
	PointsEarned sql.NullInt64  `db:"points_earned"`
}

type winnerPredictionTableModel struct {
	ID           string        `db:"id"`
	UserID       string        `db:"user_id"`
	PoolID       string        `db:"pool_id"`
	Country      string        `db:"country"`
	PointsEarned sql.NullInt64 `db:"points_earned"`
}
