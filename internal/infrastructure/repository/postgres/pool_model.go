package postgres

import "database/sql"

type poolRulesTableModel struct {
	ID           string `db:"id"`
	ScoringRules []byte `db:"scoring_rules"`
}

type poolMemberTableModel struct {
	ID                string         `db:"id"`
	PoolID            string         `db:"pool_id"`
	UserID            string         `db:"user_id"`
	Points            int            `db:"points"`
	MatchPoints       int            `db:"match_points"`
	TopscorerPoints   int            `db:"topscorer_points"`
	GroupPoints       int            `db:"group_points"`
	WinnerPoints      int            `db:"winner_points"`
	Rank              sql.NullInt64  `db:"rank"`
	PreviousRank      sql.NullInt64  `db:"previous_rank"`
	ScoringGeneration sql.NullString `db:"scoring_generation"`
	CalculatedAt      sql.NullTime   `db:"calculated_at"`
}

type earnedPointsRow struct {
	UserID   string `db:"user_id"`
	Category string `db:"category"`
	Points   int    `db:"points"`
}

var poolMemberColumns = []string{
	"id",
	"pool_id",
	"user_id",
	"points",
	"match_points",
	"topscorer_points",
	"group_points",
	"winner_points",
	"rank",
	"previous_rank",
	"scoring_generation",
	"calculated_at",
}
