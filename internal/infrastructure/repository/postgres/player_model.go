package postgres

import (
	"database/sql"

	"github.com/lib/pq"
)

type matchTableModel struct {
	ID        string        `db:"id"`
	HomeTeam  string        `db:"home_team"`
	AwayTeam  string        `db:"away_team"`
	HomeScore sql.NullInt64 `db:"home_score"`
	AwayScore sql.NullInt64 `db:"away_score"`
	Status    string        `db:"status"`
	KickoffAt sql.NullTime  `db:"kickoff_at"`
}

type playerTableModel struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Country string `db:"country"`
	Goals   int    `db:"goals"`
}

type groupStandingTableModel struct {
	GroupLabel string         `db:"group_label"`
	Teams      pq.StringArray `db:"teams"`
	UpdatedAt  sql.NullTime   `db:"updated_at"`
}

type globalSettingTableModel struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}
