package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	qb "github.com/riskibarqy/poule-scoring/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ListFinished selects scored matches and keeps those whose status normalises
// to finished, so provider codes such as FT or AET count too.
func (r *MatchRepository) ListFinished(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select("id", "home_team", "away_team", "home_score", "away_score", "status", "kickoff_at").
		From("matches").
		Where(
			qb.NotNull("home_score"),
			qb.NotNull("away_score"),
		).
		OrderBy("kickoff_at NULLS LAST", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finished matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select finished matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		m := matchFromRow(row)
		if !m.Scoreable() {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	m := match.Match{
		ID:        row.ID,
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		HomeScore: nullIntToPtr(row.HomeScore),
		AwayScore: nullIntToPtr(row.AwayScore),
		Status:    match.NormalizeStatus(row.Status),
	}
	if row.KickoffAt.Valid {
		m.KickoffAt = row.KickoffAt.Time.UTC()
	}
	return m
}
