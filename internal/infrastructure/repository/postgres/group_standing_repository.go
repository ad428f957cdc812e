package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	qb "github.com/riskibarqy/poule-scoring/internal/platform/querybuilder"
)

type GroupStandingRepository struct {
	db *sqlx.DB
}

func NewGroupStandingRepository(db *sqlx.DB) *GroupStandingRepository {
	return &GroupStandingRepository{db: db}
}

func (r *GroupStandingRepository) List(ctx context.Context) ([]groupstanding.Standing, error) {
	query, args, err := qb.Select("group_label", "teams", "updated_at").From("group_standings").
		OrderBy("group_label").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select group standings query: %w", err)
	}

	var rows []groupStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select group standings: %w", err)
	}

	out := make([]groupstanding.Standing, 0, len(rows))
	for _, row := range rows {
		st := groupstanding.Standing{
			GroupLabel: row.GroupLabel,
			Teams:      []string(row.Teams),
		}
		if row.UpdatedAt.Valid {
			st.UpdatedAt = row.UpdatedAt.Time.UTC()
		}
		out = append(out, st)
	}
	return out, nil
}

func (r *GroupStandingRepository) Upsert(ctx context.Context, standing groupstanding.Standing) error {
	updatedAt := standing.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	model := groupStandingTableModel{
		GroupLabel: groupstanding.NormalizeLabel(standing.GroupLabel),
		Teams:      pq.StringArray(standing.Teams),
		UpdatedAt:  sql.NullTime{Time: updatedAt, Valid: true},
	}
	query, args, err := qb.InsertModel("group_standings", model, `ON CONFLICT (group_label)
DO UPDATE SET
    teams = EXCLUDED.teams,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert group standing query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert group standing %s: %w", model.GroupLabel, err)
	}
	return nil
}
