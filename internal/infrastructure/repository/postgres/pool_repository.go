package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	qb "github.com/riskibarqy/poule-scoring/internal/platform/querybuilder"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) ListRules(ctx context.Context, poolIDs []string) (map[string]scoring.RulesOverride, error) {
	out := make(map[string]scoring.RulesOverride, len(poolIDs))
	if len(poolIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("id", "scoring_rules").From("pools").
		Where(qb.InStrings("id", poolIDs)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pool rules query: %w", err)
	}

	var rows []poolRulesTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pool rules: %w", err)
	}

	for _, row := range rows {
		if len(row.ScoringRules) == 0 {
			continue
		}
		var override scoring.RulesOverride
		if err := sonic.Unmarshal(row.ScoringRules, &override); err != nil {
			return nil, fmt.Errorf("decode scoring rules of pool %s: %w", row.ID, err)
		}
		out[row.ID] = override
	}
	return out, nil
}

func (r *PoolRepository) Exists(ctx context.Context, poolID string) (bool, error) {
	query, args, err := qb.Select("id").From("pools").
		Where(qb.Eq("id", poolID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build pool exists query: %w", err)
	}

	var id string
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get pool: %w", err)
	}
	return true, nil
}

func (r *PoolRepository) ListStandings(ctx context.Context, poolID string) ([]pool.Member, error) {
	query, args, err := qb.Select(poolMemberColumns...).From("pool_members").
		Where(qb.Eq("pool_id", poolID)).
		OrderBy("rank NULLS LAST", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pool standings query: %w", err)
	}

	var rows []poolMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pool standings: %w", err)
	}
	return membersFromRows(rows), nil
}

func (r *PoolRepository) ListPoolIDsWithMembers(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("DISTINCT pool_id").From("pool_members").
		OrderBy("pool_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select member pools query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select member pools: %w", err)
	}
	return ids, nil
}

func membersFromRows(rows []poolMemberTableModel) []pool.Member {
	out := make([]pool.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, pool.Member{
			ID:     row.ID,
			PoolID: row.PoolID,
			UserID: row.UserID,
			Points: row.Points,
			Breakdown: pool.CategoryPoints{
				Match:     row.MatchPoints,
				Topscorer: row.TopscorerPoints,
				Group:     row.GroupPoints,
				Winner:    row.WinnerPoints,
			},
			Rank:              nullIntToPtr(row.Rank),
			PreviousRank:      nullIntToPtr(row.PreviousRank),
			ScoringGeneration: row.ScoringGeneration.String,
			CalculatedAt:      nullTimeToPtr(row.CalculatedAt),
		})
	}
	return out
}
