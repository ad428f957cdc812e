package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	qb "github.com/riskibarqy/poule-scoring/internal/platform/querybuilder"
)

const lockPoolQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

const sumEarnedPointsQuery = `
SELECT user_id, category, COALESCE(SUM(points_earned), 0) AS points
FROM (
    SELECT user_id, 'match' AS category, points_earned FROM match_predictions WHERE pool_id = $1
    UNION ALL
    SELECT user_id, 'topscorer', points_earned FROM topscorer_predictions WHERE pool_id = $1
    UNION ALL
    SELECT user_id, 'group', points_earned FROM group_predictions WHERE pool_id = $1
    UNION ALL
    SELECT user_id, 'winner', points_earned FROM winner_predictions WHERE pool_id = $1
) earned
WHERE points_earned IS NOT NULL
GROUP BY user_id, category`

// PoolLedger runs per-pool aggregation inside one transaction guarded by a
// transaction-scoped advisory lock on the pool id.
type PoolLedger struct {
	db *sqlx.DB
}

func NewPoolLedger(db *sqlx.DB) *PoolLedger {
	return &PoolLedger{db: db}
}

func (l *PoolLedger) WithPoolLock(ctx context.Context, poolID string, fn func(ctx context.Context, tx pool.LedgerTx) error) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx pool %s: %w", poolID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, lockPoolQuery, poolID); err != nil {
		return fmt.Errorf("lock pool %s: %w", poolID, err)
	}

	if err := fn(ctx, &ledgerTx{tx: tx, poolID: poolID}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pool %s: %w", poolID, err)
	}
	return nil
}

type ledgerTx struct {
	tx     *sqlx.Tx
	poolID string
	seq    int
}

func (t *ledgerTx) ListMembers(ctx context.Context) ([]pool.Member, error) {
	query, args, err := qb.Select(poolMemberColumns...).From("pool_members").
		Where(qb.Eq("pool_id", t.poolID)).
		OrderBy("user_id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pool members query: %w", err)
	}

	var rows []poolMemberTableModel
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pool members: %w", err)
	}
	return membersFromRows(rows), nil
}

func (t *ledgerTx) SumEarnedPoints(ctx context.Context) (map[string]pool.CategoryPoints, error) {
	var rows []earnedPointsRow
	if err := t.tx.SelectContext(ctx, &rows, sumEarnedPointsQuery, t.poolID); err != nil {
		return nil, fmt.Errorf("sum earned points: %w", err)
	}
	return categoryTotals(rows), nil
}

func categoryTotals(rows []earnedPointsRow) map[string]pool.CategoryPoints {
	out := make(map[string]pool.CategoryPoints)
	for _, row := range rows {
		cp := out[row.UserID]
		switch prediction.Category(row.Category) {
		case prediction.CategoryMatch:
			cp.Match += row.Points
		case prediction.CategoryTopscorer:
			cp.Topscorer += row.Points
		case prediction.CategoryGroup:
			cp.Group += row.Points
		case prediction.CategoryWinner:
			cp.Winner += row.Points
		}
		out[row.UserID] = cp
	}
	return out
}

// SaveStanding updates one member inside a savepoint. A failed update is
// rolled back to the savepoint so the pool transaction stays usable.
func (t *ledgerTx) SaveStanding(ctx context.Context, member pool.Member) error {
	query, args, err := saveStandingQuery(t.poolID, member)
	if err != nil {
		return err
	}

	t.seq++
	savepoint := savepointName(t.seq)
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	result, execErr := t.tx.ExecContext(ctx, query, args...)
	if execErr == nil {
		var affected int64
		if affected, execErr = result.RowsAffected(); execErr == nil && affected == 0 {
			execErr = fmt.Errorf("pool member %s not found", member.ID)
		}
	}
	if execErr != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return errors.Join(fmt.Errorf("update pool member %s: %w", member.ID, execErr), fmt.Errorf("rollback savepoint: %w", rbErr))
		}
		return fmt.Errorf("update pool member %s: %w", member.ID, execErr)
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func saveStandingQuery(poolID string, member pool.Member) (string, []any, error) {
	query, args, err := qb.Update("pool_members").
		Set("points", member.Points).
		Set("match_points", member.Breakdown.Match).
		Set("topscorer_points", member.Breakdown.Topscorer).
		Set("group_points", member.Breakdown.Group).
		Set("winner_points", member.Breakdown.Winner).
		Set("rank", intPtrToNull(member.Rank)).
		Set("previous_rank", intPtrToNull(member.PreviousRank)).
		Set("scoring_generation", stringToNull(member.ScoringGeneration)).
		Set("calculated_at", timePtrToNull(member.CalculatedAt)).
		Where(
			qb.Eq("id", member.ID),
			qb.Eq("pool_id", poolID),
		).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build update pool member query: %w", err)
	}
	return query, args, nil
}
