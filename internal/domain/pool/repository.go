package pool

import (
	"context"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

type Repository interface {
	// ListRules returns the scoring_rules override of each requested pool.
	ListRules(ctx context.Context, poolIDs []string) (map[string]scoring.RulesOverride, error)
	// ListStandings returns members ordered by rank.
	ListStandings(ctx context.Context, poolID string) ([]Member, error)
	Exists(ctx context.Context, poolID string) (bool, error)
	// ListPoolIDsWithMembers returns every pool that has at least one member.
	ListPoolIDsWithMembers(ctx context.Context) ([]string, error)
}

// Ledger serialises standings recalculation per pool. fn runs with an
// exclusive lock on the pool and every LedgerTx call shares one transaction.
type Ledger interface {
	WithPoolLock(ctx context.Context, poolID string, fn func(ctx context.Context, tx LedgerTx) error) error
}

type LedgerTx interface {
	ListMembers(ctx context.Context) ([]Member, error)
	// SumEarnedPoints totals points_earned per user across every category.
	SumEarnedPoints(ctx context.Context) (map[string]CategoryPoints, error)
	// SaveStanding persists one member; a failure leaves the transaction usable.
	SaveStanding(ctx context.Context, member Member) error
}
