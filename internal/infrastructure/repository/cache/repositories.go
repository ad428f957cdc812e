package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	basecache "github.com/riskibarqy/poule-scoring/internal/platform/cache"
)

const (
	standingsKeyPrefix = "standings:"
	existsKeyPrefix    = "pool:exists:"
)

// PoolRepository caches leaderboard reads. Writes go through Ledger, which
// drops the cached leaderboard of every pool it commits.
type PoolRepository struct {
	next      pool.Repository
	standings *basecache.Store[[]pool.Member]
	exists    *basecache.Store[bool]
}

func NewPoolRepository(next pool.Repository, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		next:      next,
		standings: basecache.NewStore[[]pool.Member](ttl),
		exists:    basecache.NewStore[bool](ttl),
	}
}

func (r *PoolRepository) ListRules(ctx context.Context, poolIDs []string) (map[string]scoring.RulesOverride, error) {
	return r.next.ListRules(ctx, poolIDs)
}

func (r *PoolRepository) ListPoolIDsWithMembers(ctx context.Context) ([]string, error) {
	return r.next.ListPoolIDsWithMembers(ctx)
}

func (r *PoolRepository) Exists(ctx context.Context, poolID string) (bool, error) {
	return r.exists.GetOrLoad(ctx, existsKeyPrefix+poolID, func(ctx context.Context) (bool, error) {
		return r.next.Exists(ctx, poolID)
	})
}

func (r *PoolRepository) ListStandings(ctx context.Context, poolID string) ([]pool.Member, error) {
	items, err := r.standings.GetOrLoad(ctx, standingsKeyPrefix+poolID, func(ctx context.Context) ([]pool.Member, error) {
		items, err := r.next.ListStandings(ctx, poolID)
		if err != nil {
			return nil, err
		}
		return append([]pool.Member(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]pool.Member(nil), items...), nil
}

// Invalidate drops the cached leaderboard of one pool.
func (r *PoolRepository) Invalidate(ctx context.Context, poolID string) {
	r.standings.Delete(ctx, standingsKeyPrefix+poolID)
}

// InvalidateAll drops every cached leaderboard and returns how many were cached.
func (r *PoolRepository) InvalidateAll(ctx context.Context) int {
	r.exists.DeletePrefix(ctx, existsKeyPrefix)
	return r.standings.DeletePrefix(ctx, standingsKeyPrefix)
}

type Ledger struct {
	next  pool.Ledger
	cache *PoolRepository
}

func NewLedger(next pool.Ledger, cache *PoolRepository) *Ledger {
	return &Ledger{next: next, cache: cache}
}

func (l *Ledger) WithPoolLock(ctx context.Context, poolID string, fn func(ctx context.Context, tx pool.LedgerTx) error) error {
	err := l.next.WithPoolLock(ctx, poolID, fn)
	l.cache.Invalidate(ctx, poolID)
	return err
}
