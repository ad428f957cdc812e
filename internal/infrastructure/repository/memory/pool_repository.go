package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

// PoolRepository serves pool reads and the per-pool ledger.
type PoolRepository struct{ store *Store }

func NewPoolRepository(store *Store) *PoolRepository {
	return &PoolRepository{store: store}
}

func (r *PoolRepository) ListRules(_ context.Context, poolIDs []string) (map[string]scoring.RulesOverride, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := make(map[string]scoring.RulesOverride, len(poolIDs))
	for _, id := range poolIDs {
		if p, ok := r.store.pools[id]; ok {
			out[id] = p.Rules
		}
	}
	return out, nil
}

func (r *PoolRepository) Exists(_ context.Context, poolID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return false, r.store.readErr
	}
	_, ok := r.store.pools[poolID]
	return ok, nil
}

func (r *PoolRepository) ListStandings(_ context.Context, poolID string) ([]pool.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := r.store.membersOf(poolID)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rankOrMax(out[i].Rank), rankOrMax(out[j].Rank)
		if ri != rj {
			return ri < rj
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *PoolRepository) ListPoolIDsWithMembers(_ context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	seen := make(map[string]struct{})
	for _, m := range r.store.members {
		seen[m.PoolID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// WithPoolLock serialises callers per pool with an in-process mutex.
func (r *PoolRepository) WithPoolLock(ctx context.Context, poolID string, fn func(ctx context.Context, tx pool.LedgerTx) error) error {
	lock, _ := r.store.poolLocks.LoadOrStore(poolID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	return fn(ctx, &ledgerTx{store: r.store, poolID: poolID})
}

type ledgerTx struct {
	store  *Store
	poolID string
}

func (tx *ledgerTx) ListMembers(_ context.Context) ([]pool.Member, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	if tx.store.readErr != nil {
		return nil, tx.store.readErr
	}
	out := tx.store.membersOf(tx.poolID)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (tx *ledgerTx) SumEarnedPoints(_ context.Context) (map[string]pool.CategoryPoints, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	if tx.store.readErr != nil {
		return nil, tx.store.readErr
	}

	out := make(map[string]pool.CategoryPoints)
	add := func(userID, poolID string, earned *int, apply func(*pool.CategoryPoints, int)) {
		if poolID != tx.poolID || earned == nil {
			return
		}
		cp := out[userID]
		apply(&cp, *earned)
		out[userID] = cp
	}
	for _, p := range tx.store.matchPreds {
		add(p.UserID, p.PoolID, p.PointsEarned, func(cp *pool.CategoryPoints, v int) { cp.Match += v })
	}
	for _, p := range tx.store.topPreds {
		add(p.UserID, p.PoolID, p.PointsEarned, func(cp *pool.CategoryPoints, v int) { cp.Topscorer += v })
	}
	for _, p := range tx.store.groupPreds {
		add(p.UserID, p.PoolID, p.PointsEarned, func(cp *pool.CategoryPoints, v int) { cp.Group += v })
	}
	for _, p := range tx.store.winPreds {
		add(p.UserID, p.PoolID, p.PointsEarned, func(cp *pool.CategoryPoints, v int) { cp.Winner += v })
	}
	return out, nil
}

func (tx *ledgerTx) SaveStanding(_ context.Context, member pool.Member) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if err := tx.store.writeAllowed(member.ID); err != nil {
		return err
	}
	tx.store.members[member.ID] = member
	return nil
}

func (s *Store) membersOf(poolID string) []pool.Member {
	out := make([]pool.Member, 0)
	for _, m := range s.members {
		if m.PoolID == poolID {
			out = append(out, m)
		}
	}
	return out
}

func rankOrMax(rank *int) int {
	if rank == nil {
		return int(^uint(0) >> 1)
	}
	return *rank
}
