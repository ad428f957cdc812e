package memory

import (
	"errors"
	"sync"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/player"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
)

var ErrInjectedWrite = errors.New("injected write failure")

// Store is the shared in-process dataset behind every memory repository.
type Store struct {
	mu sync.RWMutex

	matches    map[string]match.Match
	players    map[string]player.Player
	groups     map[string]groupstanding.Standing
	settings   setting.Snapshot
	pools      map[string]pool.Pool
	members    map[string]pool.Member
	matchPreds map[string]prediction.MatchPrediction
	topPreds   map[string]prediction.TopscorerPrediction
	groupPreds map[string]prediction.GroupPrediction
	winPreds   map[string]prediction.WinnerPrediction

	failWrites map[string]struct{}
	readErr    error
	poolLocks  sync.Map
}

func NewStore() *Store {
	return &Store{
		matches:    make(map[string]match.Match),
		players:    make(map[string]player.Player),
		groups:     make(map[string]groupstanding.Standing),
		pools:      make(map[string]pool.Pool),
		members:    make(map[string]pool.Member),
		matchPreds: make(map[string]prediction.MatchPrediction),
		topPreds:   make(map[string]prediction.TopscorerPrediction),
		groupPreds: make(map[string]prediction.GroupPrediction),
		winPreds:   make(map[string]prediction.WinnerPrediction),
		failWrites: make(map[string]struct{}),
	}
}

// FailWritesFor makes every write to the given row ids fail with ErrInjectedWrite.
func (s *Store) FailWritesFor(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.failWrites[id] = struct{}{}
	}
}

// ClearWriteFailures undoes every FailWritesFor.
func (s *Store) ClearWriteFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failWrites)
}

// FailReads makes every read return err until cleared with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

func (s *Store) writeAllowed(id string) error {
	if _, ok := s.failWrites[id]; ok {
		return ErrInjectedWrite
	}
	return nil
}

func (s *Store) PutMatch(items ...match.Match) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range items {
		s.matches[m.ID] = m
	}
	return s
}

func (s *Store) PutPlayer(items ...player.Player) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		s.players[p.ID] = p
	}
	return s
}

func (s *Store) PutGroupStanding(items ...groupstanding.Standing) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range items {
		g.Teams = append([]string(nil), g.Teams...)
		s.groups[groupstanding.NormalizeLabel(g.GroupLabel)] = g
	}
	return s
}

func (s *Store) PutPool(items ...pool.Pool) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		s.pools[p.ID] = p
	}
	return s
}

func (s *Store) PutMember(items ...pool.Member) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range items {
		s.members[m.ID] = m
	}
	return s
}

func (s *Store) PutMatchPrediction(items ...prediction.MatchPrediction) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		s.matchPreds[p.ID] = p
	}
	return s
}

func (s *Store) PutTopscorerPrediction(items ...prediction.TopscorerPrediction) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		s.topPreds[p.ID] = p
	}
	return s
}

func (s *Store) PutGroupPrediction(items ...prediction.GroupPrediction) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		p.Teams = append([]string(nil), p.Teams...)
		s.groupPreds[p.ID] = p
	}
	return s
}

func (s *Store) PutWinnerPrediction(items ...prediction.WinnerPrediction) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range items {
		s.winPreds[p.ID] = p
	}
	return s
}

func (s *Store) PutSettings(snapshot setting.Snapshot) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = snapshot
	return s
}

// MatchPrediction returns one stored row; used to assert scoring output.
func (s *Store) MatchPrediction(id string) (prediction.MatchPrediction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.matchPreds[id]
	return p, ok
}

func (s *Store) TopscorerPrediction(id string) (prediction.TopscorerPrediction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.topPreds[id]
	return p, ok
}

func (s *Store) GroupPrediction(id string) (prediction.GroupPrediction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.groupPreds[id]
	return p, ok
}

func (s *Store) WinnerPrediction(id string) (prediction.WinnerPrediction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.winPreds[id]
	return p, ok
}

func (s *Store) Member(id string) (pool.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	return m, ok
}

func intPtr(v int) *int {
	return &v
}
