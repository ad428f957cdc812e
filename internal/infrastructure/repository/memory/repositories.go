package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/match"
	"github.com/riskibarqy/poule-scoring/internal/domain/player"
	"github.com/riskibarqy/poule-scoring/internal/domain/prediction"
	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
)

type MatchRepository struct{ store *Store }

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) ListFinished(_ context.Context) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := make([]match.Match, 0, len(r.store.matches))
	for _, m := range r.store.matches {
		if m.Scoreable() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type PlayerRepository struct{ store *Store }

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := make([]player.Player, 0, len(r.store.players))
	for _, p := range r.store.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type GroupStandingRepository struct{ store *Store }

func NewGroupStandingRepository(store *Store) *GroupStandingRepository {
	return &GroupStandingRepository{store: store}
}

func (r *GroupStandingRepository) List(_ context.Context) ([]groupstanding.Standing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := make([]groupstanding.Standing, 0, len(r.store.groups))
	for _, g := range r.store.groups {
		g.Teams = append([]string(nil), g.Teams...)
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupLabel < out[j].GroupLabel })
	return out, nil
}

func (r *GroupStandingRepository) Upsert(_ context.Context, standing groupstanding.Standing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.writeAllowed("group:" + standing.GroupLabel); err != nil {
		return err
	}

	standing.Teams = append([]string(nil), standing.Teams...)
	r.store.groups[groupstanding.NormalizeLabel(standing.GroupLabel)] = standing
	return nil
}

type SettingRepository struct{ store *Store }

func NewSettingRepository(store *Store) *SettingRepository {
	return &SettingRepository{store: store}
}

func (r *SettingRepository) Load(_ context.Context) (setting.Snapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return setting.Snapshot{}, r.store.readErr
	}
	return r.store.settings, nil
}

func (r *SettingRepository) SaveTournamentResult(_ context.Context, result tournament.Result) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.writeAllowed(setting.KeyTournamentResult); err != nil {
		return err
	}
	r.store.settings.Result = result
	return nil
}

type PredictionRepository struct{ store *Store }

func NewPredictionRepository(store *Store) *PredictionRepository {
	return &PredictionRepository{store: store}
}

func (r *PredictionRepository) ListMatchPredictions(_ context.Context, matchIDs []string) ([]prediction.MatchPrediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	wanted := toSet(matchIDs)
	out := make([]prediction.MatchPrediction, 0)
	for _, p := range r.store.matchPreds {
		if _, ok := wanted[p.MatchID]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ListTopscorerPredictions(_ context.Context) ([]prediction.TopscorerPrediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := make([]prediction.TopscorerPrediction, 0, len(r.store.topPreds))
	for _, p := range r.store.topPreds {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ListGroupPredictions(_ context.Context, groupLabels []string) ([]prediction.GroupPrediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	wanted := make(map[string]struct{}, len(groupLabels))
	for _, label := range groupLabels {
		wanted[groupstanding.NormalizeLabel(label)] = struct{}{}
	}
	out := make([]prediction.GroupPrediction, 0)
	for _, p := range r.store.groupPreds {
		if _, ok := wanted[groupstanding.NormalizeLabel(p.GroupLabel)]; ok {
			p.Teams = append([]string(nil), p.Teams...)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ListWinnerPredictions(_ context.Context) ([]prediction.WinnerPrediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.readErr != nil {
		return nil, r.store.readErr
	}

	out := make([]prediction.WinnerPrediction, 0, len(r.store.winPreds))
	for _, p := range r.store.winPreds {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) UpdatePoints(_ context.Context, category prediction.Category, predictionID string, points int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.writeAllowed(predictionID); err != nil {
		return err
	}

	switch category {
	case prediction.CategoryMatch:
		p, ok := r.store.matchPreds[predictionID]
		if !ok {
			return fmt.Errorf("match prediction %s not found", predictionID)
		}
		p.PointsEarned = intPtr(points)
		r.store.matchPreds[predictionID] = p
	case prediction.CategoryTopscorer:
		p, ok := r.store.topPreds[predictionID]
		if !ok {
			return fmt.Errorf("topscorer prediction %s not found", predictionID)
		}
		p.PointsEarned = intPtr(points)
		r.store.topPreds[predictionID] = p
	case prediction.CategoryGroup:
		p, ok := r.store.groupPreds[predictionID]
		if !ok {
			return fmt.Errorf("group prediction %s not found", predictionID)
		}
		p.PointsEarned = intPtr(points)
		r.store.groupPreds[predictionID] = p
	case prediction.CategoryWinner:
		p, ok := r.store.winPreds[predictionID]
		if !ok {
			return fmt.Errorf("winner prediction %s not found", predictionID)
		}
		p.PointsEarned = intPtr(points)
		r.store.winPreds[predictionID] = p
	default:
		return fmt.Errorf("unknown prediction category %q", category)
	}
	return nil
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
