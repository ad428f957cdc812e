package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/domain/setting"
	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
)

// GroundTruthService records administrator-entered outcomes.
type GroundTruthService struct {
	groupRepo   groupstanding.Repository
	settingRepo setting.Repository
	now         func() time.Time
}

func NewGroundTruthService(groupRepo groupstanding.Repository, settingRepo setting.Repository) *GroundTruthService {
	return &GroundTruthService{
		groupRepo:   groupRepo,
		settingRepo: settingRepo,
		now:         time.Now,
	}
}

type SetTournamentResultInput struct {
	Winner   string
	Finalist string
}

func (s *GroundTruthService) SetTournamentResult(ctx context.Context, input SetTournamentResultInput) (tournament.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroundTruthService.SetTournamentResult")
	defer span.End()

	result := tournament.Result{
		Winner:   strings.TrimSpace(input.Winner),
		Finalist: strings.TrimSpace(input.Finalist),
	}
	if !result.HasWinner() {
		return tournament.Result{}, fmt.Errorf("%w: winner is required", ErrInvalidInput)
	}
	if scoring.SameName(result.Winner, result.Finalist) {
		return tournament.Result{}, fmt.Errorf("%w: finalist must differ from winner", ErrInvalidInput)
	}

	if err := s.settingRepo.SaveTournamentResult(ctx, result); err != nil {
		return tournament.Result{}, fmt.Errorf("save tournament result: %w", err)
	}
	return result, nil
}

type SetGroupStandingInput struct {
	GroupLabel string
	Teams      []string
}

func (s *GroundTruthService) SetGroupStanding(ctx context.Context, input SetGroupStandingInput) (groupstanding.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroundTruthService.SetGroupStanding")
	defer span.End()

	label := groupstanding.NormalizeLabel(input.GroupLabel)
	if label == "" {
		return groupstanding.Standing{}, fmt.Errorf("%w: group label is required", ErrInvalidInput)
	}
	if len(input.Teams) < 2 {
		return groupstanding.Standing{}, fmt.Errorf("%w: a group needs at least 2 teams", ErrInvalidInput)
	}

	teams := make([]string, 0, len(input.Teams))
	seen := make(map[string]struct{}, len(input.Teams))
	for _, raw := range input.Teams {
		name := strings.TrimSpace(raw)
		if name == "" {
			return groupstanding.Standing{}, fmt.Errorf("%w: team name cannot be empty", ErrInvalidInput)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return groupstanding.Standing{}, fmt.Errorf("%w: duplicate team %q", ErrInvalidInput, name)
		}
		seen[key] = struct{}{}
		teams = append(teams, name)
	}

	standing := groupstanding.Standing{
		GroupLabel: label,
		Teams:      teams,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.groupRepo.Upsert(ctx, standing); err != nil {
		return groupstanding.Standing{}, fmt.Errorf("save group standing: %w", err)
	}
	return standing, nil
}
