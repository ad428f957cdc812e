package httpapi

import (
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/groupstanding"
	"github.com/riskibarqy/poule-scoring/internal/domain/pool"
	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

type scoringRequest struct {
	Force bool `json:"force"`
}

type setTournamentResultRequest struct {
	Winner   string `json:"winner" validate:"required,max=100"`
	Finalist string `json:"finalist" validate:"omitempty,max=100"`
}

type setGroupStandingRequest struct {
	Teams []string `json:"teams" validate:"required,min=2,max=8,dive,required,max=100"`
}

// noOpDTO is returned when a pass had nothing to score.
type noOpDTO struct {
	Message string `json:"message"`
	Updated *int   `json:"updated,omitempty"`
}

type matchScoringDTO struct {
	Success          bool `json:"success"`
	Updated          int  `json:"updated"`
	MatchesProcessed int  `json:"matchesProcessed"`
}

type topscorerScoringDTO struct {
	Success    bool     `json:"success"`
	Updated    int      `json:"updated"`
	TopScorers []string `json:"topScorers"`
	MaxGoals   int      `json:"maxGoals"`
}

type groupScoringDTO struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	GroupsProcessed int    `json:"groupsProcessed"`
}

type winnerScoringDTO struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Winner   string `json:"winner"`
	Finalist string `json:"finalist"`
}

type runAllDTO struct {
	RunID       string `json:"runId"`
	Matches     any    `json:"matches"`
	Topscorers  any    `json:"topscorers"`
	Groups      any    `json:"groups"`
	Winner      any    `json:"winner"`
	PoolsRanked int    `json:"poolsRanked"`
}

type categoryPointsDTO struct {
	Match     int `json:"match"`
	Topscorer int `json:"topscorer"`
	Group     int `json:"group"`
	Winner    int `json:"winner"`
}

type standingDTO struct {
	UserID       string            `json:"userId"`
	Points       int               `json:"points"`
	Rank         *int              `json:"rank"`
	PreviousRank *int              `json:"previousRank,omitempty"`
	Movement     int               `json:"movement"`
	Breakdown    categoryPointsDTO `json:"breakdown"`
	CalculatedAt string            `json:"calculatedAt,omitempty"`
}

type poolStandingsDTO struct {
	PoolID    string        `json:"poolId"`
	Standings []standingDTO `json:"standings"`
}

type tournamentResultDTO struct {
	Winner   string `json:"winner"`
	Finalist string `json:"finalist,omitempty"`
}

type groupStandingDTO struct {
	Group     string   `json:"group"`
	Teams     []string `json:"teams"`
	UpdatedAt string   `json:"updatedAt"`
}

func matchScoringToDTO(v usecase.MatchScoringResult) any {
	if v.NoOp {
		updated := 0
		return noOpDTO{Message: v.Message, Updated: &updated}
	}
	return matchScoringDTO{
		Success:          v.Success,
		Updated:          v.Updated,
		MatchesProcessed: v.MatchesProcessed,
	}
}

func topscorerScoringToDTO(v usecase.TopscorerScoringResult) any {
	if v.NoOp {
		return noOpDTO{Message: v.Message}
	}
	names := v.TopScorers
	if names == nil {
		names = []string{}
	}
	return topscorerScoringDTO{
		Success:    v.Success,
		Updated:    v.Updated,
		TopScorers: names,
		MaxGoals:   v.MaxGoals,
	}
}

func groupScoringToDTO(v usecase.GroupScoringResult) any {
	if v.NoOp {
		return noOpDTO{Message: v.Message}
	}
	return groupScoringDTO{
		Success:         v.Success,
		Message:         v.Message,
		GroupsProcessed: v.GroupsProcessed,
	}
}

func winnerScoringToDTO(v usecase.WinnerScoringResult) any {
	if v.NoOp {
		return noOpDTO{Message: v.Message}
	}
	return winnerScoringDTO{
		Success:  v.Success,
		Message:  v.Message,
		Winner:   v.Winner,
		Finalist: v.Finalist,
	}
}

func runAllToDTO(v usecase.RunAllResult) runAllDTO {
	return runAllDTO{
		RunID:       v.RunID,
		Matches:     matchScoringToDTO(v.Matches),
		Topscorers:  topscorerScoringToDTO(v.Topscorers),
		Groups:      groupScoringToDTO(v.Groups),
		Winner:      winnerScoringToDTO(v.Winner),
		PoolsRanked: v.PoolsRanked,
	}
}

func standingsToDTO(poolID string, members []pool.Member) poolStandingsDTO {
	items := make([]standingDTO, 0, len(members))
	for _, m := range members {
		items = append(items, standingDTO{
			UserID:       m.UserID,
			Points:       m.Points,
			Rank:         m.Rank,
			PreviousRank: m.PreviousRank,
			Movement:     m.RankMovement(),
			Breakdown: categoryPointsDTO{
				Match:     m.Breakdown.Match,
				Topscorer: m.Breakdown.Topscorer,
				Group:     m.Breakdown.Group,
				Winner:    m.Breakdown.Winner,
			},
			CalculatedAt: formatOptionalTime(m.CalculatedAt),
		})
	}
	return poolStandingsDTO{PoolID: poolID, Standings: items}
}

func tournamentResultToDTO(v tournament.Result) tournamentResultDTO {
	return tournamentResultDTO{Winner: v.Winner, Finalist: v.Finalist}
}

func groupStandingToDTO(v groupstanding.Standing) groupStandingDTO {
	return groupStandingDTO{
		Group:     v.GroupLabel,
		Teams:     v.Teams,
		UpdatedAt: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
