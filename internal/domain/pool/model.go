package pool

import (
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
)

// Pool is a private competition ("poule") with its own scoring rules.
type Pool struct {
	ID    string
	Name  string
	Rules scoring.RulesOverride
}

// CategoryPoints is a member's earned points split by prediction category.
type CategoryPoints struct {
	Match     int
	Topscorer int
	Group     int
	Winner    int
}

func (c CategoryPoints) Total() int {
	return c.Match + c.Topscorer + c.Group + c.Winner
}

// Member is one user's row in a pool leaderboard.
type Member struct {
	ID                string
	PoolID            string
	UserID            string
	Points            int
	Breakdown         CategoryPoints
	Rank              *int
	PreviousRank      *int
	ScoringGeneration string
	CalculatedAt      *time.Time
}

// RankMovement is positive when the member climbed since the previous ranking.
func (m Member) RankMovement() int {
	if m.Rank == nil || m.PreviousRank == nil {
		return 0
	}
	return *m.PreviousRank - *m.Rank
}

// StandingChanged reports whether points, breakdown or rank differ.
func (m Member) StandingChanged(next Member) bool {
	if m.Points != next.Points || m.Breakdown != next.Breakdown {
		return true
	}
	if (m.Rank == nil) != (next.Rank == nil) {
		return true
	}
	return m.Rank != nil && *m.Rank != *next.Rank
}
