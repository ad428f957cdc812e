package match

import (
	"strings"
	"time"
)

// Status is the lifecycle stage of a match.
type Status string

const (
	StatusPending  Status = "pending"
	StatusLive     Status = "live"
	StatusFinished Status = "finished"
)

// NormalizeStatus maps provider-style status codes onto the three lifecycle stages.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finished", "ft", "aet", "pen", "full_time", "completed":
		return StatusFinished
	case "live", "in_play", "1h", "2h", "ht", "et":
		return StatusLive
	default:
		return StatusPending
	}
}

type Match struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Status    Status
	KickoffAt time.Time
}

// Scoreable reports whether the match has a final score usable for points.
func (m Match) Scoreable() bool {
	return m.Status == StatusFinished && m.HomeScore != nil && m.AwayScore != nil
}
