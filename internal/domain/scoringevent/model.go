package scoringevent

import (
	"context"
	"time"
)

// StandingRow is the public shape of one ranked member.
type StandingRow struct {
	UserID       string `json:"userId"`
	Points       int    `json:"points"`
	Rank         int    `json:"rank"`
	PreviousRank *int   `json:"previousRank,omitempty"`
}

// StandingsUpdated is emitted after a pool's ranking was rewritten.
type StandingsUpdated struct {
	RunID        string        `json:"runId"`
	PoolID       string        `json:"poolId"`
	Standings    []StandingRow `json:"standings"`
	CalculatedAt time.Time     `json:"calculatedAt"`
}

// PassCompleted summarises one scoring pass.
type PassCompleted struct {
	RunID        string    `json:"runId"`
	Pass         string    `json:"pass"`
	Updated      int       `json:"updated"`
	Failed       int       `json:"failed"`
	PoolsRanked  int       `json:"poolsRanked"`
	NoOp         bool      `json:"noOp"`
	Message      string    `json:"message,omitempty"`
	CompletedAt  time.Time `json:"completedAt"`
	DurationMsec int64     `json:"durationMs"`
}

// Publisher delivers scoring events to downstream consumers.
type Publisher interface {
	PublishStandings(ctx context.Context, event StandingsUpdated) error
	PublishPassCompleted(ctx context.Context, event PassCompleted) error
}
