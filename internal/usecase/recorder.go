package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
)

const (
	OutcomeSuccess = "success"
	OutcomeNoOp    = "noop"
	OutcomeError   = "error"
)

// ScoringRecorder receives run metrics. Implementations must be safe for concurrent use.
type ScoringRecorder interface {
	PassFinished(pass, outcome string, duration time.Duration)
	PredictionsScored(pass string, updated, failed int)
	StandingsRecalculated(poolsRanked, membersUpdated, membersFailed int)
}

type noopRecorder struct{}

func (noopRecorder) PassFinished(string, string, time.Duration) {}
func (noopRecorder) PredictionsScored(string, int, int)         {}
func (noopRecorder) StandingsRecalculated(int, int, int)        {}

type noopPublisher struct{}

func (noopPublisher) PublishStandings(context.Context, scoringevent.StandingsUpdated) error {
	return nil
}

func (noopPublisher) PublishPassCompleted(context.Context, scoringevent.PassCompleted) error {
	return nil
}
