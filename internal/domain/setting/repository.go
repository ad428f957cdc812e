package setting

import (
	"context"

	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
)

type Repository interface {
	// Load returns the global settings; absent keys yield zero values.
	Load(ctx context.Context) (Snapshot, error)
	SaveTournamentResult(ctx context.Context, result tournament.Result) error
}
