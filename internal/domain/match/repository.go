package match

import "context"

type Repository interface {
	// ListFinished returns finished matches that carry both scores.
	ListFinished(ctx context.Context) ([]Match, error)
}
