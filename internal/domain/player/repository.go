package player

import "context"

type Repository interface {
	List(ctx context.Context) ([]Player, error)
}
