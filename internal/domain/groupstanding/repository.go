package groupstanding

import "context"

type Repository interface {
	List(ctx context.Context) ([]Standing, error)
	Upsert(ctx context.Context, standing Standing) error
}
