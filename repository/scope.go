package repository

import "context"

// Scoper opens one storage scope (a transaction) per logical request and
// guarantees its release on every exit path, including panics.
type Scoper interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopScoper runs the function without any transactional scope. Used in tests
// with in-memory repositories.
type NopScoper struct{}

func (NopScoper) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
