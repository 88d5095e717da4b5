package dao

import (
	"context"
)

// Service is the generic storage contract used for durable run records.
// Implementations must be safe for concurrent use and must not hand out
// references that alias their internal state.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
