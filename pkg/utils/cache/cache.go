package cache

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

type (
	// LoadFunc produces the value for a key that is not cached
	LoadFunc[V any] func(ctx context.Context) (*V, error)

	Cache[K comparable, V any] interface {
		// Get returns the cached value or ErrCacheMiss
		Get(ctx context.Context, key K) (*V, error)
		// GetOrLoad returns the cached value or stores the result of load.
		// Errors of load are returned and not cached.
		GetOrLoad(ctx context.Context, key K, load LoadFunc[V]) (*V, error)
		Invalidate(ctx context.Context, key K)
		Len() int
	}
)
