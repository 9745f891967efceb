package app

import "context"

// CacheObserver is told how each resolution was served.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
	CacheRefresh()
}

// Resolver reads a value from a fast cache, falling back to a durable
// lookup when the cached value is missing or expired.
//
// Cached and Durable report whether a value was found. A value returned by
// Durable is used as is, even if Expired would reject it.
type Resolver[T any] struct {
	Cached   func(ctx context.Context) (T, bool, error)
	Durable  func(ctx context.Context) (T, bool, error)
	Expired  func(T) bool
	Observer CacheObserver
}

// Resolve runs the strategy.
func (r Resolver[T]) Resolve(ctx context.Context) (T, bool, error) {
	v, ok, err := r.Cached(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	switch {
	case !ok:
		r.observe(CacheObserver.CacheMiss)
	case r.Expired != nil && r.Expired(v):
		r.observe(CacheObserver.CacheRefresh)
	default:
		r.observe(CacheObserver.CacheHit)
		return v, true, nil
	}

	return r.Durable(ctx)
}

func (r Resolver[T]) observe(fn func(CacheObserver)) {
	if r.Observer != nil {
		fn(r.Observer)
	}
}
