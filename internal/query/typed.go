package query

import (
	"context"
	"fmt"
)

// Query pairs a key with a typed fetch function.
type Query[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)
}

func (q Query[T]) fetcher() Fetcher {
	return func(ctx context.Context) (any, error) {
		return q.Fetch(ctx)
	}
}

// Result is the typed view of a Snapshot.
type Result[T any] struct {
	Data      T
	HasData   bool
	IsLoading bool
	Fetching  bool
	Err       error
	Warning   *StaleDataWarning
}

// Observer is a typed Subscription.
type Observer[T any] struct {
	sub *Subscription
}

// Observe subscribes to q on c.
func Observe[T any](c *Cache, q Query[T]) (*Observer[T], error) {
	sub, err := c.Subscribe(q.Key, q.fetcher())
	if err != nil {
		return nil, err
	}
	return &Observer[T]{sub: sub}, nil
}

func (o *Observer[T]) Current() Result[T] {
	return resultOf[T](o.sub.Snapshot())
}

func (o *Observer[T]) Key() Key                 { return o.sub.Key() }
func (o *Observer[T]) Changes() <-chan struct{} { return o.sub.Changes() }
func (o *Observer[T]) Close()                   { o.sub.Close() }

func resultOf[T any](s Snapshot) Result[T] {
	r := Result[T]{
		IsLoading: s.IsLoading(),
		Fetching:  s.Fetching,
		Err:       s.Err,
		Warning:   s.Warning(),
	}
	if s.HasValue {
		if v, ok := s.Value.(T); ok {
			r.Data = v
			r.HasData = true
		}
	}
	return r
}

// Get fetches q through c and returns its typed value.
func Get[T any](ctx context.Context, c *Cache, q Query[T]) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, q.Key, q.fetcher())
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: unexpected value type %T", q.Key, v)
	}
	return t, nil
}
