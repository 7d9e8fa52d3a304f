package views

import (
	"sync"

	"github.com/hkfi/insight-notes/internal/query"
)

// Feed follows one query at a time and can be switched to another key. The
// previous subscription is released on every switch.
type Feed[T any] struct {
	cache *query.Cache

	mu     sync.Mutex
	obs    *query.Observer[T]
	out    chan struct{}
	closed bool
}

func NewFeed[T any](c *query.Cache) *Feed[T] {
	return &Feed[T]{cache: c, out: make(chan struct{}, 1)}
}

// Switch follows q. Switching to the key already followed is a no-op.
func (f *Feed[T]) Switch(q query.Query[T]) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return query.ErrClosed
	}
	if f.obs != nil && f.obs.Key().Equal(q.Key) {
		return nil
	}

	obs, err := query.Observe(f.cache, q)
	if err != nil {
		return err
	}
	if f.obs != nil {
		f.obs.Close()
	}
	f.obs = obs
	go f.forward(obs)
	f.signalLocked()
	return nil
}

// Clear stops following any query.
func (f *Feed[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.obs != nil {
		f.obs.Close()
		f.obs = nil
		f.signalLocked()
	}
}

func (f *Feed[T]) forward(obs *query.Observer[T]) {
	for range obs.Changes() {
		f.mu.Lock()
		if f.obs == obs {
			f.signalLocked()
		}
		f.mu.Unlock()
	}
}

func (f *Feed[T]) signalLocked() {
	if f.closed {
		return
	}
	select {
	case f.out <- struct{}{}:
	default:
	}
}

// Current returns the result of the followed query, or the zero result when
// nothing is followed.
func (f *Feed[T]) Current() query.Result[T] {
	f.mu.Lock()
	obs := f.obs
	f.mu.Unlock()
	if obs == nil {
		return query.Result[T]{}
	}
	return obs.Current()
}

// Key returns the followed key and whether one is followed.
func (f *Feed[T]) Key() (query.Key, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.obs == nil {
		return query.Key{}, false
	}
	return f.obs.Key(), true
}

// Changes is signalled whenever the followed result changes or the feed
// switches keys. It is closed by Close.
func (f *Feed[T]) Changes() <-chan struct{} { return f.out }

func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	if f.obs != nil {
		f.obs.Close()
		f.obs = nil
	}
	close(f.out)
}
