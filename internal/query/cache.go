// Package query implements a stale-while-revalidate cache of backend reads.
//
// Entries are keyed by Key. Subscribing to a key returns the last known value
// immediately, even when it is stale, and starts a background fetch when the
// entry is stale or absent. Concurrent subscribers of one key share a single
// in-flight fetch. Every fetch takes the next generation number for its key
// and its result is committed only while that generation is still the latest,
// so a result that has been superseded by an invalidation or a newer fetch is
// dropped.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/cache"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("query cache closed")

// DefaultMaxIdleEntries bounds entries kept without subscribers.
const DefaultMaxIdleEntries = 128

// Fetcher produces the value for one key.
type Fetcher func(ctx context.Context) (any, error)

// Options configures a Cache.
type Options struct {
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// StaleTime is how long a committed value stays fresh. Zero keeps values
	// fresh until they are invalidated.
	StaleTime time.Duration
	// MaxIdleEntries bounds entries that have no subscribers. Zero selects
	// DefaultMaxIdleEntries and a negative value disables eviction.
	MaxIdleEntries int
	Logger         zerolog.Logger
}

// Stats captures lightweight instrumentation about the cache.
type Stats struct {
	Entries  int
	Idle     int
	InFlight int
	Fetches  uint64
	Dropped  uint64
}

type flight struct {
	gen    uint64
	cancel context.CancelFunc
}

type entry struct {
	key       Key
	value     any
	hasValue  bool
	err       error
	stale     bool
	updatedAt time.Time
	gen       uint64
	inflight  *flight
	fetcher   Fetcher
	subs      map[*Subscription]struct{}
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	idle    *cache.LRUCache[string, *entry]
	closed  bool
	fetches uint64
	dropped uint64

	clock     clock.Clock
	staleTime time.Duration
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options) *Cache {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	maxIdle := opts.MaxIdleEntries
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleEntries
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		entries:   make(map[string]*entry),
		idle:      cache.NewLRUCache[string, *entry](maxIdle),
		clock:     clk,
		staleTime: opts.StaleTime,
		log:       opts.Logger.With().Str("component", "query").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
	c.idle.OnEvict(c.evict)
	return c
}

// Subscribe attaches an observer to key. The fetcher is remembered for the
// entry and used for this and later refetches.
func (c *Cache) Subscribe(key Key, fetcher Fetcher) (*Subscription, error) {
	if fetcher == nil {
		return nil, errors.New("query: nil fetcher")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, subs: make(map[*Subscription]struct{})}
		c.entries[id] = e
	}
	c.idle.Remove(id)
	e.fetcher = fetcher

	sub := &Subscription{
		cache:   c,
		entry:   e,
		changes: make(chan struct{}, 1),
	}
	e.subs[sub] = struct{}{}

	if !c.fresh(e) && e.inflight == nil {
		c.start(e)
	}
	return sub, nil
}

// Invalidate marks every entry whose key starts with prefix as stale. Entries
// with subscribers are refetched immediately; idle entries refetch on their
// next subscription. Any fetch in flight for a matching key is superseded.
// It returns the number of matching entries.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}

	n := 0
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		n++
		e.stale = true
		if e.inflight != nil {
			e.inflight.cancel()
			e.inflight = nil
			e.gen++
		}
		if len(e.subs) > 0 {
			c.start(e)
		}
		c.notify(e)
	}

	c.log.Debug().Str("prefix", prefix.String()).Int("matched", n).Msg("invalidate")
	return n
}

// Fetch subscribes to key until it settles and returns the value or the
// error of the fetch. A fresh entry is returned without a backend call.
func (c *Cache) Fetch(ctx context.Context, key Key, fetcher Fetcher) (any, error) {
	sub, err := c.Subscribe(key, fetcher)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	for {
		snap := sub.Snapshot()
		if snap.Settled() {
			if snap.Err != nil {
				return nil, snap.Err
			}
			return snap.Value, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case _, ok := <-sub.Changes():
			if !ok {
				return nil, ErrClosed
			}
		}
	}
}

// Peek returns the entry for key without subscribing or fetching.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{Key: key}, false
	}
	return c.snapshot(e), true
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries: len(c.entries),
		Idle:    c.idle.Len(),
		Fetches: c.fetches,
		Dropped: c.dropped,
	}
	for _, e := range c.entries {
		if e.inflight != nil {
			s.InFlight++
		}
	}
	return s
}

// Close cancels in-flight fetches, ends every subscription and waits for the
// fetch goroutines to return. Subsequent subscriptions fail with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	for _, e := range c.entries {
		for sub := range e.subs {
			sub.closeLocked()
		}
		e.subs = nil
		e.inflight = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// start issues a fetch for e under the next generation. Callers hold c.mu.
func (c *Cache) start(e *entry) {
	if e.inflight != nil {
		e.inflight.cancel()
	}
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(c.ctx)
	e.inflight = &flight{gen: gen, cancel: cancel}
	c.fetches++
	fetcher := e.fetcher

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		v, err := fetcher(ctx)
		c.commit(e, gen, v, err)
	}()
}

func (c *Cache) commit(e *entry, gen uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.entries[e.key.String()] != e || e.gen != gen {
		c.dropped++
		c.log.Debug().
			Str("key", e.key.String()).
			Uint64("gen", gen).
			Uint64("latest", e.gen).
			Msg("dropping superseded result")
		return
	}

	e.inflight = nil
	if err != nil {
		e.err = err
		c.log.Warn().Err(err).Str("key", e.key.String()).Msg("fetch failed")
	} else {
		e.value = v
		e.hasValue = true
		e.err = nil
		e.stale = false
		e.updatedAt = c.clock.Now()
	}
	c.notify(e)
}

func (c *Cache) fresh(e *entry) bool {
	if !e.hasValue || e.stale {
		return false
	}
	if c.staleTime > 0 && c.clock.Since(e.updatedAt) >= c.staleTime {
		return false
	}
	return true
}

func (c *Cache) snapshot(e *entry) Snapshot {
	return Snapshot{
		Key:       e.key,
		Value:     e.value,
		HasValue:  e.hasValue,
		Err:       e.err,
		Fetching:  e.inflight != nil,
		Stale:     e.hasValue && !c.fresh(e),
		UpdatedAt: e.updatedAt,
	}
}

func (c *Cache) notify(e *entry) {
	for sub := range e.subs {
		sub.signal()
	}
}

// release detaches sub; an entry left without subscribers becomes idle.
func (c *Cache) release(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := sub.entry
	if _, ok := e.subs[sub]; !ok {
		return
	}
	delete(e.subs, sub)
	sub.closeLocked()

	if len(e.subs) == 0 && !c.closed {
		c.idle.Put(e.key.String(), e)
	}
}

func (c *Cache) evict(id string, e *entry) {
	if e.inflight != nil {
		e.inflight.cancel()
		e.inflight = nil
	}
	delete(c.entries, id)
	c.log.Debug().Str("key", id).Msg("evicted idle entry")
}
