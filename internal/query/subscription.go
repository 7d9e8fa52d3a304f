package query

// Subscription observes one cache entry until it is closed.
type Subscription struct {
	cache   *Cache
	entry   *entry
	changes chan struct{}
	closed  bool
}

// Snapshot returns the current state of the observed entry.
func (s *Subscription) Snapshot() Snapshot {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	return s.cache.snapshot(s.entry)
}

// Key returns the observed key.
func (s *Subscription) Key() Key { return s.entry.key }

// Changes receives a value whenever the entry changes. Bursts are coalesced
// into a single pending notification. The channel is closed when the
// subscription or the cache is closed.
func (s *Subscription) Changes() <-chan struct{} { return s.changes }

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.cache.release(s)
}

func (s *Subscription) signal() {
	if s.closed {
		return
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.changes)
}
