// Package relay keeps derived views fresh in response to events pushed by the
// backend outside the request/response cycle.
package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/bridge"
	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/types"
)

// ErrClosed reports use of an unmounted view.
var ErrClosed = errors.New("view closed")

// Finder looks up notes similar to a note.
type Finder interface {
	FindSimilarNotes(ctx context.Context, args gateway.SimilarArgs) ([]types.Note, error)
}

// RelatedNotes holds the similar-notes list for one note. It fetches on mount
// and again on every refetch_notes event until closed. Results are kept
// locally rather than in the query cache because the backend recomputes
// similarity asynchronously.
type RelatedNotes struct {
	noteID   int64
	finder   Finder
	log      zerolog.Logger
	unlisten func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	notes    []types.Note
	loaded   bool
	err      error
	gen      uint64
	fetching bool
	closed   bool
	changes  chan struct{}
}

// MountRelated starts the view for noteID. Close must be called to release
// the event registration.
func MountRelated(noteID int64, finder Finder, l bridge.Listener, log zerolog.Logger) (*RelatedNotes, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &RelatedNotes{
		noteID:  noteID,
		finder:  finder,
		log:     log.With().Str("component", "relay").Int64("note_id", noteID).Logger(),
		ctx:     ctx,
		cancel:  cancel,
		changes: make(chan struct{}, 1),
	}

	unlisten, err := l.Listen(bridge.EventRefetchNotes, func(bridge.Event) {
		r.Refresh()
	})
	if err != nil {
		cancel()
		return nil, err
	}
	r.unlisten = unlisten

	r.Refresh()
	return r, nil
}

// Refresh re-issues the similarity read. Only the latest refresh may replace
// the list.
func (r *RelatedNotes) Refresh() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.gen++
	gen := r.gen
	r.fetching = true
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		notes, err := r.finder.FindSimilarNotes(r.ctx, gateway.SimilarArgs{NoteID: r.noteID})
		r.apply(gen, notes, err)
	}()
}

func (r *RelatedNotes) apply(gen uint64, notes []types.Note, err error) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.fetching = false
	if err != nil {
		r.err = err
		r.mu.Unlock()
		r.log.Warn().Err(err).Msg("related notes fetch failed")
		r.notify()
		return
	}

	filtered := make([]types.Note, 0, len(notes))
	for _, n := range notes {
		if n.ID != r.noteID {
			filtered = append(filtered, n)
		}
	}
	r.notes = filtered
	r.loaded = true
	r.err = nil
	r.mu.Unlock()

	r.log.Debug().Int("count", len(filtered)).Msg("related notes replaced")
	r.notify()
}

func (r *RelatedNotes) notify() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

func (r *RelatedNotes) NoteID() int64 { return r.noteID }

// Generation counts refreshes issued so far. A settled list belongs to the
// current generation.
func (r *RelatedNotes) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Notes returns the current list, excluding the note itself.
func (r *RelatedNotes) Notes() []types.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Note(nil), r.notes...)
}

func (r *RelatedNotes) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

func (r *RelatedNotes) Fetching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetching
}

func (r *RelatedNotes) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Changes receives a value after every applied refresh and is closed when the
// view is closed.
func (r *RelatedNotes) Changes() <-chan struct{} { return r.changes }

// Close releases the event registration, cancels any in-flight read and
// waits for it to return. It is safe to call more than once.
func (r *RelatedNotes) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.changes)
	r.mu.Unlock()

	r.unlisten()
	r.cancel()
	r.wg.Wait()
	return nil
}

// Invalidator marks cache entries stale by key prefix.
type Invalidator interface {
	Invalidate(prefix query.Key) int
}

// InvalidateOn invalidates keys in inv every time event is received.
func InvalidateOn(l bridge.Listener, event string, inv Invalidator, keys ...query.Key) (func(), error) {
	return l.Listen(event, func(bridge.Event) {
		for _, k := range keys {
			inv.Invalidate(k)
		}
	})
}
