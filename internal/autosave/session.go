// Package autosave turns editor keystrokes into a bounded stream of note
// updates. Each open editor owns one Session; edits restart a quiet-period
// timer and the buffer is saved once typing pauses, or immediately on an
// explicit save.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/debounce"
	"github.com/hkfi/insight-notes/internal/types"
)

// DefaultQuietPeriod is the pause in editing after which a save is issued.
const DefaultQuietPeriod = 500 * time.Millisecond

var (
	// ErrNotLoaded reports that the authoritative note has not been loaded.
	ErrNotLoaded = errors.New("note not loaded")
	// ErrLoading reports that the authoritative note is being (re)loaded.
	ErrLoading = errors.New("note is loading")
	// ErrUntouched reports that the buffer was never edited.
	ErrUntouched = errors.New("note not edited")
	// ErrClosed reports use of a closed session.
	ErrClosed = errors.New("editor session closed")
)

// State of the editor buffer relative to the backend.
type State int

const (
	Clean State = iota
	Dirty
	Saving
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	}
	return "unknown"
}

// Loader fetches the authoritative copy of the note.
type Loader func(ctx context.Context) (types.Note, error)

// Saver persists note content.
type Saver interface {
	UpdateNote(ctx context.Context, id int64, content string) error
}

type Options struct {
	Clock       clock.Clock
	QuietPeriod time.Duration
	// FlushOnClose saves a pending edit when the session closes instead of
	// discarding it.
	FlushOnClose bool
	Logger       zerolog.Logger
}

// Session is the draft state of one open note. It is safe for concurrent
// use.
type Session struct {
	id           int64
	load         Loader
	saver        Saver
	deb          *debounce.Debouncer
	flushOnClose bool
	log          zerolog.Logger

	saveMu sync.Mutex

	mu      sync.Mutex
	content string
	loaded  bool
	loading bool
	touched bool
	state   State
	editSeq uint64
	lastErr error
	saves   int
	closed  bool
	changes chan struct{}
}

func NewSession(id int64, load Loader, saver Saver, opts Options) *Session {
	quiet := opts.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Session{
		id:           id,
		load:         load,
		saver:        saver,
		deb:          debounce.New(opts.Clock, quiet),
		flushOnClose: opts.FlushOnClose,
		log:          opts.Logger.With().Str("component", "autosave").Int64("note_id", id).Logger(),
		changes:      make(chan struct{}, 1),
	}
}

func (s *Session) NoteID() int64 { return s.id }

// Load replaces the buffer with the authoritative note. Any pending save is
// dropped and the touched flag is cleared.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.loading = true
	s.mu.Unlock()
	s.notify()

	n, err := s.load(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.deb.Cancel()
	s.content = n.Content
	s.loaded = true
	s.touched = false
	s.state = Clean
	s.lastErr = nil
	s.mu.Unlock()

	s.log.Debug().Msg("loaded")
	s.notify()
	return nil
}

// Reload supersedes the draft with a fresh authoritative copy.
func (s *Session) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Edit records new buffer content and restarts the quiet period. Content equal
// to the current buffer still schedules a save.
func (s *Session) Edit(content string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	s.content = content
	s.touched = true
	s.editSeq++
	if s.state != Saving {
		s.state = Dirty
	}
	s.mu.Unlock()

	s.deb.Trigger(s.autosave)
	s.notify()
	return nil
}

// SaveNow cancels any pending timer and saves the current buffer.
func (s *Session) SaveNow(ctx context.Context) error {
	s.deb.Cancel()
	return s.save(ctx, false)
}

// Close cancels the pending timer and ends the session. It reports whether an
// unsaved edit was discarded. With FlushOnClose the edit is saved instead and
// the save error, if any, is returned.
func (s *Session) Close(ctx context.Context) (bool, error) {
	pending := s.deb.Cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, nil
	}
	s.closed = true
	unsaved := s.touched && (pending || s.state == Dirty)
	s.mu.Unlock()

	defer close(s.changes)

	if !unsaved {
		return false, nil
	}
	if s.flushOnClose {
		return false, s.save(ctx, true)
	}
	s.log.Warn().Msg("discarding unsaved edit on close")
	return true, nil
}

func (s *Session) autosave() {
	if err := s.save(context.Background(), false); err != nil {
		switch {
		case errors.Is(err, ErrUntouched), errors.Is(err, ErrNotLoaded), errors.Is(err, ErrLoading), errors.Is(err, ErrClosed):
			s.log.Debug().Err(err).Msg("autosave skipped")
		default:
			s.log.Error().Err(err).Msg("autosave failed")
		}
	}
}

func (s *Session) save(ctx context.Context, closing bool) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	switch {
	case s.closed && !closing:
		s.mu.Unlock()
		return ErrClosed
	case s.loading:
		s.mu.Unlock()
		return ErrLoading
	case !s.loaded:
		s.mu.Unlock()
		return ErrNotLoaded
	case !s.touched:
		s.mu.Unlock()
		return ErrUntouched
	}
	content := s.content
	seq := s.editSeq
	s.state = Saving
	s.mu.Unlock()
	s.notify()

	err := s.saver.UpdateNote(ctx, s.id, content)

	s.mu.Lock()
	s.lastErr = err
	switch {
	case err != nil:
		s.state = Dirty
	case s.editSeq != seq:
		s.state = Dirty
		s.saves++
	default:
		s.state = Clean
		s.saves++
	}
	s.mu.Unlock()

	if err == nil {
		s.log.Debug().Int("bytes", len(content)).Msg("saved")
	}
	s.notify()
	return err
}

func (s *Session) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Changes receives a value whenever the session state changes and is closed
// with the session.
func (s *Session) Changes() <-chan struct{} { return s.changes }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Session) Touched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Saves returns the number of successful saves.
func (s *Session) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Pending reports whether a debounced save is scheduled.
func (s *Session) Pending() bool { return s.deb.Pending() }
