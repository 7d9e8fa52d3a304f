// Package views derives the lists shown to the user from the query cache and
// the shared selection.
package views

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hkfi/insight-notes/internal/debounce"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/selection"
	"github.com/hkfi/insight-notes/internal/types"
)

// DefaultSearchDebounce is the pause in typing before a search is issued.
const DefaultSearchDebounce = 200 * time.Millisecond

// NoteList follows the note list for the current selection, re-keying its
// subscription whenever the selection changes.
type NoteList struct {
	*Feed[[]types.Note]

	reader queries.Reader
	sel    *selection.State
	stop   func()
	done   chan struct{}
}

func NewNoteList(c *query.Cache, r queries.Reader, sel *selection.State) (*NoteList, error) {
	l := &NoteList{
		Feed:   NewFeed[[]types.Note](c),
		reader: r,
		sel:    sel,
		done:   make(chan struct{}),
	}
	if err := l.sync(); err != nil {
		l.Feed.Close()
		return nil, err
	}

	watch, stop := sel.Watch()
	l.stop = stop
	go func() {
		defer close(l.done)
		for range watch {
			_ = l.sync()
		}
	}()
	return l, nil
}

func (l *NoteList) sync() error {
	return l.Switch(queries.Notes(l.reader, l.sel.NoteListParams()))
}

func (l *NoteList) Close() {
	l.stop()
	<-l.done
	l.Feed.Close()
}

// Search follows search results for the text typed into the search box.
// Input is debounced; an empty term follows nothing.
type Search struct {
	*Feed[[]types.Note]

	reader queries.Reader
	sel    *selection.State
	deb    *debounce.Debouncer

	mu   sync.Mutex
	term string
}

func NewSearch(c *query.Cache, r queries.Reader, sel *selection.State, clk clock.Clock, delay time.Duration) *Search {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Search{
		Feed:   NewFeed[[]types.Note](c),
		reader: r,
		sel:    sel,
		deb:    debounce.New(clk, delay),
	}
}

// Input records raw search text. The query follows once typing pauses.
func (s *Search) Input(text string) {
	s.sel.SetSearch(text)
	s.deb.Trigger(func() { _ = s.apply(text) })
}

// Flush applies pending input immediately.
func (s *Search) Flush() bool {
	return s.deb.Flush()
}

// Term returns the term currently followed.
func (s *Search) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

func (s *Search) apply(text string) error {
	term := strings.TrimSpace(text)
	s.mu.Lock()
	s.term = term
	s.mu.Unlock()

	if term == "" {
		s.Clear()
		return nil
	}
	return s.Switch(queries.Search(s.reader, term))
}

func (s *Search) Close() {
	s.deb.Cancel()
	s.Feed.Close()
}
