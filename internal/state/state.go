// Package state assembles the process-wide client: bridge, gateway, query
// cache, mutation controller and selection, and hands out the per-view
// components built on top of them.
package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hkfi/insight-notes/internal/autosave"
	"github.com/hkfi/insight-notes/internal/bridge"
	"github.com/hkfi/insight-notes/internal/config"
	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/logging"
	"github.com/hkfi/insight-notes/internal/mutation"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/relay"
	"github.com/hkfi/insight-notes/internal/selection"
	"github.com/hkfi/insight-notes/internal/types"
	"github.com/hkfi/insight-notes/internal/views"
)

// Transport carries commands to the backend and events back from it.
type Transport interface {
	bridge.Invoker
	bridge.Listener
}

type runner interface {
	Run(ctx context.Context) error
}

type connector interface {
	Connected() bool
}

type State struct {
	Config     *config.Config
	Log        zerolog.Logger
	Clock      clock.Clock
	Home       string
	Transport  Transport
	Gateway    *gateway.Gateway
	Cache      *query.Cache
	Mutations  *mutation.Controller
	Selection  *selection.State
	RootStatus *RootStatus

	mu       sync.Mutex
	unlisten []func()
	stop     context.CancelFunc
	events   chan error
	closed   bool
}

type RootStatus struct {
	mu   sync.Mutex
	Line string
}

func (r *RootStatus) Set(line string) {
	r.mu.Lock()
	r.Line = line
	r.mu.Unlock()
}

func (r *RootStatus) Value() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Line
}

// NewState loads the config for the current user, builds the logger writing
// to logOut and connects the bridge client described by the config.
func NewState(v *viper.Viper, logOut io.Writer) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}
	cfg, err := config.Load(home, v)
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.Log, logOut)
	client := bridge.NewClient(bridge.Options{
		BaseURL:        cfg.Bridge.URL,
		Token:          cfg.Bridge.Token,
		EventsPath:     cfg.Bridge.EventsPath,
		ReconnectDelay: cfg.Bridge.ReconnectDelay,
		Logger:         log,
	})

	s, err := New(cfg, log, client, clock.New())
	if err != nil {
		return nil, err
	}
	s.Home = home
	return s, nil
}

// New wires the client components over t.
func New(cfg *config.Config, log zerolog.Logger, t Transport, clk clock.Clock) (*State, error) {
	if clk == nil {
		clk = clock.New()
	}

	gw := gateway.New(t, log)
	c := query.New(query.Options{
		Clock:          clk,
		StaleTime:      cfg.Query.StaleTime,
		MaxIdleEntries: cfg.Query.MaxIdleEntries,
		Logger:         log,
	})

	s := &State{
		Config:     cfg,
		Log:        log,
		Clock:      clk,
		Transport:  t,
		Gateway:    gw,
		Cache:      c,
		Mutations:  mutation.NewController(gw, c, log),
		Selection:  selection.New(cfg.Notes.PageSize),
		RootStatus: &RootStatus{},
	}

	unlisten, err := relay.InvalidateOn(t, bridge.EventRefetchTags, c, queries.TagsKey(), queries.NotesRoot())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to listen for %s: %w", bridge.EventRefetchTags, err)
	}
	s.unlisten = append(s.unlisten, unlisten)

	return s, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

// StartEvents attaches the backend event stream in the background when the
// transport supports one. It is a no-op on later calls.
func (s *State) StartEvents(ctx context.Context) {
	r, ok := s.Transport.(runner)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.stop != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.events = make(chan error, 1)
	go func() {
		s.events <- r.Run(ctx)
	}()
}

// Connected reports whether the event stream is attached. Transports
// without a stream always report true.
func (s *State) Connected() bool {
	if c, ok := s.Transport.(connector); ok {
		return c.Connected()
	}
	return true
}

// Prefetch warms the tag list and the current note list in parallel.
func (s *State) Prefetch(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := query.Get(ctx, s.Cache, queries.Tags(s.Gateway))
		return err
	})
	g.Go(func() error {
		_, err := query.Get(ctx, s.Cache, queries.Notes(s.Gateway, s.Selection.NoteListParams()))
		return err
	})
	return g.Wait()
}

// OpenEditor starts an autosave session for note id. The session loads the
// note through the query cache and saves through the mutation controller.
func (s *State) OpenEditor(id int64) *autosave.Session {
	load := func(ctx context.Context) (types.Note, error) {
		return query.Get(ctx, s.Cache, queries.Note(s.Gateway, id))
	}
	return autosave.NewSession(id, load, s.Mutations, autosave.Options{
		Clock:        s.Clock,
		QuietPeriod:  s.Config.Autosave.QuietPeriod,
		FlushOnClose: s.Config.Autosave.FlushOnClose,
		Logger:       s.Log,
	})
}

func (s *State) MountRelated(noteID int64) (*relay.RelatedNotes, error) {
	return relay.MountRelated(noteID, s.Gateway, s.Transport, s.Log)
}

func (s *State) NoteList() (*views.NoteList, error) {
	return views.NewNoteList(s.Cache, s.Gateway, s.Selection)
}

func (s *State) Search() *views.Search {
	return views.NewSearch(s.Cache, s.Gateway, s.Selection, s.Clock, s.Config.Search.Debounce)
}

// Close stops the event stream, removes listeners and closes the cache.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stop, events := s.stop, s.events
	unlisten := s.unlisten
	s.unlisten = nil
	s.mu.Unlock()

	var errs []error
	if stop != nil {
		stop()
		if err := <-events; err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	for _, fn := range unlisten {
		fn()
	}
	if err := s.Cache.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
