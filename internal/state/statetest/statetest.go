// Package statetest builds a State over an in-process bridge for command
// and view tests.
package statetest

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/bridge/bridgetest"
	"github.com/hkfi/insight-notes/internal/config"
	"github.com/hkfi/insight-notes/internal/state"
)

// Config returns the default settings without touching the filesystem.
func Config() *config.Config {
	return &config.Config{
		Bridge:   config.BridgeConfig{URL: "http://127.0.0.1:7878", EventsPath: "/events", ReconnectDelay: 5 * time.Second},
		Autosave: config.AutosaveConfig{QuietPeriod: 500 * time.Millisecond},
		Search:   config.SearchConfig{Debounce: 200 * time.Millisecond},
		Query:    config.QueryConfig{MaxIdleEntries: 128},
		Notes:    config.NotesConfig{PageSize: 50},
		Log:      config.LogConfig{Level: "info", Format: "console"},
	}
}

// New returns a State wired to a fresh fake bridge. The state is closed when
// the test ends.
func New(t *testing.T) (*state.State, *bridgetest.Fake) {
	t.Helper()
	fake := bridgetest.New()
	s, err := state.New(Config(), zerolog.Nop(), fake, clock.New())
	if err != nil {
		t.Fatalf("failed to build state: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, fake
}
