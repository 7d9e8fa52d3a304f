package state

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/autosave"
	"github.com/hkfi/insight-notes/internal/bridge"
	"github.com/hkfi/insight-notes/internal/bridge/bridgetest"
	"github.com/hkfi/insight-notes/internal/config"
	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Autosave: config.AutosaveConfig{QuietPeriod: 500 * time.Millisecond},
		Search:   config.SearchConfig{Debounce: 200 * time.Millisecond},
		Notes:    config.NotesConfig{PageSize: 50},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestState(t *testing.T) (*State, *bridgetest.Fake) {
	t.Helper()
	fake := bridgetest.New()
	fake.Reply(gateway.CmdGetTags, []types.Tag{{ID: "go"}})
	fake.Reply(gateway.CmdGetNotes, []types.Note{{ID: 1, Content: "first"}})
	fake.Reply(gateway.CmdGetNote, types.Note{ID: 1, Content: "first"})
	fake.Reply(gateway.CmdUpdateNote, nil)

	s, err := New(testConfig(), zerolog.Nop(), fake, clock.NewMock())
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, fake
}

func TestPrefetchLoadsTagsAndNotes(t *testing.T) {
	s, fake := newTestState(t)

	if err := s.Prefetch(context.Background()); err != nil {
		t.Fatalf("prefetch: %v", err)
	}
	if fake.Calls(gateway.CmdGetTags) != 1 || fake.Calls(gateway.CmdGetNotes) != 1 {
		t.Fatalf("expected one call each, got %+v", fake.History())
	}
	if _, ok := s.Cache.Peek(queries.TagsKey()); !ok {
		t.Fatalf("expected tags to be cached")
	}
}

func TestRefetchTagsEventInvalidatesTags(t *testing.T) {
	s, fake := newTestState(t)

	obs, err := query.Observe(s.Cache, queries.Tags(s.Gateway))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	defer obs.Close()
	waitFor(t, func() bool { return obs.Current().HasData })

	if n := fake.Emit(bridge.EventRefetchTags); n != 1 {
		t.Fatalf("expected one listener, got %d", n)
	}
	waitFor(t, func() bool { return fake.Calls(gateway.CmdGetTags) == 2 })
}

func TestOpenEditorSavesThroughMutations(t *testing.T) {
	s, fake := newTestState(t)

	session := s.OpenEditor(1)
	if err := session.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if session.Content() != "first" {
		t.Fatalf("unexpected content %q", session.Content())
	}
	if err := session.Edit("changed"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := session.SaveNow(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}

	var args gateway.UpdateNoteArgs
	if !fake.LastArgs(gateway.CmdUpdateNote, &args) {
		t.Fatalf("expected update_note call")
	}
	if args.ID != 1 || args.Content != "changed" {
		t.Fatalf("unexpected update args %+v", args)
	}
	if session.State() != autosave.Clean {
		t.Fatalf("expected clean session, got %s", session.State())
	}
	if snap, ok := s.Cache.Peek(queries.NoteKey(1)); !ok || !snap.Stale {
		t.Fatalf("expected note entry to be invalidated, got %+v", snap)
	}
}

func TestMountRelatedListensForRefetchNotes(t *testing.T) {
	s, fake := newTestState(t)
	fake.Handle(gateway.CmdFindSimilarNotes, func(context.Context, json.RawMessage) (any, error) {
		return []types.Note{{ID: 1}, {ID: 2}}, nil
	})

	r, err := s.MountRelated(1)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer r.Close()
	waitFor(t, r.Loaded)

	if got := r.Notes(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected note itself to be excluded, got %+v", got)
	}
	fake.Emit(bridge.EventRefetchNotes)
	waitFor(t, func() bool { return fake.Calls(gateway.CmdFindSimilarNotes) == 2 })
}

func TestCloseRemovesListeners(t *testing.T) {
	s, fake := newTestState(t)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if n := fake.Count(bridge.EventRefetchTags); n != 0 {
		t.Fatalf("expected listeners removed, got %d", n)
	}
}

func TestStatusCmdUpdatesRootStatus(t *testing.T) {
	s, _ := newTestState(t)

	msg := s.StatusCmd()()
	status, ok := msg.(StatusMsg)
	if !ok {
		t.Fatalf("expected StatusMsg, got %T", msg)
	}
	if status.Line != "online" {
		t.Fatalf("unexpected status %q", status.Line)
	}
	if got := s.RootStatus.Value(); got != status.Line {
		t.Fatalf("root status not updated, got %q", got)
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		connected bool
		stats     query.Stats
		pending   int
		want      string
	}{
		{false, query.Stats{}, 0, "offline"},
		{true, query.Stats{InFlight: 2}, 0, "online · fetching 2"},
		{true, query.Stats{InFlight: 1}, 3, "online · fetching 1 · saving 3"},
	}

	for _, tt := range tests {
		if got := formatStatus(tt.connected, tt.stats, tt.pending); got != tt.want {
			t.Fatalf("formatStatus mismatch: got %q, want %q", got, tt.want)
		}
	}
}

func TestWatchReportsChangeAndClose(t *testing.T) {
	ch := make(chan struct{}, 1)
	cmd := Watch("editor", ch)

	ch <- struct{}{}
	if msg := cmd(); msg != (ChangedMsg{Source: "editor"}) {
		t.Fatalf("expected change, got %#v", msg)
	}
	close(ch)
	if msg := cmd(); msg != (ClosedMsg{Source: "editor"}) {
		t.Fatalf("expected close, got %#v", msg)
	}
	if Watch("none", nil) != nil {
		t.Fatalf("expected nil command for nil channel")
	}
}
