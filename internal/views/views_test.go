package views

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/bridge/bridgetest"
	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/selection"
	"github.com/hkfi/insight-notes/internal/types"
)

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

type harness struct {
	fake  *bridgetest.Fake
	gw    *gateway.Gateway
	cache *query.Cache
	sel   *selection.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := bridgetest.New()
	cache := query.New(query.Options{Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = cache.Close() })
	return &harness{
		fake:  fake,
		gw:    gateway.New(fake, zerolog.Nop()),
		cache: cache,
		sel:   selection.New(0),
	}
}

func TestNoteListFollowsSelection(t *testing.T) {
	h := newHarness(t)
	h.fake.Handle(gateway.CmdGetNotes, func(_ context.Context, raw json.RawMessage) (any, error) {
		var args gateway.GetNotesArgs
		_ = json.Unmarshal(raw, &args)
		if len(args.Params.TagIDs) == 1 && args.Params.TagIDs[0] == "work" {
			return []types.Note{{ID: 2}}, nil
		}
		return []types.Note{{ID: 1}, {ID: 2}}, nil
	})

	list, err := NewNoteList(h.cache, h.gw, h.sel)
	if err != nil {
		t.Fatalf("note list: %v", err)
	}
	defer list.Close()

	waitFor(t, func() bool { return len(list.Current().Data) == 2 })

	h.sel.FilterByTag("work")
	waitFor(t, func() bool {
		r := list.Current()
		return r.HasData && len(r.Data) == 1
	})

	key, ok := list.Key()
	want := queries.NotesKey(types.NoteListParams{TagIDs: []string{"work"}, Take: types.DefaultTake})
	if !ok || !key.Equal(want) {
		t.Fatalf("expected list keyed by %s, got %s", want, key)
	}
}

func TestSearchDebouncesInput(t *testing.T) {
	h := newHarness(t)
	h.fake.Reply(gateway.CmdSearchNotes, []types.Note{{ID: 5}})
	mock := clock.NewMock()

	s := NewSearch(h.cache, h.gw, h.sel, mock, 0)
	defer s.Close()

	s.Input("g")
	mock.Add(50 * time.Millisecond)
	s.Input("go")
	mock.Add(50 * time.Millisecond)
	s.Input("gol")

	if h.sel.Search() != "gol" {
		t.Fatalf("selection should hold the raw text, got %q", h.sel.Search())
	}
	time.Sleep(10 * time.Millisecond)
	if n := h.fake.Calls(gateway.CmdSearchNotes); n != 0 {
		t.Fatalf("expected no search inside the debounce window, got %d", n)
	}

	mock.Add(DefaultSearchDebounce)
	waitFor(t, func() bool { return len(s.Current().Data) == 1 })

	if n := h.fake.Calls(gateway.CmdSearchNotes); n != 1 {
		t.Fatalf("expected one search, got %d", n)
	}
	var args gateway.SearchNotesArgs
	h.fake.LastArgs(gateway.CmdSearchNotes, &args)
	if args.Query != "gol" || s.Term() != "gol" {
		t.Fatalf("expected search for the last input, got %q", args.Query)
	}
}

func TestSearchEmptyTermFollowsNothing(t *testing.T) {
	h := newHarness(t)
	h.fake.Reply(gateway.CmdSearchNotes, []types.Note{{ID: 5}})

	s := NewSearch(h.cache, h.gw, h.sel, clock.NewMock(), 0)
	defer s.Close()

	s.Input("go")
	s.Flush()
	waitFor(t, func() bool { return s.Current().HasData })

	s.Input("   ")
	s.Flush()
	if _, ok := s.Key(); ok {
		t.Fatalf("expected no query for an empty term")
	}
	if s.Current().HasData {
		t.Fatalf("expected empty result")
	}
}

func TestRecentOrdersByUpdate(t *testing.T) {
	notes := []types.Note{
		{ID: 1, UpdatedAt: 10},
		{ID: 2, UpdatedAt: 30},
		{ID: 3, UpdatedAt: 20},
	}
	got := Recent(notes, 2)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected recent notes %+v", got)
	}
	if notes[0].ID != 1 {
		t.Fatalf("input slice was reordered")
	}
}

func TestRelatedWordsDropsExistingTags(t *testing.T) {
	note := types.Note{Tags: []types.Tag{{ID: "golang"}}}
	got := RelatedWords([]string{"golang", "Channels", "channels", "goroutine", ""}, note)
	if !reflect.DeepEqual(got, []string{"Channels", "goroutine"}) {
		t.Fatalf("unexpected words %v", got)
	}
}

func TestSince(t *testing.T) {
	notes := []types.Note{{ID: 1, CreatedAt: 100}, {ID: 2, CreatedAt: 200}}
	got := Since(notes, 150)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected notes %+v", got)
	}
}

func TestNoteDetailVerbatimBody(t *testing.T) {
	n := types.Note{ID: 4, Content: "# Groceries\n- milk", Tags: []types.Tag{{ID: "home"}}}
	out := NoteDetail(n, 0)
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "- milk") || !strings.Contains(out, "#home") {
		t.Fatalf("unexpected detail %q", out)
	}
}

func TestMarkdownRendersText(t *testing.T) {
	out := Markdown("# Groceries\n\nmilk and eggs", 40)
	if !strings.Contains(out, "eggs") {
		t.Fatalf("expected body text in rendered output, got %q", out)
	}
}
