package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/bridge/bridgetest"
	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/types"
)

type recorder struct {
	keys []string
}

func (r *recorder) Invalidate(prefix query.Key) int {
	r.keys = append(r.keys, prefix.String())
	return 0
}

func (r *recorder) sorted() []string {
	out := append([]string(nil), r.keys...)
	sort.Strings(out)
	return out
}

func keys(ks ...query.Key) []string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}

func newTestController(t *testing.T) (*Controller, *bridgetest.Fake, *recorder) {
	t.Helper()
	fake := bridgetest.New()
	rec := &recorder{}
	return NewController(gateway.New(fake, zerolog.Nop()), rec, zerolog.Nop()), fake, rec
}

func TestSuccessfulWritesInvalidateDependentReads(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  string
		run  func(*Controller) error
		want []string
	}{
		{
			name: "create note",
			cmd:  gateway.CmdCreateNote,
			run: func(c *Controller) error {
				_, err := c.CreateNote(ctx, "")
				return err
			},
			want: keys(queries.NotesRoot()),
		},
		{
			name: "update note",
			cmd:  gateway.CmdUpdateNote,
			run:  func(c *Controller) error { return c.UpdateNote(ctx, 4, "body") },
			want: keys(queries.NoteKey(4), queries.RelatedWordsKey(4), queries.NotesRoot()),
		},
		{
			name: "delete note",
			cmd:  gateway.CmdDeleteNote,
			run:  func(c *Controller) error { return c.DeleteNote(ctx, 4) },
			want: keys(queries.NotesRoot()),
		},
		{
			name: "create tag",
			cmd:  gateway.CmdCreateTag,
			run:  func(c *Controller) error { return c.CreateTag(ctx, 4, "go") },
			want: keys(queries.NoteKey(4)),
		},
		{
			name: "delete note tag",
			cmd:  gateway.CmdDeleteNoteTag,
			run:  func(c *Controller) error { return c.DeleteNoteTag(ctx, 4, "go") },
			want: keys(queries.NotesRoot(), queries.NoteKey(4)),
		},
		{
			name: "delete tag",
			cmd:  gateway.CmdDeleteTag,
			run:  func(c *Controller) error { return c.DeleteTag(ctx, "go") },
			want: keys(queries.NotesRoot(), queries.TagsKey()),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, fake, rec := newTestController(t)
			fake.Reply(tc.cmd, int64(9))

			if err := tc.run(c); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if got := rec.sorted(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected invalidations\n got: %v\nwant: %v", got, tc.want)
			}
		})
	}
}

func TestFailedWriteInvalidatesNothing(t *testing.T) {
	c, fake, rec := newTestController(t)
	fake.Fail(gateway.CmdUpdateNote, errors.New("disk full"))

	err := c.UpdateNote(context.Background(), 4, "body")
	if gateway.AsBackendError(err) == nil {
		t.Fatalf("expected backend error, got %v", err)
	}
	if len(rec.keys) != 0 {
		t.Fatalf("expected no invalidations, got %v", rec.keys)
	}
	if c.LastError() == nil {
		t.Fatalf("expected last error to be recorded")
	}
	if c.Pending() != 0 {
		t.Fatalf("expected no pending writes, got %d", c.Pending())
	}
}

func TestCreateNoteUsesDefaultContent(t *testing.T) {
	c, fake, _ := newTestController(t)
	fake.Reply(gateway.CmdCreateNote, int64(21))

	id, err := c.CreateNote(context.Background(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 21 {
		t.Fatalf("unexpected id %d", id)
	}
	var args gateway.CreateNoteArgs
	fake.LastArgs(gateway.CmdCreateNote, &args)
	if args.Content != types.DefaultNoteContent {
		t.Fatalf("expected default content, got %q", args.Content)
	}
}

func TestWriteIsNotCancelledByCaller(t *testing.T) {
	c, fake, rec := newTestController(t)
	fake.Handle(gateway.CmdDeleteNote, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.DeleteNote(ctx, 1); err != nil {
		t.Fatalf("expected write to ignore cancellation, got %v", err)
	}
	if len(rec.keys) != 1 {
		t.Fatalf("expected invalidation after write, got %v", rec.keys)
	}
}

func TestInvalidationRefreshesSubscribedList(t *testing.T) {
	fake := bridgetest.New()
	gw := gateway.New(fake, zerolog.Nop())
	cache := query.New(query.Options{Logger: zerolog.Nop()})
	defer cache.Close()
	c := NewController(gw, cache, zerolog.Nop())

	fake.Reply(gateway.CmdGetNotes, []types.Note{{ID: 1}})
	obs, err := query.Observe(cache, queries.Notes(gw, types.DefaultListParams()))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	defer obs.Close()
	<-obs.Changes()

	fake.Reply(gateway.CmdCreateNote, int64(2))
	fake.Reply(gateway.CmdGetNotes, []types.Note{{ID: 2}, {ID: 1}})
	if _, err := c.CreateNote(context.Background(), "hi"); err != nil {
		t.Fatalf("create: %v", err)
	}

	for {
		<-obs.Changes()
		r := obs.Current()
		if !r.Fetching && len(r.Data) == 2 {
			break
		}
	}
	if n := fake.Calls(gateway.CmdGetNotes); n != 2 {
		t.Fatalf("expected list to be refetched once, got %d calls", n)
	}
}

func newCachedController(t *testing.T) (*Controller, *gateway.Gateway, *query.Cache, *bridgetest.Fake) {
	t.Helper()
	fake := bridgetest.New()
	gw := gateway.New(fake, zerolog.Nop())
	cache := query.New(query.Options{Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = cache.Close() })
	return NewController(gw, cache, zerolog.Nop()), gw, cache, fake
}

func TestFailedUpdateKeepsCachedNote(t *testing.T) {
	ctx := context.Background()
	c, gw, cache, fake := newCachedController(t)
	fake.Reply(gateway.CmdGetNote, types.Note{ID: 4, Content: "old"})

	if _, err := query.Get(ctx, cache, queries.Note(gw, 4)); err != nil {
		t.Fatalf("prime: %v", err)
	}

	fake.Fail(gateway.CmdUpdateNote, errors.New("disk full"))
	if err := c.UpdateNote(ctx, 4, "new"); gateway.AsBackendError(err) == nil {
		t.Fatalf("expected backend error, got %v", err)
	}

	n, err := query.Get(ctx, cache, queries.Note(gw, 4))
	if err != nil {
		t.Fatalf("read after failed update: %v", err)
	}
	if n.Content != "old" {
		t.Fatalf("expected cached content to be kept, got %q", n.Content)
	}
	if calls := fake.Calls(gateway.CmdGetNote); calls != 1 {
		t.Fatalf("expected no refetch after a failed write, got %d get_note calls", calls)
	}
}

func TestDetachedTagIsGoneOnNextRead(t *testing.T) {
	ctx := context.Background()
	c, gw, cache, fake := newCachedController(t)
	fake.Reply(gateway.CmdGetNote, types.Note{ID: 4, Content: "body", Tags: []types.Tag{{ID: "go"}, {ID: "sync"}}})

	before, err := query.Get(ctx, cache, queries.Note(gw, 4))
	if err != nil {
		t.Fatalf("prime: %v", err)
	}
	if !before.HasTag("go") {
		t.Fatalf("expected primed note to carry the tag, got %+v", before.Tags)
	}

	fake.Reply(gateway.CmdDeleteNoteTag, nil)
	fake.Reply(gateway.CmdGetNote, types.Note{ID: 4, Content: "body", Tags: []types.Tag{{ID: "sync"}}})
	if err := c.DeleteNoteTag(ctx, 4, "go"); err != nil {
		t.Fatalf("detach: %v", err)
	}

	after, err := query.Get(ctx, cache, queries.Note(gw, 4))
	if err != nil {
		t.Fatalf("read after detach: %v", err)
	}
	if after.HasTag("go") {
		t.Fatalf("expected tag to be gone, got %+v", after.Tags)
	}
	if !after.HasTag("sync") {
		t.Fatalf("expected other tags to remain, got %+v", after.Tags)
	}
	if calls := fake.Calls(gateway.CmdGetNote); calls != 2 {
		t.Fatalf("expected one refetch after detach, got %d get_note calls", calls)
	}
}
