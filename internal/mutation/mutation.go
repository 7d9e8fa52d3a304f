// Package mutation performs writes against the backend and keeps the query
// cache consistent with them. A write invalidates its dependent reads only
// after the backend has acknowledged it; a failed write invalidates nothing.
package mutation

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/queries"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/types"
)

// Kind names a write.
type Kind string

const (
	CreateNote    Kind = "create_note"
	UpdateNote    Kind = "update_note"
	DeleteNote    Kind = "delete_note"
	CreateTag     Kind = "create_tag"
	DeleteNoteTag Kind = "delete_note_tag"
	DeleteTag     Kind = "delete_tag"
)

// Invalidations returns the cache prefixes a successful write of kind makes
// stale. noteID is the note the write targeted, when it has one.
func Invalidations(kind Kind, noteID int64) []query.Key {
	switch kind {
	case CreateNote, DeleteNote:
		return []query.Key{queries.NotesRoot()}
	case UpdateNote:
		return []query.Key{
			queries.NoteKey(noteID),
			queries.RelatedWordsKey(noteID),
			queries.NotesRoot(),
		}
	case CreateTag:
		return []query.Key{queries.NoteKey(noteID)}
	case DeleteNoteTag:
		return []query.Key{queries.NotesRoot(), queries.NoteKey(noteID)}
	case DeleteTag:
		return []query.Key{queries.NotesRoot(), queries.TagsKey()}
	}
	return nil
}

// Writer is the subset of the gateway used by writes.
type Writer interface {
	CreateNote(ctx context.Context, args gateway.CreateNoteArgs) (int64, error)
	UpdateNote(ctx context.Context, args gateway.UpdateNoteArgs) error
	DeleteNote(ctx context.Context, args gateway.NoteIDArgs) error
	CreateTag(ctx context.Context, args gateway.CreateTagArgs) error
	DeleteNoteTag(ctx context.Context, args gateway.DeleteNoteTagArgs) error
	DeleteTag(ctx context.Context, args gateway.DeleteTagArgs) error
}

// Invalidator marks cache entries stale by key prefix.
type Invalidator interface {
	Invalidate(prefix query.Key) int
}

// Controller is safe for concurrent use. Writes are never cancelled once
// issued; the caller's context only carries values through to the gateway.
type Controller struct {
	w   Writer
	inv Invalidator
	log zerolog.Logger

	mu      sync.Mutex
	pending int
	lastErr error
}

func NewController(w Writer, inv Invalidator, log zerolog.Logger) *Controller {
	return &Controller{
		w:   w,
		inv: inv,
		log: log.With().Str("component", "mutation").Logger(),
	}
}

// Pending reports the number of writes awaiting the backend.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// LastError returns the error of the most recent failed write, cleared by the
// next successful one.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) run(ctx context.Context, kind Kind, noteID int64, write func(context.Context) error) error {
	c.mu.Lock()
	c.pending++
	c.mu.Unlock()

	err := write(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.pending--
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Str("mutation", string(kind)).Int64("note_id", noteID).Msg("write failed")
		return err
	}

	for _, key := range Invalidations(kind, noteID) {
		c.inv.Invalidate(key)
	}
	c.log.Debug().Str("mutation", string(kind)).Int64("note_id", noteID).Msg("write applied")
	return nil
}

// CreateNote creates a note and returns its id. Empty content is replaced by
// the default body.
func (c *Controller) CreateNote(ctx context.Context, content string) (int64, error) {
	if content == "" {
		content = types.DefaultNoteContent
	}
	var id int64
	err := c.run(ctx, CreateNote, 0, func(ctx context.Context) error {
		var err error
		id, err = c.w.CreateNote(ctx, gateway.CreateNoteArgs{Content: content})
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Controller) UpdateNote(ctx context.Context, id int64, content string) error {
	return c.run(ctx, UpdateNote, id, func(ctx context.Context) error {
		return c.w.UpdateNote(ctx, gateway.UpdateNoteArgs{ID: id, Content: content})
	})
}

func (c *Controller) DeleteNote(ctx context.Context, id int64) error {
	return c.run(ctx, DeleteNote, id, func(ctx context.Context) error {
		return c.w.DeleteNote(ctx, gateway.NoteIDArgs{ID: id})
	})
}

// CreateTag attaches name to the note, creating the tag when needed.
func (c *Controller) CreateTag(ctx context.Context, noteID int64, name string) error {
	return c.run(ctx, CreateTag, noteID, func(ctx context.Context) error {
		return c.w.CreateTag(ctx, gateway.CreateTagArgs{Name: name, NoteID: noteID})
	})
}

// DeleteNoteTag detaches tagID from the note only.
func (c *Controller) DeleteNoteTag(ctx context.Context, noteID int64, tagID string) error {
	return c.run(ctx, DeleteNoteTag, noteID, func(ctx context.Context) error {
		return c.w.DeleteNoteTag(ctx, gateway.DeleteNoteTagArgs{NoteID: noteID, TagID: tagID})
	})
}

// DeleteTag removes tagID from every note.
func (c *Controller) DeleteTag(ctx context.Context, tagID string) error {
	return c.run(ctx, DeleteTag, 0, func(ctx context.Context) error {
		return c.w.DeleteTag(ctx, gateway.DeleteTagArgs{ID: tagID})
	})
}
