// Package gateway is the typed facade over the backend's command set. Each
// method issues exactly one command and performs no caching or retries.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hkfi/insight-notes/internal/bridge"
	"github.com/hkfi/insight-notes/internal/types"
)

// Command names understood by the backend.
const (
	CmdCreateNote       = "create_note"
	CmdUpdateNote       = "update_note"
	CmdDeleteNote       = "delete_note"
	CmdGetNote          = "get_note"
	CmdGetNotes         = "get_notes"
	CmdSearchNotes      = "search_notes"
	CmdGetTags          = "get_tags"
	CmdCreateTag        = "create_tag"
	CmdDeleteTag        = "delete_tag"
	CmdDeleteNoteTag    = "delete_note_tag"
	CmdFindSimilarNotes = "find_similar_notes"
	CmdGetSimilarWords  = "get_similar_words"
)

type CreateNoteArgs struct {
	Content string `json:"content"`
}

type UpdateNoteArgs struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

type NoteIDArgs struct {
	ID int64 `json:"id"`
}

type GetNotesArgs struct {
	Params types.NoteListParams `json:"params"`
}

type SearchNotesArgs struct {
	Query string `json:"query"`
}

type CreateTagArgs struct {
	Name   string `json:"name"`
	NoteID int64  `json:"noteId"`
}

type DeleteTagArgs struct {
	ID string `json:"id"`
}

type DeleteNoteTagArgs struct {
	NoteID int64  `json:"noteId"`
	TagID  string `json:"tagId"`
}

type SimilarArgs struct {
	NoteID int64 `json:"noteId"`
}

// Gateway issues backend commands through an Invoker.
type Gateway struct {
	inv bridge.Invoker
	log zerolog.Logger
	now func() time.Time
}

func New(inv bridge.Invoker, log zerolog.Logger) *Gateway {
	return &Gateway{
		inv: inv,
		log: log.With().Str("component", "gateway").Logger(),
		now: time.Now,
	}
}

func (g *Gateway) call(ctx context.Context, command string, args, out any) error {
	start := g.now()
	err := g.inv.Invoke(ctx, command, args, out)
	ev := g.log.Debug()
	if err != nil {
		ev = g.log.Warn().Err(err)
	}
	ev.Str("command", command).Dur("took", g.now().Sub(start)).Msg("invoke")
	return wrap(command, err)
}

// CreateNote creates a note and returns its id.
func (g *Gateway) CreateNote(ctx context.Context, args CreateNoteArgs) (int64, error) {
	var id int64
	if err := g.call(ctx, CmdCreateNote, args, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (g *Gateway) UpdateNote(ctx context.Context, args UpdateNoteArgs) error {
	return g.call(ctx, CmdUpdateNote, args, nil)
}

func (g *Gateway) DeleteNote(ctx context.Context, args NoteIDArgs) error {
	return g.call(ctx, CmdDeleteNote, args, nil)
}

func (g *Gateway) GetNote(ctx context.Context, args NoteIDArgs) (types.Note, error) {
	var n types.Note
	if err := g.call(ctx, CmdGetNote, args, &n); err != nil {
		return types.Note{}, err
	}
	return n, nil
}

// GetNotes lists notes matching the filter. Nil tag ids are sent as an empty
// list.
func (g *Gateway) GetNotes(ctx context.Context, args GetNotesArgs) ([]types.Note, error) {
	if args.Params.TagIDs == nil {
		args.Params.TagIDs = []string{}
	}
	var notes []types.Note
	if err := g.call(ctx, CmdGetNotes, args, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (g *Gateway) SearchNotes(ctx context.Context, args SearchNotesArgs) ([]types.Note, error) {
	var notes []types.Note
	if err := g.call(ctx, CmdSearchNotes, args, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (g *Gateway) GetTags(ctx context.Context) ([]types.Tag, error) {
	var tags []types.Tag
	if err := g.call(ctx, CmdGetTags, struct{}{}, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag attaches a tag to a note, creating the tag if it does not exist.
func (g *Gateway) CreateTag(ctx context.Context, args CreateTagArgs) error {
	return g.call(ctx, CmdCreateTag, args, nil)
}

// DeleteTag removes a tag globally.
func (g *Gateway) DeleteTag(ctx context.Context, args DeleteTagArgs) error {
	return g.call(ctx, CmdDeleteTag, args, nil)
}

// DeleteNoteTag detaches a tag from one note.
func (g *Gateway) DeleteNoteTag(ctx context.Context, args DeleteNoteTagArgs) error {
	return g.call(ctx, CmdDeleteNoteTag, args, nil)
}

func (g *Gateway) FindSimilarNotes(ctx context.Context, args SimilarArgs) ([]types.Note, error) {
	var notes []types.Note
	if err := g.call(ctx, CmdFindSimilarNotes, args, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (g *Gateway) GetSimilarWords(ctx context.Context, args SimilarArgs) ([]string, error) {
	var words []string
	if err := g.call(ctx, CmdGetSimilarWords, args, &words); err != nil {
		return nil, err
	}
	return words, nil
}
