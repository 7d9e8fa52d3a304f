// Package queries defines the cache keys and fetchers for every backend read
// the client performs.
package queries

import (
	"context"
	"sort"

	"github.com/hkfi/insight-notes/internal/gateway"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/types"
)

// Key kinds. Search results share the "notes" kind with the filtered list so
// that invalidating the notes prefix refreshes both.
const (
	KindNotes        = "notes"
	KindNote         = "note"
	KindRelatedWords = "relatedWords"
	KindTags         = "tags"
)

func NotesRoot() query.Key { return query.NewKey(KindNotes) }

// NotesKey treats the tag ids as a set: order and duplicates do not change
// the key.
func NotesKey(p types.NoteListParams) query.Key {
	return query.NewKey(KindNotes, tagSet(p.TagIDs), p.MatchAll, p.Skip, p.Take)
}

func tagSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func SearchKey(term string) query.Key { return query.NewKey(KindNotes, term) }

func NoteKey(id int64) query.Key { return query.NewKey(KindNote, id) }

func RelatedWordsKey(id int64) query.Key { return query.NewKey(KindRelatedWords, id) }

func TagsKey() query.Key { return query.NewKey(KindTags) }

// Reader is the subset of the gateway used by reads.
type Reader interface {
	GetNotes(ctx context.Context, args gateway.GetNotesArgs) ([]types.Note, error)
	SearchNotes(ctx context.Context, args gateway.SearchNotesArgs) ([]types.Note, error)
	GetNote(ctx context.Context, args gateway.NoteIDArgs) (types.Note, error)
	GetTags(ctx context.Context) ([]types.Tag, error)
	GetSimilarWords(ctx context.Context, args gateway.SimilarArgs) ([]string, error)
}

func Notes(r Reader, p types.NoteListParams) query.Query[[]types.Note] {
	p.TagIDs = tagSet(p.TagIDs)
	return query.Query[[]types.Note]{
		Key: NotesKey(p),
		Fetch: func(ctx context.Context) ([]types.Note, error) {
			return r.GetNotes(ctx, gateway.GetNotesArgs{Params: p})
		},
	}
}

func Search(r Reader, term string) query.Query[[]types.Note] {
	return query.Query[[]types.Note]{
		Key: SearchKey(term),
		Fetch: func(ctx context.Context) ([]types.Note, error) {
			return r.SearchNotes(ctx, gateway.SearchNotesArgs{Query: term})
		},
	}
}

func Note(r Reader, id int64) query.Query[types.Note] {
	return query.Query[types.Note]{
		Key: NoteKey(id),
		Fetch: func(ctx context.Context) (types.Note, error) {
			return r.GetNote(ctx, gateway.NoteIDArgs{ID: id})
		},
	}
}

func RelatedWords(r Reader, id int64) query.Query[[]string] {
	return query.Query[[]string]{
		Key: RelatedWordsKey(id),
		Fetch: func(ctx context.Context) ([]string, error) {
			return r.GetSimilarWords(ctx, gateway.SimilarArgs{NoteID: id})
		},
	}
}

func Tags(r Reader) query.Query[[]types.Tag] {
	return query.Query[[]types.Tag]{
		Key: TagsKey(),
		Fetch: func(ctx context.Context) ([]types.Tag, error) {
			return r.GetTags(ctx)
		},
	}
}
