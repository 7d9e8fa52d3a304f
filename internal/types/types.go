// Package types holds the note and tag records exchanged with the backend.
package types

import (
	"strings"
	"time"
)

// Tag is identified by its text value; the id doubles as the display name.
type Tag struct {
	ID string `json:"id"`
}

// Note is the backend's note record. Timestamps are epoch seconds.
type Note struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	Tags      []Tag  `json:"tags"`
}

// NoteListParams filters and pages the note list.
type NoteListParams struct {
	TagIDs   []string `json:"tag_ids"`
	MatchAll bool     `json:"match_all"`
	Skip     int      `json:"skip"`
	Take     int      `json:"take"`
}

// DefaultTake is the page size used when none is configured.
const DefaultTake = 50

// DefaultNoteContent is the body given to notes created without content.
const DefaultNoteContent = "New Note"

// DefaultListParams returns the unfiltered first page.
func DefaultListParams() NoteListParams {
	return NoteListParams{TagIDs: []string{}, Take: DefaultTake}
}

func (n Note) Created() time.Time { return time.Unix(n.CreatedAt, 0) }
func (n Note) Updated() time.Time { return time.Unix(n.UpdatedAt, 0) }

// HasTag reports whether the note carries the tag, compared case-insensitively.
func (n Note) HasTag(id string) bool {
	for _, t := range n.Tags {
		if strings.EqualFold(t.ID, id) {
			return true
		}
	}
	return false
}

func (n Note) TagIDs() []string {
	ids := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
