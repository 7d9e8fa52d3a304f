package views

import (
	"sort"
	"strings"

	"github.com/hkfi/insight-notes/internal/types"
)

// HomeRecentCount is how many notes the home screen lists.
const HomeRecentCount = 10

// Recent returns up to n notes, most recently updated first.
func Recent(notes []types.Note, n int) []types.Note {
	out := append([]types.Note(nil), notes...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RelatedWords drops suggestions already attached to the note as tags and
// collapses duplicates, keeping the backend's order.
func RelatedWords(words []string, note types.Note) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		key := strings.ToLower(strings.TrimSpace(w))
		if key == "" || note.HasTag(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Since keeps notes created at or after the given unix time.
func Since(notes []types.Note, unix int64) []types.Note {
	out := make([]types.Note, 0, len(notes))
	for _, n := range notes {
		if n.CreatedAt >= unix {
			out = append(out, n)
		}
	}
	return out
}
