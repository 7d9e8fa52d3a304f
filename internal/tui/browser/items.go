package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/muesli/reflow/truncate"

	"github.com/hkfi/insight-notes/internal/parser"
	"github.com/hkfi/insight-notes/internal/types"
)

const (
	dateLayout     = "Jan 02 15:04"
	previewRunes   = 120
	descriptionMax = 72
)

type ListItem struct {
	note types.Note
}

func (i ListItem) Title() string {
	return fmt.Sprintf("#%d %s", i.note.ID, parser.Title(i.note.Content))
}

func (i ListItem) Description() string {
	description := i.note.Updated().Format(dateLayout) + "  "
	if len(i.note.Tags) == 0 {
		description += "No tags"
	} else {
		description += strings.Join(i.note.TagIDs(), ", ")
	}
	if preview := parser.Preview(i.note.Content, previewRunes); preview != "" {
		description += "  " + preview
	}
	return truncate.StringWithTail(description, descriptionMax, "...")
}

func (i ListItem) FilterValue() string {
	return i.Title() + " " + strings.Join(i.note.TagIDs(), " ")
}

func (i ListItem) Note() types.Note { return i.note }

func toItems(notes []types.Note) []list.Item {
	items := make([]list.Item, 0, len(notes))
	for _, n := range notes {
		items = append(items, ListItem{note: n})
	}
	return items
}
