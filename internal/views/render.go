package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/hkfi/insight-notes/internal/parser"
	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/types"
)

const dateLayout = "2006-01-02 15:04"

var (
	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Width(6)
	titleStyle = lipgloss.NewStyle().
			Bold(true)
	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB000"))
)

// NoteLine renders a one-line summary of n.
func NoteLine(n types.Note) string {
	parts := []string{
		idStyle.Render(fmt.Sprintf("#%d", n.ID)),
		titleStyle.Render(parser.Title(n.Content)),
	}
	if len(n.Tags) > 0 {
		parts = append(parts, TagList(n.Tags))
	}
	parts = append(parts, mutedStyle.Render(n.Updated().Format(dateLayout)))
	return strings.Join(parts, "  ")
}

// DefaultWrap is the word wrap used for rendered note bodies.
const DefaultWrap = 100

// Markdown renders content for a terminal. When rendering fails the raw
// content is returned.
func Markdown(content string, wrap int) string {
	if wrap <= 0 {
		wrap = DefaultWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(wrap),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// NoteDetail renders the full note with its metadata. A positive wrap renders
// the body as markdown; zero prints it verbatim.
func NoteDetail(n types.Note, wrap int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(parser.Title(n.Content)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"#%d  created %s  updated %s",
		n.ID,
		n.Created().Format(dateLayout),
		n.Updated().Format(dateLayout),
	)))
	b.WriteString("\n")
	if len(n.Tags) > 0 {
		b.WriteString(TagList(n.Tags))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if wrap > 0 {
		b.WriteString(Markdown(n.Content, wrap))
	} else {
		b.WriteString(n.Content)
	}
	return b.String()
}

// TagList renders tags as #name tokens.
func TagList(tags []types.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, "#"+t.ID)
	}
	return tagStyle.Render(strings.Join(names, " "))
}

// StaleNotice renders a warning line for stale data, or nothing.
func StaleNotice(w *query.StaleDataWarning) string {
	if w == nil {
		return ""
	}
	return warnStyle.Render("refreshing, showing data from " + w.UpdatedAt.Format(dateLayout))
}
