// Package browser is the interactive note list: tag filters, debounced
// search and quick create/delete on top of the shared query cache.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hkfi/insight-notes/internal/query"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/types"
	"github.com/hkfi/insight-notes/internal/views"
)

const (
	sourceNotes  = "notes"
	sourceSearch = "search"
)

type inputMode int

const (
	modeList inputMode = iota
	modeSearch
	modeTag
)

type mutationMsg struct {
	status string
	err    error
}

type Model struct {
	st     *state.State
	notes  *views.NoteList
	search *views.Search
	list   list.Model
	input  textinput.Model
	keys   *keyMap
	mode   inputMode
	chosen int64
	err    error
}

func New(st *state.State) (Model, error) {
	notes, err := st.NoteList()
	if err != nil {
		return Model{}, err
	}

	keys := newKeyMap()
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = selectedItemStyle
	d.Styles.SelectedDesc = selectedItemStyle

	l := list.New(nil, d, 0, 0)
	l.Title = "Notes"
	l.Styles.Title = titleStyle
	l.SetFilteringEnabled(false)
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.short

	ti := textinput.New()
	ti.CharLimit = 128

	m := Model{
		st:     st,
		notes:  notes,
		search: st.Search(),
		list:   l,
		input:  ti,
		keys:   keys,
	}
	m.refresh()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		state.Watch(sourceNotes, m.notes.Changes()),
		state.Watch(sourceSearch, m.search.Changes()),
	)
}

// Chosen returns the note picked with enter, or zero.
func (m Model) Chosen() int64 { return m.chosen }

func (m Model) Err() error { return m.err }

// Close releases the list and search subscriptions.
func (m Model) Close() {
	m.notes.Close()
	m.search.Close()
}

func (m *Model) current() query.Result[[]types.Note] {
	if m.search.Term() != "" {
		return m.search.Current()
	}
	return m.notes.Current()
}

func (m *Model) refresh() tea.Cmd {
	res := m.current()
	if res.Err != nil {
		m.err = res.Err
	} else if res.HasData {
		m.err = nil
	}
	return m.list.SetItems(toItems(res.Data))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := appStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case state.ChangedMsg:
		cmd := m.refresh()
		switch msg.Source {
		case sourceNotes:
			return m, tea.Batch(cmd, state.Watch(sourceNotes, m.notes.Changes()))
		case sourceSearch:
			return m, tea.Batch(cmd, state.Watch(sourceSearch, m.search.Changes()))
		}
		return m, cmd

	case mutationMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.list.NewStatusMessage(msg.status)

	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.open):
		if item, ok := m.list.SelectedItem().(ListItem); ok {
			m.chosen = item.Note().ID
			return m, tea.Quit
		}
		return m, nil

	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		m.input.Placeholder = "Search notes"
		m.input.SetValue(m.st.Selection.Search())
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.filterTag):
		m.mode = modeTag
		m.input.Placeholder = "Tag"
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.matchAll):
		m.st.Selection.SetMatchAll(!m.st.Selection.NoteListParams().MatchAll)
		return m, nil

	case key.Matches(msg, m.keys.clearTags):
		m.st.Selection.ClearTags()
		return m, nil

	case key.Matches(msg, m.keys.create):
		mutations := m.st.Mutations
		return m, func() tea.Msg {
			id, err := mutations.CreateNote(context.Background(), "")
			return mutationMsg{status: fmt.Sprintf("Created #%d", id), err: err}
		}

	case key.Matches(msg, m.keys.delete):
		item, ok := m.list.SelectedItem().(ListItem)
		if !ok {
			return m, nil
		}
		id := item.Note().ID
		mutations := m.st.Mutations
		return m, func() tea.Msg {
			err := mutations.DeleteNote(context.Background(), id)
			return mutationMsg{status: fmt.Sprintf("Deleted #%d", id), err: err}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.exitInput):
		if m.mode == modeSearch {
			m.search.Input("")
			m.search.Flush()
		}
		m.mode = modeList
		m.input.Blur()
		return m, m.refresh()

	case key.Matches(msg, m.keys.submitInput):
		switch m.mode {
		case modeSearch:
			m.search.Flush()
		case modeTag:
			if tag := strings.TrimSpace(m.input.Value()); tag != "" {
				m.st.Selection.ToggleTag(tag)
			}
		}
		m.mode = modeList
		m.input.Blur()
		return m, m.refresh()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch && m.input.Value() != before {
		m.search.Input(m.input.Value())
	}
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.filterLine())
	b.WriteString("\n")
	res := m.current()
	if notice := views.StaleNotice(res.Warning); notice != "" {
		b.WriteString(notice)
		b.WriteString("\n")
	}
	b.WriteString(m.list.View())
	if m.mode != modeList {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(m.input.View()))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
	}
	return appStyle.Render(b.String())
}

func (m Model) filterLine() string {
	var parts []string
	if tags := m.st.Selection.SelectedTags(); len(tags) > 0 {
		mode := "any"
		if m.st.Selection.NoteListParams().MatchAll {
			mode = "all"
		}
		parts = append(parts, fmt.Sprintf("tags (%s): %s", mode, strings.Join(tags, ", ")))
	}
	if term := m.search.Term(); term != "" {
		parts = append(parts, fmt.Sprintf("search: %q", term))
	}
	if len(parts) == 0 {
		return filterStyle.Render("All notes")
	}
	return filterStyle.Render(strings.Join(parts, "  "))
}
