// Package editor is the terminal note editor. Every keystroke is handed to an
// autosave session, which saves once typing pauses.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hkfi/insight-notes/internal/autosave"
	"github.com/hkfi/insight-notes/internal/parser"
	"github.com/hkfi/insight-notes/internal/state"
	"github.com/hkfi/insight-notes/internal/types"
)

const (
	sourceSession = "session"
	sourceRelated = "related"

	relatedLimit = 8
)

// Related is the similar-notes panel shown next to the buffer.
type Related interface {
	Notes() []types.Note
	Loaded() bool
	Changes() <-chan struct{}
}

type loadedMsg struct{ err error }

type savedMsg struct{ err error }

type closedMsg struct {
	discarded bool
	err       error
}

type Model struct {
	session *autosave.Session
	related Related
	status  func() tea.Cmd
	area    textarea.Model
	keys    keyMap

	title      string
	statusLine string
	err        error
	loaded     bool
	closing    bool
	discarded  bool
	width      int
	height     int
}

// New builds an editor over session. related and status may be nil.
func New(session *autosave.Session, related Related, status func() tea.Cmd) Model {
	ta := textarea.New()
	ta.Placeholder = "..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(20)

	return Model{
		session: session,
		related: related,
		status:  status,
		area:    ta,
		keys:    newKeyMap(),
		title:   fmt.Sprintf("Note #%d", session.NoteID()),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.load(), state.Watch(sourceSession, m.session.Changes())}
	if m.related != nil {
		cmds = append(cmds, state.Watch(sourceRelated, m.related.Changes()))
	}
	return tea.Batch(cmds...)
}

func (m Model) load() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return loadedMsg{err: s.Load(context.Background())}
	}
}

func (m Model) save() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return savedMsg{err: s.SaveNow(context.Background())}
	}
}

func (m Model) close() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		discarded, err := s.Close(context.Background())
		return closedMsg{discarded: discarded, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := msg.Width - 4
		if m.related != nil {
			w -= relatedStyle.GetWidth() + 1
		}
		m.area.SetWidth(max(w, 20))
		m.area.SetHeight(max(msg.Height-8, 5))
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.loaded = true
		m.err = nil
		content := m.session.Content()
		m.title = parser.Title(content)
		m.area.SetValue(content)
		return m, m.area.Focus()

	case savedMsg:
		switch {
		case msg.err == nil:
			m.err = nil
		case errors.Is(msg.err, autosave.ErrUntouched):
		default:
			m.err = msg.err
		}
		return m, m.refreshStatus()

	case closedMsg:
		m.discarded = msg.discarded
		if msg.err != nil {
			m.err = msg.err
		}
		return m, tea.Quit

	case state.ChangedMsg:
		switch msg.Source {
		case sourceSession:
			if err := m.session.LastError(); err != nil {
				m.err = err
			}
			return m, tea.Batch(state.Watch(sourceSession, m.session.Changes()), m.refreshStatus())
		case sourceRelated:
			return m, state.Watch(sourceRelated, m.related.Changes())
		}
		return m, nil

	case state.StatusMsg:
		m.statusLine = msg.Line
		return m, nil

	case tea.KeyMsg:
		if m.closing {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.save):
			return m, m.save()
		case key.Matches(msg, m.keys.close), key.Matches(msg, m.keys.quit):
			m.closing = true
			return m, m.close()
		}
		if !m.loaded {
			return m, nil
		}

		before := m.area.Value()
		var cmd tea.Cmd
		m.area, cmd = m.area.Update(msg)
		if after := m.area.Value(); after != before {
			if err := m.session.Edit(after); err != nil {
				m.err = err
			}
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m Model) refreshStatus() tea.Cmd {
	if m.status == nil {
		return nil
	}
	return m.status()
}

// Discarded reports whether closing dropped an unsaved edit.
func (m Model) Discarded() bool { return m.discarded }

func (m Model) Err() error { return m.err }

func (m Model) View() string {
	body := m.area.View()
	if !m.loaded && m.err == nil {
		body = mutedStyle.Render("Loading note...")
	}
	if m.related != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", relatedStyle.Render(m.relatedView()))
	}

	return appStyle.Render(strings.Join([]string{
		titleStyle.Render(m.title),
		body,
		m.statusView(),
	}, "\n\n"))
}

func (m Model) statusView() string {
	var parts []string
	switch m.session.State() {
	case autosave.Clean:
		parts = append(parts, cleanStyle.Render("saved"))
	case autosave.Dirty:
		parts = append(parts, dirtyStyle.Render("unsaved changes"))
	case autosave.Saving:
		parts = append(parts, savingStyle.Render("saving..."))
	}
	if m.statusLine != "" {
		parts = append(parts, mutedStyle.Render(m.statusLine))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	parts = append(parts, mutedStyle.Render(m.keys.help()))
	return strings.Join(parts, "  ")
}

func (m Model) relatedView() string {
	if !m.related.Loaded() {
		return mutedStyle.Render("Finding related notes...")
	}
	notes := m.related.Notes()
	if len(notes) == 0 {
		return mutedStyle.Render("No related notes")
	}
	lines := []string{mutedStyle.Render("Related")}
	for i, n := range notes {
		if i == relatedLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("#%d %s", n.ID, parser.Title(n.Content)))
	}
	return strings.Join(lines, "\n")
}
