package state

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ChangedMsg reports that the component registered under Source changed.
type ChangedMsg struct {
	Source string
}

// ClosedMsg reports that the component registered under Source went away.
type ClosedMsg struct {
	Source string
}

// Watch returns a command that waits for the next signal on changes. The
// receiver re-issues it after handling ChangedMsg to keep watching.
func Watch(source string, changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return ClosedMsg{Source: source}
		}
		return ChangedMsg{Source: source}
	}
}
