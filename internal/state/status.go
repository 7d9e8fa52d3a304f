package state

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hkfi/insight-notes/internal/query"
)

// StatusMsg notifies subscribers that the root status line was refreshed.
type StatusMsg struct {
	Line string
}

// StatusCmd refreshes the shared root status line from the bridge, the query
// cache and the mutation controller.
func (s *State) StatusCmd() tea.Cmd {
	if s == nil {
		return nil
	}

	return func() tea.Msg {
		line := formatStatus(s.Connected(), s.Cache.Stats(), s.Mutations.Pending())
		if s.RootStatus != nil {
			s.RootStatus.Set(line)
		}
		return StatusMsg{Line: line}
	}
}

func formatStatus(connected bool, stats query.Stats, pending int) string {
	parts := []string{"offline"}
	if connected {
		parts[0] = "online"
	}
	if stats.InFlight > 0 {
		parts = append(parts, fmt.Sprintf("fetching %d", stats.InFlight))
	}
	if pending > 0 {
		parts = append(parts, fmt.Sprintf("saving %d", pending))
	}
	return strings.Join(parts, " · ")
}
