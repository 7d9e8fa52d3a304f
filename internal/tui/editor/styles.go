package editor

import "github.com/charmbracelet/lipgloss"

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true).
			Padding(0, 1)

	cleanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5"))
	dirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB000"))
	savingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0AF")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F55"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	relatedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#444")).
			PaddingLeft(1).
			Width(32)
)
