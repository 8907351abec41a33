package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	badgeSyncedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badgeSyncingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badgeOfflineStyle  = lipgloss.NewStyle().Faint(true)
	badgeProblemStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	badgeDisabledStyle = lipgloss.NewStyle().Faint(true)
)
