package tui

import "github.com/charmbracelet/lipgloss"

var (
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle      = lipgloss.NewStyle().Bold(true)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	recordingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	audioStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Align(lipgloss.Center)
	inputBorder    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
)
