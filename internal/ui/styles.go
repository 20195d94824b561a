package ui

import "github.com/charmbracelet/lipgloss"

// Palette
const (
	colorPink   = lipgloss.Color("#FD366E")
	colorGreen  = lipgloss.Color("#10B981")
	colorRed    = lipgloss.Color("#EF4444")
	colorAmber  = lipgloss.Color("#F59E0B")
	colorPurple = lipgloss.Color("#A855F7")
	colorMuted  = lipgloss.Color("#6B7280")
)

var (
	// status words in tables and build checklists
	GreenStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	RedStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	MagentaStyle = lipgloss.NewStyle().Foreground(colorPurple).Bold(true)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	PendingStyle = lipgloss.NewStyle().Foreground(colorMuted)
	SpinnerStyle = lipgloss.NewStyle().Foreground(colorPink)
	ErrorStyle   = RedStyle
	WarningStyle = lipgloss.NewStyle().Foreground(colorAmber)
	HelpStyle    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	// ProgressColor fills upload progress bars.
	ProgressColor = string(colorPink)
)
