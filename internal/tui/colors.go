package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the courtdesk theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorMutedText     = "#6D7383"
	ColorHelpText      = "240"

	// Accent Colors (court blue)
	ColorAccentMain   = "#2563EB"
	ColorAccentBright = "#60A5FA"

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAccentBright))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Background(lipgloss.Color(ColorAccentMain))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText)).
			MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 2).
			MarginRight(1)

	cardValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAccentBright))

	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMutedText))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain))

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Padding(0, 1)
	tableRowStyle    = tableCellStyle.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
)
