package tui

import "github.com/charmbracelet/lipgloss"

var (
	amber     = lipgloss.Color("#F5C26B")
	mintGreen = lipgloss.Color("#A8E6CF")
	salmon    = lipgloss.Color("#FF8A80")
	mutedGray = lipgloss.Color("#6B7280")
	darkText  = lipgloss.Color("#111827")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	selectedStyle = lipgloss.NewStyle().
			Background(amber).
			Foreground(darkText).
			Bold(true)

	descStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	messageStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmon).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(salmon)

	keyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)
)
