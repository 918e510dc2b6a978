package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette — mirrors the platform's dark web theme
var (
	Primary   = lipgloss.Color("#58A6FF") // Blue
	Success   = lipgloss.Color("#3FB950") // Green
	Warning   = lipgloss.Color("#D29922") // Amber
	Danger    = lipgloss.Color("#F85149") // Red
	Accent    = lipgloss.Color("#BC8CFF") // Purple
	Text      = lipgloss.Color("#C9D1D9") // Light gray
	TextDim   = lipgloss.Color("#8B949E") // Muted gray
	BgDark    = lipgloss.Color("#0D1117") // Page background
	BgSurface = lipgloss.Color("#161B22") // Card background
	Border    = lipgloss.Color("#30363D") // Borders
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgSurface).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgSurface).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgSurface).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	CodeBlock = lipgloss.NewStyle().
			Background(BgSurface).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Border).
			Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	Locked = lipgloss.NewStyle().
		Foreground(TextDim)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Success)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// AlertColor maps an alert severity to its accent color.
func AlertColor(style string) color.Color {
	switch style {
	case "success":
		return Success
	case "warning":
		return Warning
	case "danger":
		return Danger
	default:
		return Primary
	}
}
