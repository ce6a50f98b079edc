package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorFg      = lipgloss.Color("#ABB2BF")
	colorMuted   = lipgloss.Color("#636B78")
	colorBorder  = lipgloss.Color("#3F4451")
	colorRed     = lipgloss.Color("#E06C75")
	colorGreen   = lipgloss.Color("#98C379")
	colorYellow  = lipgloss.Color("#E5C07B")
	colorBlue    = lipgloss.Color("#61AFEF")
	colorMagenta = lipgloss.Color("#C678DD")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true).
			PaddingLeft(1)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(22)

	sidebarActiveStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			PaddingLeft(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			MarginRight(1)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorRed).
			Padding(1, 3)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(0, 2)
)

func statusStyle(s string) lipgloss.Style {
	switch s {
	case "Open":
		return lipgloss.NewStyle().Foreground(colorBlue)
	case "In-Progress":
		return lipgloss.NewStyle().Foreground(colorYellow)
	case "Resolved":
		return lipgloss.NewStyle().Foreground(colorGreen)
	default:
		return lipgloss.NewStyle()
	}
}

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "High":
		return lipgloss.NewStyle().Foreground(colorRed)
	case "Medium":
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
}
