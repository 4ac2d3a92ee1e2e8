package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorGold   = lipgloss.Color("#C9A227")
	ColorPurple = lipgloss.Color("#7B4FD6")
	ColorGray   = lipgloss.Color("#666666")
	ColorWhite  = lipgloss.Color("#FFFFFF")
	ColorRed    = lipgloss.Color("#FF5555")
	ColorGreen  = lipgloss.Color("#50FA7B")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGold)

	PhaseStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true)

	CountdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGold)

	PromptStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorWhite)

	HapticStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	ToastStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StepDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StepDotActiveStyle = lipgloss.NewStyle().
				Foreground(ColorGold).
				Bold(true)

	CTAStyle = lipgloss.NewStyle().
			Foreground(ColorGold).
			Bold(true)
)
