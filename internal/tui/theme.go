package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#f97316")
	dim    = lipgloss.Color("#5a5a70")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	hintStyle   = lipgloss.NewStyle().Foreground(dim)
	inputStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dim).Padding(0, 1)
)
