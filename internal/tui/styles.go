package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#0EA5E9")
	warnFg    = lipgloss.Color("#F59E0B")
	errFg     = lipgloss.Color("#EF4444")
	selBg     = lipgloss.Color("#1E293B")
	borderCol = lipgloss.Color("#243141")

	appStyle      = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	focusBoxStyle = boxStyle.BorderForeground(accentFg)
	titleStyle    = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(baseDimFg)
	warnStyle     = lipgloss.NewStyle().Foreground(warnFg)
	errStyle      = lipgloss.NewStyle().Foreground(errFg).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Background(selBg).Foreground(accentFg)
	groupStyle    = lipgloss.NewStyle().Bold(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(baseDimFg)
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Foreground(accentFg).Underline(true)
)
