package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	// Layout sizes
	sidebarWidth := m.sidebarWidth()
	contentHeight := m.contentHeight()
	mainWidth := m.mainWidth()
	contentWidth := max(10, m.width)

	// Header
	header := titleStyle.Render(" ncbrowse ─ NetCDF browser ")
	if p := m.app.Datasets.CurrentPath(); p != "" {
		header += dimStyle.Render(fmt.Sprintf("  %s  [%d open, %d panes]",
			filepath.Base(p), len(m.app.Datasets.Paths()), m.app.Plots.Len()))
		if m.app.Bookmarks.Contains(p) {
			header += warnStyle.Render(" ★")
		}
	}
	header = lipgloss.NewStyle().Width(contentWidth).MaxHeight(headerHeight).Render(header)

	// Sidebar
	sideBox, mainBox := boxStyle, focusBoxStyle
	if m.focus == focusTree {
		sideBox, mainBox = focusBoxStyle, boxStyle
	}
	sidebar := sideBox.Width(sidebarWidth - 2).Height(contentHeight - 2).
		Render(m.renderTree(sidebarWidth-4, contentHeight-2))

	// Main area
	innerW, innerH := mainWidth-4, contentHeight-2
	var inner string
	switch {
	case m.mode != modeNormal:
		inner = m.renderDialog(innerW, innerH)
	case m.helpVisible:
		inner = titleStyle.Render("Keys") + "\n\n" + m.help.FullHelpView(keys.FullHelp())
	case m.view == viewPlot:
		inner = m.renderPlots(innerW, innerH)
	default:
		inner = m.info.View()
	}
	main := mainBox.Width(mainWidth - 2).Height(contentHeight - 2).MaxHeight(contentHeight).Render(inner)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)

	// Footer / help
	status := dimStyle.Render(" " + truncate(m.status, contentWidth-2) + " ")
	footer := lipgloss.JoinVertical(lipgloss.Left, status, m.help.ShortHelpView(keys.ShortHelp()))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).MaxHeight(m.height).Render(ui)
}

// renderDialog draws the active dialog centered in the main area.
func (m Model) renderDialog(w, h int) string {
	dw, _ := m.dialogSize()
	dw = min(dw, w)
	var content string
	switch m.mode {
	case modeBrowse:
		content = m.l.View()
	case modePicker:
		content = m.picker.View()
	case modeOptions:
		content = titleStyle.Render("Plot options") + "\n\n" + m.form.View() + "\n\n" +
			dimStyle.Render("tab next field · enter apply · ctrl+d save as defaults · esc cancel")
	case modeExport:
		content = titleStyle.Render("Export") + "\n\n" + m.export.View() + "\n\n" +
			dimStyle.Render("extension selects html, png, jpg or svg · esc cancel")
	}
	box := lipgloss.NewStyle().MaxWidth(dw).Render(content)
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}
