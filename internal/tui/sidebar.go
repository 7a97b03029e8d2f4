package tui

import (
	"strings"

	"ncbrowse/internal/chart"
	"ncbrowse/internal/tree"
)

// syncTree rebuilds the structure tree when the current dataset changed.
func (m *Model) syncTree() {
	path := m.app.Datasets.CurrentPath()
	if path == m.treePath && (path == "" || m.nodes != nil) {
		return
	}
	m.treePath = path
	m.nodes = tree.Build(m.app.Datasets.Current())
	m.collapsed = tree.DefaultCollapsed(m.nodes)
	m.cursor = 0
}

func (m *Model) visible() []tree.Node {
	return tree.Visible(m.nodes, m.collapsed)
}

// selected returns the node under the cursor.
func (m *Model) selected() (tree.Node, bool) {
	vis := m.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return tree.Node{}, false
	}
	return vis[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, n-1)
}

// activate handles enter on the tree: groups fold, variables show their info,
// and a variable whose info is already shown is plotted.
func (m *Model) activate() {
	n, ok := m.selected()
	if !ok {
		return
	}
	switch {
	case n.Plottable():
		if m.view == viewInfo && m.infoVar == n.Variable {
			m.requestPlot(n.Variable, chart.Unsupported)
			return
		}
		m.showVarInfo(n.Variable)
		m.status = n.Variable + ": enter again to plot, p to choose a plot type"
	case n.Kind == tree.File:
		m.showFileInfo()
		m.view = viewInfo
	case n.HasChildren:
		m.collapsed[n.Key] = !m.collapsed[n.Key]
		m.moveCursor(0)
	default:
		m.status = n.Label
	}
}

func (m Model) renderTree(w, h int) string {
	vis := m.visible()
	if len(vis) == 0 {
		return dimStyle.Render("no file open\n\npress o to browse")
	}
	// keep the cursor in view
	start := 0
	if m.cursor >= h {
		start = m.cursor - h + 1
	}
	end := min(len(vis), start+h)
	lines := make([]string, 0, h)
	for i := start; i < end; i++ {
		n := vis[i]
		marker := "  "
		if n.HasChildren {
			marker = "▾ "
			if m.collapsed[n.Key] {
				marker = "▸ "
			}
		}
		label := truncate(strings.Repeat(" ", n.Depth)+marker+n.Label, w)
		switch {
		case i == m.cursor:
			label = cursorStyle.Render(padRight(label, w))
		case n.Kind == tree.Group || n.Kind == tree.File:
			label = groupStyle.Render(label)
		case n.Kind == tree.Attribute || n.Kind == tree.Dimension:
			label = dimStyle.Render(label)
		}
		lines = append(lines, label)
	}
	return strings.Join(lines, "\n")
}
