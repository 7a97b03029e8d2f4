package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ncbrowse/internal/chart"
	"ncbrowse/internal/colormap"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/geom"
	"ncbrowse/internal/plotwin"
)

// renderPlots draws the pane tabs and the active pane.
func (m Model) renderPlots(w, h int) string {
	active, ok := m.app.Plots.Active()
	if !ok {
		return dimStyle.Render("no plots: select a variable and press enter, or p to pick a plot type")
	}
	tabs := renderTabs(m.app.Plots.List(), active.ID, w)
	f := active.Figure
	if !f.Archetype.IsGrid() || f.Colormap.Len() >= 2 {
		return tabs + "\n" + renderFigure(&f, active.Frame, w, h-1)
	}
	f.Colormap, _ = m.app.Colormaps.GetOrDefault("")
	return tabs + "\n" + renderFigure(&f, active.Frame, w, h-1)
}

func renderTabs(panes []plotwin.Window, activeID string, w int) string {
	parts := make([]string, 0, len(panes))
	for _, p := range panes {
		title := truncate(p.Title, 28)
		if p.ID == activeID {
			parts = append(parts, activeTab.Render(title))
		} else {
			parts = append(parts, tabStyle.Render(title))
		}
	}
	return lipgloss.NewStyle().MaxWidth(w).Render(strings.Join(parts, dimStyle.Render("│")))
}

// renderFigure draws f into a w x h block of cells.
func renderFigure(f *chart.Figure, frame, w, h int) string {
	title := f.Title
	if f.Archetype == chart.Animated && f.AnimDim != "" {
		title += fmt.Sprintf(" (%s: %s)", f.AnimDim, f.FrameLabel(frame))
	}
	head := titleStyle.Render(truncate(title, w))
	if f.Failed() {
		return head + "\n\n" + errStyle.Render(f.Err)
	}

	var foot []string
	if f.Archetype.IsGrid() {
		foot = append(foot, colorbar(f, w)...)
	}
	if n := f.FrameCount(); f.Archetype == chart.Animated && n > 1 {
		foot = append(foot, slider(f, frame, n, w))
	}
	for _, msg := range f.Warnings {
		foot = append(foot, warnStyle.Render(truncate("! "+msg, w)))
	}
	ch := h - 1 - len(foot)
	if ch < 4 {
		// keep the chart, drop the warnings
		foot = foot[:min(len(foot), max(0, h-5))]
		ch = h - 1 - len(foot)
	}
	var body string
	if f.Archetype.IsGrid() {
		body = renderGrid(f, f.GridAt(frame), w, ch)
	} else {
		body = renderSeries(f, w, ch)
	}
	return strings.Join(append([]string{head, body}, foot...), "\n")
}

func tick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// pad widens a degenerate range so it maps onto the canvas.
func pad(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	return lo - 0.5, hi + 0.5
}

// frameAxes lays out the y gutter, the x axis and the axis titles around rows.
func frameAxes(rows []string, ytop, ybot, xleft, xright, xtitle, ytitle string, w int) string {
	gutter := max(lipgloss.Width(ytop), lipgloss.Width(ybot)) + 1
	out := make([]string, 0, len(rows)+3)
	for i, r := range rows {
		label := ""
		switch i {
		case 0:
			label = ytop
		case len(rows) - 1:
			label = ybot
		}
		out = append(out, dimStyle.Render(fmt.Sprintf("%*s", gutter-1, label)+"│")+r)
	}
	pw := max(0, w-gutter)
	out = append(out, dimStyle.Render(strings.Repeat(" ", gutter-1)+"└"+strings.Repeat("─", pw)))
	gap := max(1, pw-lipgloss.Width(xleft)-lipgloss.Width(xright))
	out = append(out, dimStyle.Render(strings.Repeat(" ", gutter)+xleft+strings.Repeat(" ", gap)+xright))
	out = append(out, dimStyle.Render(truncate(fmt.Sprintf("x: %s   y: %s", xtitle, ytitle), w)))
	return strings.Join(out, "\n")
}

// gutterFor is the width taken by the y labels of a range.
func gutterFor(lo, hi float64) int {
	return max(len(tick(lo)), len(tick(hi))) + 1
}

// renderSeries draws a line chart on a braille canvas.
func renderSeries(f *chart.Figure, w, h int) string {
	s := f.Series
	xlo, xhi, okx := dataset.Range(s.X)
	ylo, yhi, oky := dataset.Range(s.Y)
	if !okx || !oky {
		return dimStyle.Render("no valid values to draw")
	}
	xlo, xhi = pad(xlo, xhi)
	ylo, yhi = pad(ylo, yhi)

	gutter := gutterFor(ylo, yhi)
	cw, ch := max(4, w-gutter), max(1, h-3)
	c := newBrailleCanvas(cw, ch)
	c.setRange(xlo, xhi, ylo, yhi)
	c.invertY = f.InvertY
	c.polyline(s.X, s.Y)

	line := lipgloss.NewStyle().Foreground(accentFg)
	rows := c.lines()
	for i := range rows {
		rows[i] = line.Render(rows[i])
	}
	ytop, ybot := tick(yhi), tick(ylo)
	if f.InvertY {
		ytop, ybot = ybot, ytop
	}
	xl, xr := tick(xlo), tick(xhi)
	if s.XLabels != nil && f.Archetype != chart.Profile {
		xl, xr = edgeLabels(s.X, s.XLabels)
	}
	return frameAxes(rows, ytop, ybot, xl, xr, f.XLabel, f.YLabel, w)
}

// edgeLabels returns the labels of the first and last finite x values.
func edgeLabels(xs []float64, labels []string) (string, string) {
	first, last := -1, -1
	for i, x := range xs {
		if i < len(labels) && finite(x) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return "", ""
	}
	return labels[first], labels[last]
}

// nearest returns the index of the value in vs closest to v.
func nearest(vs []float64, v float64) int {
	best, bestD := -1, math.Inf(1)
	for i, x := range vs {
		if d := math.Abs(x - v); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// renderGrid draws g with half-block cells, two grid samples per cell.
func renderGrid(f *chart.Figure, g chart.Grid, w, h int) string {
	if g.Rows() == 0 || g.Cols() == 0 {
		return dimStyle.Render("empty grid")
	}
	xlo, xhi, okx := dataset.Range(g.X)
	ylo, yhi, oky := dataset.Range(g.Y)
	if !okx || !oky {
		return dimStyle.Render("grid has no coordinates")
	}
	if f.View.Valid() {
		xlo, xhi, ylo, yhi = f.View.MinX, f.View.MaxX, f.View.MinY, f.View.MaxY
	}
	xlo, xhi = pad(xlo, xhi)
	ylo, yhi = pad(ylo, yhi)

	gutter := gutterFor(ylo, yhi)
	pw, ph := max(4, w-gutter), max(1, h-3)
	sub := ph * 2

	// sample positions, top to bottom
	colAt := make([]int, pw)
	for c := range colAt {
		colAt[c] = nearest(g.X, xlo+float64(c)/float64(max(1, pw-1))*(xhi-xlo))
	}
	rowAt := make([]int, sub)
	for s := range rowAt {
		t := float64(s) / float64(max(1, sub-1))
		y := yhi - t*(yhi-ylo)
		if f.InvertY {
			y = ylo + t*(yhi-ylo)
		}
		rowAt[s] = nearest(g.Y, y)
	}

	mask := make([][]bool, sub)
	for i := range mask {
		mask[i] = make([]bool, pw)
	}
	project := func(p [2]float64) (int, int) {
		c := scaleTo(p[0], xlo, xhi, pw)
		s := scaleTo(p[1], ylo, yhi, sub)
		if !f.InvertY {
			s = sub - 1 - s
		}
		return c, s
	}
	for _, d := range f.Overlays {
		markOverlay(mask, d, project)
	}

	lo, hi := f.ZMin, f.ZMax
	if hi <= lo {
		lo, hi = pad(lo, hi)
	}
	ink := "#000000"
	if f.Dark() {
		ink = "#FFFFFF"
	}
	sample := func(s, c int) (string, bool) {
		if mask[s][c] {
			return ink, true
		}
		r, k := rowAt[s], colAt[c]
		if r < 0 || k < 0 || r >= len(g.Z) || k >= len(g.Z[r]) {
			return "", false
		}
		z := g.Z[r][k]
		if !finite(z) {
			return "", false
		}
		return colormap.Hex(f.Colormap.At((z - lo) / (hi - lo))), true
	}

	rows := make([]string, ph)
	var sb strings.Builder
	for r := range rows {
		sb.Reset()
		for c := 0; c < pw; c++ {
			top, okTop := sample(2*r, c)
			bot, okBot := sample(2*r+1, c)
			sb.WriteString(halfBlock(top, okTop, bot, okBot))
		}
		rows[r] = sb.String()
	}
	ytop, ybot := tick(yhi), tick(ylo)
	if f.InvertY {
		ytop, ybot = ybot, ytop
	}
	return frameAxes(rows, ytop, ybot, tick(xlo), tick(xhi), f.XLabel, f.YLabel, w)
}

func halfBlock(top string, okTop bool, bot string, okBot bool) string {
	switch {
	case okTop && okBot:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(top)).Background(lipgloss.Color(bot)).Render("▀")
	case okTop:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(top)).Render("▀")
	case okBot:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(bot)).Render("▄")
	default:
		return " "
	}
}

// markOverlay rasterizes overlay geometry onto a half-block mask.
func markOverlay(mask [][]bool, d geom.Data, project func([2]float64) (int, int)) {
	path := func(pts [][2]float64, closed bool) {
		for i := 1; i < len(pts); i++ {
			x0, y0 := project(pts[i-1])
			x1, y1 := project(pts[i])
			drawLine(mask, x0, y0, x1, y1)
		}
		if closed && len(pts) > 2 {
			x0, y0 := project(pts[len(pts)-1])
			x1, y1 := project(pts[0])
			drawLine(mask, x0, y0, x1, y1)
		}
	}
	for _, p := range d.Points {
		x, y := project(p)
		drawLine(mask, x, y, x, y)
	}
	for _, l := range d.Lines {
		path(l, false)
	}
	for _, poly := range d.Polygons {
		for _, ring := range poly {
			path(ring, true)
		}
	}
}

// colorbar renders the color scale with its range and label.
func colorbar(f *chart.Figure, w int) []string {
	if f.Colormap.Len() < 2 {
		return nil
	}
	bw := max(4, w-2)
	var sb strings.Builder
	sb.WriteString(" ")
	for i := 0; i < bw; i++ {
		c := f.Colormap.At(float64(i) / float64(bw-1))
		sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(colormap.Hex(c))).Render(" "))
	}
	lo, hi := tick(f.ZMin), tick(f.ZMax)
	label := f.CbarLabel
	gap := max(1, bw-len(lo)-len(hi)-lipgloss.Width(label))
	left := gap / 2
	labels := " " + lo + strings.Repeat(" ", left) + label + strings.Repeat(" ", gap-left) + hi
	return []string{sb.String(), dimStyle.Render(truncate(labels, w))}
}

// slider renders the frame position of an animated figure.
func slider(f *chart.Figure, frame, n, w int) string {
	info := fmt.Sprintf(" %d/%d %s=%s", frame+1, n, f.AnimDim, f.FrameLabel(frame))
	bw := max(4, w-lipgloss.Width(info)-4)
	pos := scaleTo(float64(frame), 0, float64(n-1), bw)
	bar := strings.Repeat("━", pos) + "●" + strings.Repeat("─", max(0, bw-pos-1))
	return dimStyle.Render(", ") + titleStyle.Render(bar) + dimStyle.Render(" ."+info)
}
