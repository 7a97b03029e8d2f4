package chart

import (
	"math"

	"ncbrowse/internal/colormap"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/geom"
)

// Series is one line of (x, y) pairs. Missing values are NaN.
type Series struct {
	X []float64
	Y []float64
	// XLabels holds formatted values when X is a decoded time axis.
	XLabels []string
}

// Grid is a 2-D field. Z[r][c] lies at (X[c], Y[r]).
type Grid struct {
	X, Y []float64
	Z    [][]float64
}

// Rows is the number of rows.
func (g Grid) Rows() int { return len(g.Z) }

// Cols is the number of columns.
func (g Grid) Cols() int {
	if len(g.Z) == 0 {
		return 0
	}
	return len(g.Z[0])
}

// Range returns the extent of the finite values.
func (g Grid) Range() (lo, hi float64, ok bool) {
	var all []float64
	for _, row := range g.Z {
		all = append(all, row...)
	}
	return dataset.Range(all)
}

// Frame is one step of an animated chart.
type Frame struct {
	Label string
	Grid  Grid
}

// Figure is everything needed to draw a chart, independent of the output.
type Figure struct {
	Archetype Archetype
	Variable  string
	Title     string
	XLabel    string
	YLabel    string
	CbarLabel string

	Series Series
	Grid   Grid

	Frames      []Frame
	AnimDim     string
	TotalFrames int

	// InvertY draws the vertical axis increasing downward.
	InvertY  bool
	Overlays []geom.Data
	View     geom.BBox

	Colormap colormap.Colormap
	// ZMin and ZMax fix the color scale across frames.
	ZMin, ZMax float64

	Theme         string
	FontSize      float64
	TitleFontSize float64

	Warnings []string
	Err      string
}

// Failed reports whether the figure carries an error instead of data.
func (f *Figure) Failed() bool { return f.Err != "" }

// Dark reports whether the dark plot template is selected.
func (f *Figure) Dark() bool { return f.Theme == "Dark" || f.Theme == "dark" }

// FrameCount is the number of drawable grids.
func (f *Figure) FrameCount() int {
	if len(f.Frames) > 0 {
		return len(f.Frames)
	}
	if f.Archetype.IsGrid() {
		return 1
	}
	return 0
}

// GridAt returns the grid for frame i, clamped to the available frames.
func (f *Figure) GridAt(i int) Grid {
	if len(f.Frames) == 0 {
		return f.Grid
	}
	if i < 0 {
		i = 0
	}
	if i >= len(f.Frames) {
		i = len(f.Frames) - 1
	}
	return f.Frames[i].Grid
}

// FrameLabel returns the slider label of frame i.
func (f *Figure) FrameLabel(i int) string {
	if i < 0 || i >= len(f.Frames) {
		return ""
	}
	return f.Frames[i].Label
}

func (f *Figure) warn(msg string) { f.Warnings = append(f.Warnings, msg) }

func (f *Figure) fail(msg string) *Figure {
	f.Err = msg
	return f
}

func bboxOf(xs, ys []float64) geom.BBox {
	bb := geom.BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, x := range xs {
		if !math.IsNaN(x) {
			bb.MinX = math.Min(bb.MinX, x)
			bb.MaxX = math.Max(bb.MaxX, x)
		}
	}
	for _, y := range ys {
		if !math.IsNaN(y) {
			bb.MinY = math.Min(bb.MinY, y)
			bb.MaxY = math.Max(bb.MaxY, y)
		}
	}
	return bb
}
