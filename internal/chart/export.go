package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"ncbrowse/internal/geom"
)

// Default export size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

const colorbarWidth = 1.2 * vg.Inch

var (
	lightBG  = color.White
	lightFG  = color.Black
	darkBG   = color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
	darkFG   = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	lineCol  = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	overlayC = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	nanCol   = color.NRGBA{A: 0}
)

// Formats lists the export formats by file extension.
var Formats = []string{"html", "png", "jpg", "jpeg", "svg"}

// FormatOf returns the export format implied by path's extension.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if f == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format %q (want one of %s)", ext, strings.Join(Formats, ", "))
}

func (f *Figure) colors() (bg, fg color.Color) {
	if f.Dark() {
		return darkBG, darkFG
	}
	return lightBG, lightFG
}

// Plot builds the gonum plot for frame i. Grid figures are returned without
// their colorbar; see Colorbar.
func (f *Figure) Plot(frame int) (*plot.Plot, error) {
	if f.Failed() {
		return nil, errors.New(f.Err)
	}
	p := plot.New()
	bg, fg := f.colors()
	p.BackgroundColor = bg
	p.Title.Text = f.Title
	if len(f.Frames) > 0 {
		p.Title.Text = fmt.Sprintf("%s (%s: %s)", f.Title, f.AnimDim, f.FrameLabel(frame))
	}
	p.Title.TextStyle.Color = fg
	if f.TitleFontSize > 0 {
		p.Title.TextStyle.Font.Size = vg.Points(f.TitleFontSize)
	}
	p.X.Label.Text = f.XLabel
	p.Y.Label.Text = f.YLabel
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = fg
		ax.Tick.Color = fg
		ax.Label.TextStyle.Color = fg
		ax.Tick.Label.Color = fg
		if f.FontSize > 0 {
			ax.Label.TextStyle.Font.Size = vg.Points(f.FontSize)
			ax.Tick.Label.Font.Size = vg.Points(f.FontSize * 0.85)
		}
	}
	if f.InvertY {
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	}

	switch {
	case f.Archetype.IsGrid():
		if err := f.addHeatMap(p, frame); err != nil {
			return nil, err
		}
	default:
		if err := f.addSeries(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (f *Figure) addSeries(p *plot.Plot) error {
	s := f.Series
	if f.Series.XLabels != nil && f.Archetype != Profile {
		p.X.Tick.Marker = labelTicks(s.X, s.XLabels)
	}
	for _, seg := range segments(s.X, s.Y) {
		line, points, err := plotter.NewLinePoints(seg)
		if err != nil {
			return fmt.Errorf("line plot: %w", err)
		}
		line.Color = lineCol
		points.Color = lineCol
		points.Radius = vg.Points(2)
		p.Add(line, points)
	}
	return nil
}

// labelTicks places formatted labels at a handful of positions.
func labelTicks(xs []float64, labels []string) plot.ConstantTicks {
	if len(xs) == 0 {
		return nil
	}
	step := max(1, len(xs)/5)
	var ticks plot.ConstantTicks
	for i := 0; i < len(xs); i += step {
		if !math.IsNaN(xs[i]) {
			ticks = append(ticks, plot.Tick{Value: xs[i], Label: labels[i]})
		}
	}
	return ticks
}

// segments splits a series at missing values.
func segments(xs, ys []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i := range xs {
		if i >= len(ys) || !finite(xs[i]) || !finite(ys[i]) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// gridXYZ adapts Grid to plotter.GridXYZ.
type gridXYZ struct{ g Grid }

func (g gridXYZ) Dims() (c, r int)   { return g.g.Cols(), g.g.Rows() }
func (g gridXYZ) Z(c, r int) float64 { return g.g.Z[r][c] }
func (g gridXYZ) X(c int) float64    { return g.g.X[c] }
func (g gridXYZ) Y(r int) float64    { return g.g.Y[r] }

func (f *Figure) addHeatMap(p *plot.Plot, frame int) error {
	g := f.GridAt(frame)
	if g.Rows() == 0 || g.Cols() == 0 {
		return errors.New("empty grid")
	}
	if f.Colormap.Len() == 0 {
		return errors.New("no colormap")
	}
	pal := f.Colormap.Resample(256)
	h := plotter.NewHeatMap(gridXYZ{g}, pal)
	h.Min, h.Max = f.ZMin, f.ZMax
	h.NaN = nanCol
	h.Underflow = pal.Colors()[0]
	h.Overflow = pal.Colors()[pal.Len()-1]
	p.Add(h)

	_, fg := f.colors()
	for _, o := range f.Overlays {
		if err := addOverlay(p, o, fg); err != nil {
			return err
		}
	}
	if f.View.Valid() {
		p.X.Min, p.X.Max = f.View.MinX, f.View.MaxX
		p.Y.Min, p.Y.Max = f.View.MinY, f.View.MaxY
	}
	return nil
}

func addOverlay(p *plot.Plot, d geom.Data, fg color.Color) error {
	col := overlayC
	if fg == darkFG {
		col = darkFG
	}
	toXYs := func(pts [][2]float64) plotter.XYs {
		xy := make(plotter.XYs, 0, len(pts))
		for _, pt := range pts {
			if finite(pt[0]) && finite(pt[1]) {
				xy = append(xy, plotter.XY{X: pt[0], Y: pt[1]})
			}
		}
		return xy
	}
	for _, ls := range d.Lines {
		xy := toXYs(ls)
		if len(xy) < 2 {
			continue
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("overlay line: %w", err)
		}
		l.Color = col
		p.Add(l)
	}
	for _, poly := range d.Polygons {
		var rings []plotter.XYer
		for _, ring := range poly {
			if xy := toXYs(ring); len(xy) >= 3 {
				rings = append(rings, xy)
			}
		}
		if len(rings) == 0 {
			continue
		}
		pg, err := plotter.NewPolygon(rings...)
		if err != nil {
			return fmt.Errorf("overlay polygon: %w", err)
		}
		pg.Color = nil
		pg.LineStyle.Color = col
		p.Add(pg)
	}
	if xy := toXYs(d.Points); len(xy) > 0 {
		s, err := plotter.NewScatter(xy)
		if err != nil {
			return fmt.Errorf("overlay points: %w", err)
		}
		s.Color = col
		p.Add(s)
	}
	return nil
}

// Colorbar builds the colorbar plot for a grid figure.
func (f *Figure) Colorbar() *plot.Plot {
	p := plot.New()
	bg, fg := f.colors()
	p.BackgroundColor = bg
	p.HideX()
	p.Y.Label.Text = f.CbarLabel
	p.Y.Color = fg
	p.Y.Tick.Color = fg
	p.Y.Label.TextStyle.Color = fg
	p.Y.Tick.Label.Color = fg
	p.Add(&plotter.ColorBar{ColorMap: f.Colormap.Scale(f.ZMin, f.ZMax), Vertical: true})
	return p
}

// DrawTo draws frame i onto c, reserving a strip on the right for the
// colorbar of grid figures.
func (f *Figure) DrawTo(c draw.Canvas, frame int) error {
	p, err := f.Plot(frame)
	if err != nil {
		return err
	}
	if !f.Archetype.IsGrid() {
		p.Draw(c)
		return nil
	}
	main := draw.Crop(c, 0, -colorbarWidth, 0, 0)
	bar := draw.Crop(c, c.Max.X-c.Min.X-colorbarWidth, 0, 0, 0)
	p.Draw(main)
	f.Colorbar().Draw(bar)
	return nil
}

type writerToCanvas interface {
	vg.CanvasSizer
	io.WriterTo
}

// WriteImage writes frame i as png, jpg/jpeg or svg.
func (f *Figure) WriteImage(w io.Writer, format string, frame int, width, height vg.Length) error {
	bg, _ := f.colors()
	var c writerToCanvas
	switch strings.ToLower(format) {
	case "png":
		c = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseBackgroundColor(bg))}
	case "jpg", "jpeg":
		c = vgimg.JpegCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseBackgroundColor(bg))}
	case "svg":
		c = vgsvg.New(width, height)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	if err := f.DrawTo(draw.New(c), frame); err != nil {
		return err
	}
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	return nil
}

// SVG renders frame i as an SVG document.
func (f *Figure) SVG(frame int, width, height vg.Length) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.WriteImage(&buf, "svg", frame, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile exports the figure to path, choosing the format by extension.
// Image formats draw a single frame; HTML embeds every frame.
func (f *Figure) SaveFile(path string, frame int) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if f.Failed() {
		return errors.New(f.Err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	if format == "html" {
		return f.WriteHTML(out, DefaultWidth, DefaultHeight)
	}
	return f.WriteImage(out, format, frame, DefaultWidth, DefaultHeight)
}
