package chart

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"ncbrowse/internal/colormap"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/geom"
	"ncbrowse/internal/settings"
)

// DefaultMaxFrames caps the frames of an animated chart.
const DefaultMaxFrames = 50

// DatasetSource hands out open datasets.
type DatasetSource interface {
	Get(path string) *dataset.Dataset
	Open(path string) (*dataset.Dataset, error)
}

// OptionSource resolves plot options and the active overlay list.
type OptionSource interface {
	PlotOptions(overrides settings.Options) settings.Options
	ActiveOverlays() []string
}

// OverlaySource loads overlay geometry by name.
type OverlaySource interface {
	LoadAll(names []string) ([]geom.Data, []string)
}

// ColormapSource resolves colormap names.
type ColormapSource interface {
	GetOrDefault(name string) (colormap.Colormap, bool)
}

// Request asks for one variable to be drawn. A zero Archetype is inferred.
type Request struct {
	Path      string
	Variable  string
	Archetype Archetype
	Options   settings.Options
}

// Builder turns requests into figures. Only Datasets is required.
type Builder struct {
	Datasets  DatasetSource
	Settings  OptionSource
	Overlays  OverlaySource
	Colormaps ColormapSource
	MaxFrames int
	Log       *zap.SugaredLogger
}

func (b *Builder) logger() *zap.SugaredLogger {
	if b.Log == nil {
		return zap.NewNop().Sugar()
	}
	return b.Log
}

func (b *Builder) options(overrides settings.Options) settings.Options {
	if b.Settings == nil {
		return settings.Merge(settings.PlotDefaults(), overrides)
	}
	return b.Settings.PlotOptions(overrides)
}

func (b *Builder) maxFrames() int {
	if b.MaxFrames <= 0 {
		return DefaultMaxFrames
	}
	return b.MaxFrames
}

// Build renders req into a Figure. Problems never escape as errors: they are
// reported through Figure.Err, or Figure.Warnings when drawing can go on.
func (b *Builder) Build(req Request) Figure {
	log := b.logger()
	opts := b.options(req.Options)
	f := Figure{
		Archetype:     req.Archetype,
		Variable:      req.Variable,
		Theme:         opts.String(settings.PlotTheme),
		FontSize:      opts.Float(settings.PlotFontSize, 12),
		TitleFontSize: opts.Float(settings.PlotTitleFontSize, 16),
	}

	ds := b.Datasets.Get(req.Path)
	if ds == nil {
		var err error
		if ds, err = b.Datasets.Open(req.Path); err != nil {
			log.Warnw("plot: opening dataset", "path", req.Path, "error", err)
			return *f.fail(err.Error())
		}
	}
	v, ok := ds.Variable(req.Variable)
	if !ok {
		err := fmt.Errorf("%w: %s", dataset.ErrMissingVariable, req.Variable)
		log.Warnw("plot: variable lookup", "path", req.Path, "error", err)
		return *f.fail(err.Error())
	}
	if f.Archetype == Unsupported {
		f.Archetype = Infer(v.Dims)
	}
	f.applyLabels(opts, v)

	if err := checkShape(f.Archetype, v.Dims); err != nil {
		log.Warnw("plot: shape", "variable", v.Name, "dims", v.Dims, "archetype", f.Archetype, "error", err)
		return *f.fail(err.Error())
	}

	arr, err := ds.Read(v.Name)
	if err != nil {
		log.Warnw("plot: reading data", "variable", v.Name, "error", err)
		return *f.fail(err.Error())
	}
	if len(arr.Valid()) == 0 {
		f.warn("variable has no valid values")
	}

	switch f.Archetype {
	case TimeSeries:
		err = b.buildSeries(&f, ds, arr, "time")
		f.defaultAxes("time", valueLabel(v))
	case Profile:
		err = b.buildProfile(&f, ds, arr)
		f.defaultAxes(valueLabel(v), verticalDim(v.Dims))
	case Line:
		err = b.buildSeries(&f, ds, arr, v.Dims[0])
		f.defaultAxes(v.Dims[0], valueLabel(v))
	case GeoMap, Heatmap:
		err = b.buildGrid(&f, ds, arr)
	case Animated:
		err = b.buildAnimated(&f, ds, arr)
	}
	if err != nil {
		log.Warnw("plot: building", "variable", v.Name, "archetype", f.Archetype, "error", err)
		return *f.fail(err.Error())
	}
	if f.Archetype.IsGrid() {
		b.applyColors(&f, opts)
	}
	if f.Archetype == GeoMap {
		b.applyOverlays(&f)
	}
	for _, w := range f.Warnings {
		log.Infow("plot warning", "variable", v.Name, "warning", w)
	}
	log.Debugw("plot built", "variable", v.Name, "archetype", f.Archetype, "frames", len(f.Frames))
	return f
}

func checkShape(a Archetype, dims []string) error {
	var need string
	switch a {
	case TimeSeries:
		if !has(dims, "time") {
			need = "a time dimension"
		}
	case Profile:
		if !has(dims, "depth") && !has(dims, "pressure") {
			need = "a depth or pressure dimension"
		}
	case GeoMap:
		if !has(dims, "lat") || !has(dims, "lon") {
			need = "lat and lon dimensions"
		}
	case Heatmap:
		if len(dims) < 2 {
			need = "two dimensions"
		}
	case Animated:
		if len(dims) < 3 {
			need = "three or more dimensions"
		}
	case Line:
		if len(dims) < 1 {
			need = "one dimension"
		}
	default:
		return fmt.Errorf("%w: %d dimensions %v", ErrUnsupportedShape, len(dims), dims)
	}
	if need != "" {
		return fmt.Errorf("%w: %s chart needs %s, variable has %v", ErrUnsupportedShape, a, need, dims)
	}
	return nil
}

// applyLabels sets the labels given in options. Empty axis labels are
// filled in once the axes are known.
func (f *Figure) applyLabels(opts settings.Options, v *dataset.Variable) {
	f.Title = orDefault(opts.String(settings.PlotTitle), v.Name+" Plot")
	f.XLabel = opts.String(settings.PlotXLabel)
	f.YLabel = opts.String(settings.PlotYLabel)
	f.CbarLabel = orDefault(opts.String(settings.PlotCbarLabel), v.Units())
}

func (f *Figure) defaultAxes(x, y string) {
	f.XLabel = orDefault(f.XLabel, x)
	f.YLabel = orDefault(f.YLabel, y)
}

func valueLabel(v *dataset.Variable) string {
	if u := v.Units(); u != "" {
		return v.Name + " [" + u + "]"
	}
	return v.Name
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func verticalDim(dims []string) string {
	for _, d := range dims {
		if isVertical(d) {
			return d
		}
	}
	return ""
}

// reduce slices every dimension not in keep at index 0, recording a warning
// for each.
func reduce(f *Figure, ds *dataset.Dataset, arr *dataset.Array, keep ...string) (*dataset.Array, error) {
	for _, d := range append([]string(nil), arr.Dims...) {
		if has(keep, d) {
			continue
		}
		label := "index 0"
		if c, ok := ds.Coordinate(d); ok && c.Len() > 0 {
			label = ds.FormatCoord(d, c.Values[0])
		}
		var err error
		if arr, err = arr.Index(d, 0); err != nil {
			return nil, err
		}
		f.warn(fmt.Sprintf("%s sliced at index 0 (%s)", d, label))
	}
	return arr, nil
}

// axis returns the coordinate values along dim, or 0..n-1 with a warning.
func axis(f *Figure, ds *dataset.Dataset, dim string, n int) []float64 {
	if c, ok := ds.Coordinate(dim); ok && c.Len() == n {
		return c.Values
	}
	f.warn(fmt.Sprintf("no coordinate values for %s, using index", dim))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func (b *Builder) buildSeries(f *Figure, ds *dataset.Dataset, arr *dataset.Array, dim string) error {
	arr, err := reduce(f, ds, arr, dim)
	if err != nil {
		return err
	}
	x := axis(f, ds, dim, arr.Len())
	f.Series = Series{X: x, Y: arr.Values}
	if tu, ok := timeUnits(ds, dim); ok {
		f.Series.XLabels = make([]string, len(x))
		for i, v := range x {
			f.Series.XLabels[i] = tu.Format(v)
		}
	}
	return nil
}

func (b *Builder) buildProfile(f *Figure, ds *dataset.Dataset, arr *dataset.Array) error {
	dim := verticalDim(arr.Dims)
	arr, err := reduce(f, ds, arr, dim)
	if err != nil {
		return err
	}
	f.Series = Series{X: arr.Values, Y: axis(f, ds, dim, arr.Len())}
	f.InvertY = true
	return nil
}

func timeUnits(ds *dataset.Dataset, dim string) (dataset.TimeUnits, bool) {
	v, ok := ds.Variable(dim)
	if !ok {
		return dataset.TimeUnits{}, false
	}
	return dataset.ParseTimeUnits(v.Units())
}

// layout decides which dimension of a 2-D slice runs along each axis.
// Longitude always goes on X.
type layout struct {
	rowDim, colDim string
	transpose      bool
	x, y           []float64
}

func newLayout(f *Figure, ds *dataset.Dataset, dims []string, shape []int) layout {
	l := layout{rowDim: dims[0], colDim: dims[1]}
	rows, cols := shape[0], shape[1]
	if dims[0] == "lon" && dims[1] == "lat" {
		l = layout{rowDim: "lat", colDim: "lon", transpose: true}
		rows, cols = cols, rows
	}
	l.x = axis(f, ds, l.colDim, cols)
	l.y = axis(f, ds, l.rowDim, rows)
	return l
}

func (l layout) grid(arr *dataset.Array) (Grid, error) {
	rows, err := arr.Rows()
	if err != nil {
		return Grid{}, err
	}
	z := make([][]float64, len(rows))
	for r := range rows {
		z[r] = append([]float64(nil), rows[r]...)
	}
	if l.transpose {
		z = transpose(z)
	}
	return Grid{X: l.x, Y: l.y, Z: z}, nil
}

func transpose(z [][]float64) [][]float64 {
	if len(z) == 0 {
		return z
	}
	out := make([][]float64, len(z[0]))
	for c := range out {
		out[c] = make([]float64, len(z))
		for r := range z {
			out[c][r] = z[r][c]
		}
	}
	return out
}

func (b *Builder) buildGrid(f *Figure, ds *dataset.Dataset, arr *dataset.Array) error {
	arr, err := reduce(f, ds, arr, keepPair(arr.Dims)...)
	if err != nil {
		return err
	}
	l := newLayout(f, ds, arr.Dims, arr.Shape)
	if f.Grid, err = l.grid(arr); err != nil {
		return err
	}
	f.InvertY = isVertical(l.rowDim)
	if f.Archetype == GeoMap {
		f.View = bboxOf(l.x, l.y)
	}
	f.defaultAxes(l.colDim, l.rowDim)
	return nil
}

func (b *Builder) buildAnimated(f *Figure, ds *dataset.Dataset, arr *dataset.Array) error {
	dim := AnimationAxis(arr.Dims)
	n := arr.Shape[arr.Axis(dim)]
	f.AnimDim = dim
	f.TotalFrames = n
	limit := min(n, b.maxFrames())
	if limit == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrUnsupportedShape, dim)
	}
	if limit < n {
		f.warn(fmt.Sprintf("showing first %d of %d %s steps", limit, n, dim))
	}

	var coord *dataset.Array
	if c, ok := ds.Coordinate(dim); ok {
		coord = c
	}

	var l layout
	for i := 0; i < limit; i++ {
		slice, err := arr.Index(dim, i)
		if err != nil {
			return err
		}
		if i == 0 {
			if slice, err = reduce(f, ds, slice, keepPair(slice.Dims)...); err != nil {
				return err
			}
			l = newLayout(f, ds, slice.Dims, slice.Shape)
		} else {
			// Same reduction as frame 0, without repeating its warnings.
			for _, d := range append([]string(nil), slice.Dims...) {
				if d != l.rowDim && d != l.colDim {
					if slice, err = slice.Index(d, 0); err != nil {
						return err
					}
				}
			}
		}
		g, err := l.grid(slice)
		if err != nil {
			return err
		}
		label := strconv.Itoa(i)
		if coord != nil {
			label = ds.FormatCoord(dim, coord.Values[i])
		}
		f.Frames = append(f.Frames, Frame{Label: label, Grid: g})
	}
	f.Grid = f.Frames[0].Grid
	f.InvertY = isVertical(l.rowDim)
	if has([]string{l.rowDim, l.colDim}, "lat") && has([]string{l.rowDim, l.colDim}, "lon") {
		f.View = bboxOf(l.x, l.y)
	}
	f.defaultAxes(l.colDim, l.rowDim)
	return nil
}

// keepPair picks the two dimensions a frame shows: lat/lon when present,
// otherwise the last two.
func keepPair(dims []string) []string {
	if has(dims, "lat") && has(dims, "lon") {
		return []string{"lat", "lon"}
	}
	return dims[len(dims)-2:]
}

func (b *Builder) applyColors(f *Figure, opts settings.Options) {
	name := opts.String(settings.PlotColormap)
	if b.Colormaps != nil {
		cm, ok := b.Colormaps.GetOrDefault(name)
		if !ok {
			f.warn(fmt.Sprintf("colormap %q not found, using %s", name, cm.Name))
		}
		f.Colormap = cm
	} else {
		f.Colormap, _ = colormap.NewCatalog("", nil).GetOrDefault(name)
	}

	var all []float64
	for i := 0; i < f.FrameCount(); i++ {
		for _, row := range f.GridAt(i).Z {
			all = append(all, row...)
		}
	}
	lo, hi, ok := dataset.Range(all)
	if !ok {
		lo, hi = 0, 1
	}
	if hi == lo {
		hi = lo + 1
	}
	f.ZMin, f.ZMax = lo, hi
}

func (b *Builder) applyOverlays(f *Figure) {
	if b.Settings == nil || b.Overlays == nil {
		return
	}
	names := b.Settings.ActiveOverlays()
	if len(names) == 0 {
		return
	}
	datas, failed := b.Overlays.LoadAll(names)
	f.Overlays = datas
	for _, n := range failed {
		f.warn(fmt.Sprintf("overlay %s could not be loaded", n))
	}
}
