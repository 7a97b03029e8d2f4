package chart

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncbrowse/internal/colormap"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/dataset/datasettest"
	"ncbrowse/internal/geom"
	"ncbrowse/internal/settings"
)

type fakeOptions struct {
	saved    settings.Options
	overlays []string
}

func (o fakeOptions) PlotOptions(overrides settings.Options) settings.Options {
	return settings.Merge(settings.PlotDefaults(), o.saved, overrides)
}

func (o fakeOptions) ActiveOverlays() []string { return o.overlays }

type fakeOverlays map[string]geom.Data

func (f fakeOverlays) LoadAll(names []string) ([]geom.Data, []string) {
	var out []geom.Data
	var failed []string
	for _, n := range names {
		if d, ok := f[n]; ok {
			out = append(out, d)
		} else {
			failed = append(failed, n)
		}
	}
	return out, failed
}

func newBuilder(t *testing.T) (*Builder, string) {
	t.Helper()
	reg := dataset.NewRegistry(nil)
	t.Cleanup(reg.CloseAll)
	path := datasettest.Ocean(t, t.TempDir())
	return &Builder{
		Datasets:  reg,
		Colormaps: colormap.NewCatalog("", nil),
	}, path
}

func TestBuildTimeSeries(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "series"})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, TimeSeries, f.Archetype)
	assert.Equal(t, []float64{0, 1, 2, 3}, f.Series.X)
	assert.Equal(t, []float64{1.5, 2.5, 3.5, 4.5}, f.Series.Y)
	assert.Equal(t, "2000-01-02", f.Series.XLabels[1])
	assert.Equal(t, "series Plot", f.Title)
	assert.Equal(t, "time", f.XLabel)
	assert.Equal(t, "series [m]", f.YLabel)
	assert.Empty(t, f.Warnings)
}

func TestBuildProfileInvertsY(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "profile"})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, Profile, f.Archetype)
	assert.True(t, f.InvertY)
	assert.Equal(t, []float64{20, 15, 5}, f.Series.X)
	assert.Equal(t, []float64{0, 10, 50}, f.Series.Y)
	assert.Equal(t, "depth", f.YLabel)
}

func TestBuildLineUsesIndexWithWarning(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "counts"})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, Line, f.Archetype)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, f.Series.X)
	assert.Equal(t, []float64{10, 11, 12, 13, 14}, f.Series.Y)
	require.Len(t, f.Warnings, 1)
	assert.Contains(t, f.Warnings[0], "using index")
}

func TestBuildGeoMap(t *testing.T) {
	b, path := newBuilder(t)
	b.Settings = fakeOptions{overlays: []string{"coast", "missing"}}
	b.Overlays = fakeOverlays{"coast": {Lines: [][][2]float64{{{120, 30}, {122, 31}}}}}

	f := b.Build(Request{Path: path, Variable: "sst"})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, GeoMap, f.Archetype)
	assert.Equal(t, []float64{120, 121, 122}, f.Grid.X)
	assert.Equal(t, []float64{30, 31}, f.Grid.Y)
	assert.Equal(t, 2, f.Grid.Rows())
	assert.Equal(t, 3, f.Grid.Cols())
	assert.True(t, math.IsNaN(f.Grid.Z[1][1]))
	assert.Equal(t, geom.BBox{MinX: 120, MinY: 30, MaxX: 122, MaxY: 31}, f.View)
	assert.Equal(t, "degC", f.CbarLabel)
	assert.Equal(t, "lon", f.XLabel)
	assert.Equal(t, "lat", f.YLabel)
	assert.Equal(t, 10.0, f.ZMin)
	assert.Equal(t, 15.0, f.ZMax)
	assert.Equal(t, colormap.Default, f.Colormap.Name)
	assert.Len(t, f.Overlays, 1)
	assert.Equal(t, []string{"overlay missing could not be loaded"}, f.Warnings)
}

func TestBuildGeoMapSlicesExtraDims(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "temp", Archetype: GeoMap})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, 2, f.Grid.Rows())
	assert.Equal(t, []float64{0, 0.5, 1}, f.Grid.Z[0])
	require.Len(t, f.Warnings, 1)
	assert.Equal(t, "time sliced at index 0 (2000-01-01)", f.Warnings[0])
}

func TestBuildHeatmapIndexFallback(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "section"})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, Heatmap, f.Archetype)
	assert.Equal(t, []float64{0, 10, 50}, f.Grid.Y)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, f.Grid.X)
	assert.True(t, f.InvertY)
	assert.Equal(t, "x", f.XLabel)
	assert.Equal(t, "depth", f.YLabel)
	assert.Equal(t, []string{"no coordinate values for x, using index"}, f.Warnings)
}

func TestBuildAnimated(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "temp"})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, Animated, f.Archetype)
	assert.Equal(t, "time", f.AnimDim)
	assert.Equal(t, 4, f.TotalFrames)
	require.Len(t, f.Frames, 4)
	assert.Equal(t, "2000-01-03", f.Frames[2].Label)
	assert.Equal(t, []float64{3, 3.5, 4}, f.Frames[1].Grid.Z[0])
	assert.Equal(t, 0.0, f.ZMin)
	assert.Equal(t, 11.5, f.ZMax)
	assert.Empty(t, f.Warnings)

	s := b.Build(Request{Path: path, Variable: "salinity"})
	require.False(t, s.Failed(), s.Err)
	assert.Len(t, s.Frames, 4)
	assert.Equal(t, []string{"depth sliced at index 0 (0)"}, s.Warnings)
	assert.Equal(t, 2, s.GridAt(3).Rows())
}

func TestBuildAnimatedFrameCap(t *testing.T) {
	reg := dataset.NewRegistry(nil)
	t.Cleanup(reg.CloseAll)
	path := datasettest.Frames(t, t.TempDir(), 60)

	b := &Builder{Datasets: reg}
	f := b.Build(Request{Path: path, Variable: "field"})
	require.False(t, f.Failed(), f.Err)
	assert.Len(t, f.Frames, DefaultMaxFrames)
	assert.Equal(t, 60, f.TotalFrames)
	assert.Equal(t, "2020-01-01 01:00", f.Frames[1].Label)
	assert.Contains(t, f.Warnings, "showing first 50 of 60 time steps")

	b.MaxFrames = 3
	f = b.Build(Request{Path: path, Variable: "field"})
	assert.Len(t, f.Frames, 3)
}

func TestBuildOptionsOverride(t *testing.T) {
	b, path := newBuilder(t)
	b.Settings = fakeOptions{saved: settings.Options{settings.PlotColormap: "RdBu", settings.PlotTheme: "Dark"}}
	f := b.Build(Request{
		Path:     path,
		Variable: "sst",
		Options: settings.Options{
			settings.PlotTitle:     "Surface",
			settings.PlotCbarLabel: "C",
			settings.PlotXLabel:    "Longitude",
		},
	})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, "Surface", f.Title)
	assert.Equal(t, "C", f.CbarLabel)
	assert.Equal(t, "Longitude", f.XLabel)
	assert.Equal(t, "lat", f.YLabel)
	assert.Equal(t, "RdBu", f.Colormap.Name)
	assert.True(t, f.Dark())
}

func TestBuildUnknownColormapFallsBack(t *testing.T) {
	b, path := newBuilder(t)
	f := b.Build(Request{Path: path, Variable: "sst", Options: settings.Options{settings.PlotColormap: "nope"}})
	require.False(t, f.Failed(), f.Err)
	assert.Equal(t, colormap.Default, f.Colormap.Name)
	assert.Len(t, f.Warnings, 1)
}

func TestBuildFailures(t *testing.T) {
	b, path := newBuilder(t)

	f := b.Build(Request{Path: path, Variable: "nope"})
	assert.True(t, f.Failed())
	assert.Contains(t, f.Err, "nope")

	f = b.Build(Request{Path: path, Variable: "counts", Archetype: TimeSeries})
	assert.True(t, f.Failed())
	assert.Contains(t, f.Err, ErrUnsupportedShape.Error())

	f = b.Build(Request{Path: filepath.Join(t.TempDir(), "gone.nc"), Variable: "sst"})
	assert.True(t, f.Failed())
}
