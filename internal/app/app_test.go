package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncbrowse/internal/chart"
	"ncbrowse/internal/config"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/dataset/datasettest"
	"ncbrowse/internal/settings"
)

func newApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	a := New(config.Config{
		SettingsPath:  filepath.Join(dir, "cfg", "settings.json"),
		BookmarksPath: filepath.Join(dir, "data", "bookmarks.json"),
		OverlayDir:    filepath.Join(dir, "overlays"),
		ColormapDir:   filepath.Join(dir, "colormaps"),
		MaxFrames:     50,
	}, nil)
	t.Cleanup(func() { a.Shutdown(0, 0) })
	return a, datasettest.Ocean(t, t.TempDir())
}

func TestOpenFileRemembersRecentAndLastDir(t *testing.T) {
	a, path := newApp(t)
	ds, err := a.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, ds, a.Datasets.Current())
	assert.Equal(t, []string{ds.Path}, a.Settings.RecentFiles())
	assert.Equal(t, filepath.Dir(ds.Path), a.Settings.AppSettings().String(settings.KeyLastDir))

	_, err = a.OpenFile(filepath.Join(t.TempDir(), "missing.nc"))
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestRequestPlotReusesPane(t *testing.T) {
	a, path := newApp(t)
	_, err := a.OpenFile(path)
	require.NoError(t, err)

	w, created, err := a.RequestPlot("", "sst", chart.Unsupported, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, chart.GeoMap, w.Archetype)
	assert.Equal(t, "sst (ocean.nc)", w.Title)

	w, created, err = a.RequestPlot(path, "sst", chart.Heatmap, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chart.Heatmap, w.Archetype)
	assert.Equal(t, 1, a.Plots.Len())

	_, _, err = a.RequestPlot("", "nope", chart.Unsupported, nil)
	assert.ErrorIs(t, err, dataset.ErrMissingVariable)

	_, _, err = a.RequestPlot("", "counts", chart.TimeSeries, nil)
	assert.ErrorContains(t, err, chart.ErrUnsupportedShape.Error())
	assert.Equal(t, 2, a.Plots.Len())
}

func TestRequestPlotWithoutFile(t *testing.T) {
	a, _ := newApp(t)
	_, _, err := a.RequestPlot("", "sst", chart.Unsupported, nil)
	assert.Error(t, err)
}

func TestCloseFileClosesPanes(t *testing.T) {
	a, path := newApp(t)
	_, err := a.OpenFile(path)
	require.NoError(t, err)
	_, _, err = a.RequestPlot("", "series", chart.Unsupported, nil)
	require.NoError(t, err)

	a.CloseFile("")
	assert.Nil(t, a.Datasets.Current())
	assert.Zero(t, a.Plots.Len())
	a.CloseFile("")
}

func TestOpenRecentPrunesMissing(t *testing.T) {
	a, path := newApp(t)
	gone := filepath.Join(t.TempDir(), "gone.nc")
	require.NoError(t, a.Settings.AddRecentFile(gone))

	_, err := a.OpenRecent(gone)
	assert.ErrorIs(t, err, ErrRecentMissing)
	assert.Empty(t, a.Settings.RecentFiles())

	ds, err := a.OpenRecent(path)
	require.NoError(t, err)
	assert.Equal(t, []string{ds.Path}, a.Settings.RecentFiles())
}

func TestOpenBookmarkPrunesMissing(t *testing.T) {
	a, path := newApp(t)
	gone := filepath.Join(t.TempDir(), "gone.nc")

	on, err := a.ToggleBookmark(gone)
	require.NoError(t, err)
	assert.True(t, on)
	_, err = a.ToggleBookmark(path)
	require.NoError(t, err)

	_, err = a.OpenBookmark(gone)
	assert.ErrorIs(t, err, ErrBookmarkMissing)
	assert.Equal(t, []string{path}, a.Bookmarks.All())

	ds, err := a.OpenBookmark(path)
	require.NoError(t, err)
	assert.NotNil(t, ds)

	on, err = a.ToggleBookmark(path)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, a.Bookmarks.All())

	_, err = a.ToggleBookmark("")
	assert.Error(t, err)
}

func TestOverlays(t *testing.T) {
	a, path := newApp(t)
	src := filepath.Join(t.TempDir(), "coast.wkt")
	require.NoError(t, os.WriteFile(src, []byte("LINESTRING (120 30, 122 31)"), 0o644))

	_, err := a.OpenFile(path)
	require.NoError(t, err)
	_, _, err = a.RequestPlot("", "sst", chart.Unsupported, nil)
	require.NoError(t, err)

	name, err := a.AddOverlay(src)
	require.NoError(t, err)
	assert.Equal(t, "coast.wkt", name)
	assert.Equal(t, []string{"coast.wkt"}, a.Settings.ActiveOverlays())
	assert.FileExists(t, filepath.Join(a.Config().OverlayDir, "coast.wkt"))

	w, ok := a.Plots.Active()
	require.True(t, ok)
	assert.Len(t, w.Figure.Overlays, 1)

	require.NoError(t, a.SetOverlayActive(name, false))
	assert.Empty(t, a.Settings.ActiveOverlays())
	w, _ = a.Plots.Active()
	assert.Empty(t, w.Figure.Overlays)
}

func TestSetDefaultPlotOptionsRedraws(t *testing.T) {
	a, path := newApp(t)
	_, err := a.OpenFile(path)
	require.NoError(t, err)
	_, _, err = a.RequestPlot("", "series", chart.Unsupported, nil)
	require.NoError(t, err)

	require.NoError(t, a.SetDefaultPlotOptions(settings.Options{settings.PlotTitle: "Sea level"}))
	w, _ := a.Plots.Active()
	assert.Equal(t, "Sea level", w.Figure.Title)
}

func TestExport(t *testing.T) {
	a, path := newApp(t)
	out := filepath.Join(t.TempDir(), "temp.png")

	f, err := a.Export(path, "temp", chart.Unsupported, 2, out)
	require.NoError(t, err)
	assert.Equal(t, chart.Animated, f.Archetype)
	assert.FileExists(t, out)

	_, err = a.Export(path, "temp", chart.Unsupported, 9, out)
	assert.Error(t, err)
	_, err = a.Export(path, "temp", chart.Unsupported, 0, "x.pdf")
	assert.Error(t, err)
	_, err = a.Export(path, "nope", chart.Unsupported, 0, out)
	assert.Error(t, err)
}

func TestShutdownPersistsGeometry(t *testing.T) {
	a, path := newApp(t)
	_, err := a.OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, a.Shutdown(1400, 900))
	assert.Empty(t, a.Datasets.Paths())

	reopened := settings.Open(a.Settings.Path(), nil)
	app := reopened.AppSettings()
	assert.Equal(t, 1400, app.Int(settings.KeyWindowWidth, 0))
	assert.Equal(t, 900, app.Int(settings.KeyWindowHeight, 0))
}
