package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePrecedence(t *testing.T) {
	got := Merge(Options{"a": 1, "b": 1}, nil, Options{"b": 2, "c": 2}, Options{"c": 3})
	assert.Equal(t, Options{"a": 1, "b": 2, "c": 3}, got)
}

func TestWithoutKeepsOnlyDifferences(t *testing.T) {
	base := Options{PlotTitle: "", PlotColormap: "jet", PlotFontSize: 12}
	o := Options{PlotTitle: "Custom", PlotColormap: "jet", PlotFontSize: float64(12), "extra": "x"}
	got := o.Without(base)
	assert.Equal(t, Options{PlotTitle: "Custom", "extra": "x"}, got)
	assert.Equal(t, Merge(base, o).String(PlotTitle), Merge(base, got).String(PlotTitle))
	assert.Empty(t, base.Without(base))
}

func TestOptionsTypedGetters(t *testing.T) {
	o := Options{"f": float64(12), "s": "14", "b": true, "l": []any{"x", 1, "y"}}
	assert.Equal(t, 12, o.Int("f", 0))
	assert.Equal(t, 14.0, o.Float("s", 0))
	assert.Equal(t, 7, o.Int("missing", 7))
	assert.True(t, o.Bool("b", false))
	assert.Equal(t, []string{"x", "y"}, o.Strings("l"))
	assert.Equal(t, "12", o.String("f"))
	assert.Equal(t, "", o.String("missing"))
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"), nil)

	opts := s.PlotOptions(nil)
	assert.Equal(t, "jet", opts.String(PlotColormap))
	assert.Equal(t, "Light", opts.String(PlotTheme))
	assert.Equal(t, 12, opts.Int(PlotFontSize, 0))
	assert.Equal(t, 16, opts.Int(PlotTitleFontSize, 0))
	assert.Empty(t, s.ActiveOverlays())
	assert.Equal(t, "dark", s.AppSettings().String(KeyTheme))
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := Open(path, nil)
	assert.Equal(t, Document{}, s.Document())
	assert.Equal(t, "jet", s.PlotOptions(nil).String(PlotColormap))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s := Open(path, nil)

	require.NoError(t, s.SetPlotOption(PlotColormap, "viridis"))
	require.NoError(t, s.SetPlotOptions(Options{PlotFontSize: 18, PlotTitle: "SST"}))
	require.NoError(t, s.SetAppSetting(KeyTheme, "light"))
	require.NoError(t, s.SetActiveOverlays([]string{"coast.geojson"}))

	reloaded := Open(path, nil)
	opts := reloaded.PlotOptions(nil)
	assert.Equal(t, "viridis", opts.String(PlotColormap))
	assert.Equal(t, 18, opts.Int(PlotFontSize, 0))
	assert.Equal(t, "SST", opts.String(PlotTitle))
	// unset keys keep their defaults
	assert.Equal(t, "Light", opts.String(PlotTheme))
	assert.Equal(t, "Arial", opts.String(PlotFontFamily))

	assert.Equal(t, "light", reloaded.AppSettings().String(KeyTheme))
	assert.Equal(t, 1200, reloaded.AppSettings().Int(KeyWindowWidth, 0))
	assert.Equal(t, []string{"coast.geojson"}, reloaded.ActiveOverlays())
}

func TestPlotOptionsOverridesWin(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	require.NoError(t, s.SetPlotOption(PlotColormap, "heat"))

	opts := s.PlotOptions(Options{PlotColormap: "Greys"})
	assert.Equal(t, "Greys", opts.String(PlotColormap))
	assert.Equal(t, "heat", s.PlotOptions(nil).String(PlotColormap))
}

func TestSaveFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := Open(filepath.Join(blocker, "settings.json"), nil)
	err := s.SetAppSetting(KeyTheme, "light")
	assert.Error(t, err)
	// the in-memory value is still visible
	assert.Equal(t, "light", s.AppSettings().String(KeyTheme))
}

func TestAddRecentFileCapsAndDeduplicates(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	for i := 0; i < 12; i++ {
		require.NoError(t, s.AddRecentFile(fmt.Sprintf("/data/%02d.nc", i)))
	}
	require.NoError(t, s.AddRecentFile("/data/11.nc"))

	recent := s.RecentFiles()
	require.Len(t, recent, MaxRecentFiles)
	assert.Equal(t, "/data/02.nc", recent[0])
	assert.Equal(t, "/data/11.nc", recent[len(recent)-1])

	removed, err := s.RemoveRecentFile("/data/05.nc")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NotContains(t, s.RecentFiles(), "/data/05.nc")
	assert.Len(t, s.RecentFiles(), MaxRecentFiles-1)

	removed, err = s.RemoveRecentFile("/data/05.nc")
	require.NoError(t, err)
	assert.False(t, removed)
}
