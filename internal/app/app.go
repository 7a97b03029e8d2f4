// Package app wires the stores, registries and renderers together and exposes
// the operations behind the user interface and the command line.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"ncbrowse/internal/bookmarks"
	"ncbrowse/internal/chart"
	"ncbrowse/internal/colormap"
	"ncbrowse/internal/config"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/overlay"
	"ncbrowse/internal/plotwin"
	"ncbrowse/internal/settings"
)

// ErrBookmarkMissing is returned when a bookmarked file no longer exists. The
// bookmark is removed.
var ErrBookmarkMissing = errors.New("bookmarked file no longer exists")

// ErrRecentMissing is returned when a recently opened file no longer exists.
// It is dropped from the recent files.
var ErrRecentMissing = errors.New("recent file no longer exists")

// App represents the main application
type App struct {
	cfg    config.Config
	logger *zap.SugaredLogger

	Settings  *settings.Store
	Bookmarks *bookmarks.Store
	Datasets  *dataset.Registry
	Overlays  *overlay.Catalog
	Colormaps *colormap.Catalog
	Builder   *chart.Builder
	Plots     *plotwin.Registry
}

// New creates a new application instance
func New(cfg config.Config, logger *zap.SugaredLogger) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	bookmarksPath := cfg.BookmarksPath
	if bookmarksPath == "" {
		bookmarksPath = bookmarks.DefaultPath()
	}
	a := &App{
		cfg:       cfg,
		logger:    logger,
		Settings:  settings.Open(cfg.SettingsPath, logger),
		Bookmarks: bookmarks.Open(bookmarksPath, logger),
		Datasets:  dataset.NewRegistry(logger),
		Overlays:  overlay.NewCatalog(cfg.OverlayDir, logger),
		Colormaps: colormap.NewCatalog(cfg.ColormapDir, logger),
	}
	a.Builder = &chart.Builder{
		Datasets:  a.Datasets,
		Settings:  a.Settings,
		Overlays:  a.Overlays,
		Colormaps: a.Colormaps,
		MaxFrames: cfg.MaxFrames,
		Log:       logger,
	}
	a.Plots = plotwin.NewRegistry(a.Builder, logger)
	logger.Infow("application initialized",
		"settings", cfg.SettingsPath,
		"bookmarks", bookmarksPath,
		"overlays", cfg.OverlayDir,
		"colormaps", cfg.ColormapDir)
	return a
}

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config { return a.cfg }

// OpenFile opens path and makes it current. The dataset is returned even when
// remembering it in the recent-file list fails; that failure is the error.
func (a *App) OpenFile(path string) (*dataset.Dataset, error) {
	ds, err := a.Datasets.Open(path)
	if err != nil {
		a.logger.Errorw("opening dataset", "path", path, "error", err)
		return nil, err
	}
	err = errors.Join(
		a.Settings.AddRecentFile(ds.Path),
		a.Settings.SetAppSetting(settings.KeyLastDir, filepath.Dir(ds.Path)),
	)
	if err != nil {
		a.logger.Errorw("saving settings", "error", err)
	}
	return ds, err
}

// CloseFile closes path, or the current file when path is empty, along with
// its plot panes.
func (a *App) CloseFile(path string) {
	if path == "" {
		path = a.Datasets.CurrentPath()
	}
	if path == "" {
		return
	}
	if ds := a.Datasets.Get(path); ds != nil {
		path = ds.Path
	}
	n := a.Plots.CloseFile(path)
	a.Datasets.Close(path)
	a.logger.Infow("dataset closed", "path", path, "panes", n)
}

// RequestPlot opens or refreshes the pane for variable of path (the current
// file when empty). A zero archetype is inferred.
func (a *App) RequestPlot(path, variable string, arch chart.Archetype, override settings.Options) (plotwin.Window, bool, error) {
	ds := a.Datasets.Get(path)
	if ds == nil {
		if path == "" {
			return plotwin.Window{}, false, errors.New("no file is open")
		}
		var err error
		if ds, err = a.OpenFile(path); ds == nil {
			return plotwin.Window{}, false, err
		}
	}
	if _, ok := ds.Variable(variable); !ok {
		return plotwin.Window{}, false, fmt.Errorf("%w: %s", dataset.ErrMissingVariable, variable)
	}
	title := fmt.Sprintf("%s (%s)", variable, filepath.Base(ds.Path))
	w, created := a.Plots.OpenOrRefresh(plotwin.ID(ds.Path, variable), title, ds.Path, variable, arch, override)
	if w.Figure.Failed() {
		return w, created, errors.New(w.Figure.Err)
	}
	return w, created, nil
}

// OpenBookmark opens a bookmarked file. A missing file is dropped from the
// bookmarks and reported with ErrBookmarkMissing.
func (a *App) OpenBookmark(path string) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if _, rerr := a.Bookmarks.Remove(path); rerr != nil {
			a.logger.Errorw("pruning bookmark", "path", path, "error", rerr)
		}
		a.logger.Warnw("bookmark pruned", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrBookmarkMissing, path)
	}
	return a.OpenFile(path)
}

// OpenRecent opens a file from the recent list. A missing file is dropped
// from the list and reported with ErrRecentMissing.
func (a *App) OpenRecent(path string) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if _, rerr := a.Settings.RemoveRecentFile(path); rerr != nil {
			a.logger.Errorw("pruning recent file", "path", path, "error", rerr)
		}
		a.logger.Warnw("recent file pruned", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrRecentMissing, path)
	}
	return a.OpenFile(path)
}

// ToggleBookmark adds path to the bookmarks, or removes it when present. It
// reports whether the path is bookmarked afterwards.
func (a *App) ToggleBookmark(path string) (bool, error) {
	if path == "" {
		return false, errors.New("no file to bookmark")
	}
	if a.Bookmarks.Contains(path) {
		_, err := a.Bookmarks.Remove(path)
		return false, err
	}
	_, err := a.Bookmarks.Add(path)
	return err == nil, err
}

// AddOverlay copies src into the overlay directory and activates it.
func (a *App) AddOverlay(src string) (string, error) {
	name, err := a.Overlays.Add(src)
	if err != nil {
		a.logger.Errorw("adding overlay", "src", src, "error", err)
		return "", err
	}
	return name, a.SetOverlayActive(name, true)
}

// SetOverlayActive switches an overlay on or off for map plots and redraws
// open panes.
func (a *App) SetOverlayActive(name string, on bool) error {
	var next []string
	found := false
	for _, n := range a.Settings.ActiveOverlays() {
		if n == name {
			found = true
			if !on {
				continue
			}
		}
		next = append(next, n)
	}
	if on && !found {
		next = append(next, name)
	}
	if err := a.Settings.SetActiveOverlays(next); err != nil {
		return err
	}
	a.Plots.RefreshAll()
	return nil
}

// SetDefaultPlotOptions saves opts as plot defaults and redraws open panes.
func (a *App) SetDefaultPlotOptions(opts settings.Options) error {
	if err := a.Settings.SetPlotOptions(opts); err != nil {
		return err
	}
	a.Plots.RefreshAll()
	return nil
}

// Export renders variable of path headlessly and writes it to out. frame
// selects the slice for image formats.
func (a *App) Export(path, variable string, arch chart.Archetype, frame int, out string) (chart.Figure, error) {
	if _, err := chart.FormatOf(out); err != nil {
		return chart.Figure{}, err
	}
	if _, err := a.Datasets.Open(path); err != nil {
		return chart.Figure{}, err
	}
	f := a.Builder.Build(chart.Request{Path: path, Variable: variable, Archetype: arch})
	if f.Failed() {
		return f, errors.New(f.Err)
	}
	if n := f.FrameCount(); frame < 0 || (n > 0 && frame >= n) {
		return f, fmt.Errorf("frame %d out of range (0-%d)", frame, max(n-1, 0))
	}
	if err := f.SaveFile(out, frame); err != nil {
		return f, err
	}
	a.logger.Infow("exported", "path", path, "variable", variable, "out", out)
	return f, nil
}

// Shutdown records the window size, closes every pane and releases every
// dataset.
func (a *App) Shutdown(width, height int) error {
	var err error
	if width > 0 && height > 0 {
		err = errors.Join(
			a.Settings.SetAppSetting(settings.KeyWindowWidth, width),
			a.Settings.SetAppSetting(settings.KeyWindowHeight, height),
		)
	}
	a.Plots.CloseAll()
	a.Datasets.CloseAll()
	a.logger.Info("shutdown complete")
	return err
}
