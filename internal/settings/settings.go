// Package settings persists user preferences in a single JSON document with
// three sections: application settings, default plot options and the list of
// active map overlays. Reads always merge saved values over built-in defaults.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Keys of the application settings section.
const (
	KeyTheme         = "theme"
	KeyLastDir       = "last_opened_directory"
	KeyWindowWidth   = "window_width"
	KeyWindowHeight  = "window_height"
	KeyRecentFiles   = "recent_files"
	KeySidebarWidth  = "sidebar_width"
	KeyShowInfoPanel = "show_info_panel"
)

// Keys of the plot options section.
const (
	PlotTitle           = "title_text"
	PlotXLabel          = "xaxis_label"
	PlotYLabel          = "yaxis_label"
	PlotCbarLabel       = "cbar_label"
	PlotColormap        = "cmap"
	PlotTheme           = "theme"
	PlotFontFamily      = "plot_font_family"
	PlotFontSize        = "plot_font_size"
	PlotTitleFontSize   = "title_font_size"
	PlotTitleFontFamily = "title_font_family"
)

// MaxRecentFiles is how many recently opened paths are remembered.
const MaxRecentFiles = 10

// AppDefaults returns the built-in application settings.
func AppDefaults() Options {
	home, _ := os.UserHomeDir()
	return Options{
		KeyTheme:         "dark",
		KeyLastDir:       home,
		KeyWindowWidth:   1200,
		KeyWindowHeight:  800,
		KeyRecentFiles:   []string{},
		KeySidebarWidth:  32,
		KeyShowInfoPanel: true,
	}
}

// PlotDefaults returns the built-in plot style options. Empty labels are
// filled in from the plotted variable when the chart is built.
func PlotDefaults() Options {
	return Options{
		PlotTitle:           "",
		PlotXLabel:          "",
		PlotYLabel:          "",
		PlotCbarLabel:       "",
		PlotColormap:        "jet",
		PlotTheme:           "Light",
		PlotFontFamily:      "Arial",
		PlotFontSize:        12,
		PlotTitleFontFamily: "Arial",
		PlotTitleFontSize:   16,
	}
}

// Document is the on-disk layout of the settings file.
type Document struct {
	AppSettings    Options  `json:"app_settings,omitempty"`
	PlotOptions    Options  `json:"plot_options,omitempty"`
	ActiveOverlays []string `json:"active_overlays,omitempty"`
}

// Store is a read-modify-write view over one settings file. Every mutation
// is written through immediately.
type Store struct {
	path   string
	logger *zap.SugaredLogger

	mu  sync.Mutex
	doc Document
}

// Open loads the settings file at path. A missing or unreadable file yields an
// empty document.
func Open(path string, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Store{path: path, logger: logger}
	s.Load()
	return s
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Load re-reads the file, resetting to an empty document on any failure.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = Document{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Infow("settings file not found, using defaults", "path", s.path)
		return
	}
	if err != nil {
		s.logger.Errorw("reading settings file", "path", s.path, "error", err)
		return
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		s.logger.Errorw("settings file is not valid JSON, using defaults", "path", s.path, "error", err)
		return
	}
	s.doc = doc
	s.logger.Infow("settings loaded", "path", s.path)
}

func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Errorw("saving settings", "path", s.path, "error", err)
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		s.logger.Errorw("saving settings", "path", s.path, "error", err)
		return fmt.Errorf("saving settings: %w", err)
	}
	s.logger.Debugw("settings saved", "path", s.path)
	return nil
}

// Save writes the current document to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// Document returns a copy of the persisted values without defaults.
func (s *Store) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Document{
		AppSettings:    s.doc.AppSettings.Clone(),
		PlotOptions:    s.doc.PlotOptions.Clone(),
		ActiveOverlays: append([]string(nil), s.doc.ActiveOverlays...),
	}
}

// AppSettings returns the saved application settings merged over defaults.
func (s *Store) AppSettings() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Merge(AppDefaults(), s.doc.AppSettings)
}

// SetAppSetting stores one application setting and saves.
func (s *Store) SetAppSetting(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.AppSettings == nil {
		s.doc.AppSettings = Options{}
	}
	s.doc.AppSettings[key] = value
	return s.saveLocked()
}

// PlotOptions resolves built-in defaults, then saved defaults, then the
// per-plot overrides.
func (s *Store) PlotOptions(overrides Options) Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Merge(PlotDefaults(), s.doc.PlotOptions, overrides)
}

// SetPlotOption stores one default plot option and saves.
func (s *Store) SetPlotOption(key string, value any) error {
	return s.SetPlotOptions(Options{key: value})
}

// SetPlotOptions stores several default plot options with a single save.
func (s *Store) SetPlotOptions(opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.PlotOptions == nil {
		s.doc.PlotOptions = Options{}
	}
	for k, v := range opts {
		s.doc.PlotOptions[k] = v
	}
	return s.saveLocked()
}

// ActiveOverlays returns the names of the overlays drawn on map plots.
func (s *Store) ActiveOverlays() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.doc.ActiveOverlays...)
}

// SetActiveOverlays replaces the active overlay list and saves.
func (s *Store) SetActiveOverlays(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.ActiveOverlays = append([]string(nil), names...)
	return s.saveLocked()
}

// RecentFiles returns recently opened paths, oldest first.
func (s *Store) RecentFiles() []string {
	return s.AppSettings().Strings(KeyRecentFiles)
}

// AddRecentFile remembers path, keeping only the last MaxRecentFiles entries.
// A path already in the list is left where it is.
func (s *Store) AddRecentFile(path string) error {
	recent := s.RecentFiles()
	for _, p := range recent {
		if p == path {
			return nil
		}
	}
	recent = append(recent, path)
	if len(recent) > MaxRecentFiles {
		recent = recent[len(recent)-MaxRecentFiles:]
	}
	return s.SetAppSetting(KeyRecentFiles, recent)
}

// RemoveRecentFile forgets path. It reports whether path was in the list.
func (s *Store) RemoveRecentFile(path string) (bool, error) {
	recent := s.RecentFiles()
	kept := recent[:0]
	for _, p := range recent {
		if p != path {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(recent) {
		return false, nil
	}
	return true, s.SetAppSetting(KeyRecentFiles, kept)
}
