// Package bookmarks keeps an ordered list of favorite dataset paths in a JSON
// array stored in the per-user data directory.
package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
)

const fileName = "ncbrowse/bookmarks.json"

// DefaultPath returns the bookmarks file in the XDG data directory, or
// ~/.ncbrowse/bookmarks.json when that directory cannot be used.
func DefaultPath() string {
	if p, err := xdg.DataFile(fileName); err == nil {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ncbrowse", "bookmarks.json")
	}
	return filepath.Join(home, ".ncbrowse", "bookmarks.json")
}

// Store is the bookmark list backed by one JSON file. Mutations save
// immediately.
type Store struct {
	path   string
	logger *zap.SugaredLogger

	mu    sync.Mutex
	paths []string
}

// Open loads the bookmarks at path; an empty path uses DefaultPath. Any load
// failure leaves the list empty.
func Open(path string, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if path == "" {
		path = DefaultPath()
	}
	s := &Store{path: path, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	s.paths = nil
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.logger.Errorw("loading bookmarks", "path", s.path, "error", err)
		return
	}
	var paths []string
	if err := json.Unmarshal(b, &paths); err != nil {
		s.logger.Errorw("could not decode bookmarks file, starting empty", "path", s.path, "error", err)
		return
	}
	s.paths = paths
	s.logger.Infow("bookmarks loaded", "path", s.path, "count", len(paths))
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Errorw("saving bookmarks", "path", s.path, "error", err)
		return fmt.Errorf("saving bookmarks: %w", err)
	}
	b, err := json.MarshalIndent(s.paths, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bookmarks: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		s.logger.Errorw("saving bookmarks", "path", s.path, "error", err)
		return fmt.Errorf("saving bookmarks: %w", err)
	}
	return nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// All returns a copy of the bookmarked paths in insertion order.
func (s *Store) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Contains reports whether path is bookmarked.
func (s *Store) Contains(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(path) >= 0
}

func (s *Store) indexLocked(path string) int {
	for i, p := range s.paths {
		if p == path {
			return i
		}
	}
	return -1
}

// Add appends path. It reports false without saving when path is empty or
// already present.
func (s *Store) Add(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" || s.indexLocked(path) >= 0 {
		return false, nil
	}
	s.paths = append(s.paths, path)
	s.logger.Infow("bookmark added", "path", path)
	return true, s.save()
}

// Remove deletes path. Removing an unknown path is a no-op.
func (s *Store) Remove(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(path)
	if i < 0 {
		return false, nil
	}
	s.paths = append(s.paths[:i], s.paths[i+1:]...)
	s.logger.Infow("bookmark removed", "path", path)
	return true, s.save()
}
