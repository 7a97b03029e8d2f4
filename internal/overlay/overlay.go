// Package overlay manages the directory of vector overlay files drawn on map
// plots.
package overlay

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"ncbrowse/internal/geom"
)

type cached struct {
	mod  time.Time
	data geom.Data
}

// Catalog lists and loads overlays from one directory.
type Catalog struct {
	dir    string
	logger *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]cached
}

// NewCatalog returns a catalog over dir. The directory is created on first
// Add.
func NewCatalog(dir string, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Catalog{dir: dir, logger: logger, cache: map[string]cached{}}
}

// Dir returns the overlay directory.
func (c *Catalog) Dir() string { return c.dir }

// List returns the names of supported overlay files, sorted. A missing
// directory yields an empty list.
func (c *Catalog) List() []string {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warnw("listing overlays", "dir", c.dir, "error", err)
		}
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !geom.Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Load reads the named overlay, reusing the parsed geometry while the file is
// unchanged.
func (c *Catalog) Load(name string) (geom.Data, error) {
	path := filepath.Join(c.dir, filepath.Base(name))
	fi, err := os.Stat(path)
	if err != nil {
		return geom.Data{}, fmt.Errorf("overlay %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.cache[name]; ok && hit.mod.Equal(fi.ModTime()) {
		return hit.data, nil
	}
	d, err := geom.Load(path)
	if err != nil {
		return geom.Data{}, fmt.Errorf("overlay %s: %w", name, err)
	}
	c.cache[name] = cached{mod: fi.ModTime(), data: d}
	c.logger.Debugw("overlay loaded", "name", name, "points", len(d.Points), "lines", len(d.Lines), "polygons", len(d.Polygons))
	return d, nil
}

// LoadAll loads the named overlays, skipping and logging any that fail. The
// names of the failed overlays are returned alongside.
func (c *Catalog) LoadAll(names []string) ([]geom.Data, []string) {
	var out []geom.Data
	var failed []string
	for _, n := range names {
		d, err := c.Load(n)
		if err != nil {
			c.logger.Warnw("skipping overlay", "name", n, "error", err)
			failed = append(failed, n)
			continue
		}
		out = append(out, d)
	}
	return out, failed
}

// Add copies src into the overlay directory and returns its name. The file
// must parse as an overlay.
func (c *Catalog) Add(src string) (string, error) {
	if !geom.Supported(src) {
		return "", fmt.Errorf("unsupported overlay file: %s", filepath.Base(src))
	}
	if _, err := geom.Load(src); err != nil {
		return "", fmt.Errorf("overlay %s: %w", filepath.Base(src), err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating overlay directory: %w", err)
	}
	name := filepath.Base(src)
	dst := filepath.Join(c.dir, name)
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	c.logger.Infow("overlay added", "name", name, "dir", c.dir)
	return name, nil
}

// Remove deletes the named overlay file.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	delete(c.cache, name)
	c.mu.Unlock()
	if err := os.Remove(filepath.Join(c.dir, filepath.Base(name))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing overlay %s: %w", name, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying overlay: %w", err)
	}
	return out.Close()
}
