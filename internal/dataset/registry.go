package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Loader opens one dataset from disk.
type Loader func(path string) (*Dataset, error)

// Registry caches open datasets by path and tracks the current one.
type Registry struct {
	load   Loader
	logger *zap.SugaredLogger

	mu      sync.Mutex
	handles map[string]*Dataset
	order   []string
	current string
}

// NewRegistry returns a registry that opens files with Load.
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return NewRegistryWithLoader(Load, logger)
}

// NewRegistryWithLoader returns a registry using load to open files.
func NewRegistryWithLoader(load Loader, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{
		load:    load,
		logger:  logger,
		handles: map[string]*Dataset{},
	}
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Open returns the dataset for path and makes it current. An already open
// path is returned from the cache without touching the disk.
func (r *Registry) Open(path string) (*Dataset, error) {
	key := normalize(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ds, ok := r.handles[key]; ok {
		r.current = key
		return ds, nil
	}
	if _, err := os.Stat(key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warnw("open: file not found", "path", key)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, key, err)
	}
	ds, err := r.load(key)
	if err != nil {
		r.logger.Errorw("open: load failed", "path", key, "error", err)
		if errors.Is(err, ErrLoad) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, key, err)
	}
	ds.Path = key
	r.handles[key] = ds
	r.order = append(r.order, key)
	r.current = key
	r.logger.Infow("dataset opened", "path", key, "variables", len(ds.DataVars), "coordinates", len(ds.Coords))
	return ds, nil
}

// Close releases path, or the current dataset when path is empty. Closing a
// path that is not open does nothing.
func (r *Registry) Close(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.current
	if path != "" {
		key = normalize(path)
	}
	r.closeLocked(key)
}

func (r *Registry) closeLocked(key string) {
	ds, ok := r.handles[key]
	if !ok {
		return
	}
	ds.Close()
	delete(r.handles, key)
	for i, p := range r.order {
		if p == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.current == key {
		r.current = ""
	}
	r.logger.Infow("dataset closed", "path", key)
}

// CloseAll releases every open dataset.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range append([]string(nil), r.order...) {
		r.closeLocked(key)
	}
}

// Get returns the open dataset for path, or the current one when path is
// empty. It returns nil when nothing matches.
func (r *Registry) Get(path string) *Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.current
	if path != "" {
		key = normalize(path)
	}
	return r.handles[key]
}

// Current returns the current dataset or nil.
func (r *Registry) Current() *Dataset { return r.Get("") }

// CurrentPath returns the path of the current dataset, or "".
func (r *Registry) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// SetCurrent switches the current dataset to an already open path.
func (r *Registry) SetCurrent(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalize(path)
	if _, ok := r.handles[key]; !ok {
		return false
	}
	r.current = key
	return true
}

// Paths lists open datasets in the order they were opened.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// VariableInfo returns metadata for a coordinate or data variable. A miss is
// logged and reported through ok.
func (r *Registry) VariableInfo(path, name string) (Info, bool) {
	ds := r.Get(path)
	if ds == nil {
		r.logger.Warnw("variable info: dataset not open", "path", path, "variable", name)
		return Info{}, false
	}
	info, ok := ds.Info(name)
	if !ok {
		r.logger.Warnw("variable info: no such variable", "path", ds.Path, "variable", name)
	}
	return info, ok
}
