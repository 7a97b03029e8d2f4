// Package plotwin tracks the open plot panes: at most one per (file,
// variable) pair, plus which pane is active.
package plotwin

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ncbrowse/internal/chart"
	"ncbrowse/internal/settings"
)

// ErrNoActiveWindow is returned by operations on the active pane when no
// pane is open.
var ErrNoActiveWindow = errors.New("no active plot window")

// Renderer builds figures for panes.
type Renderer interface {
	Build(req chart.Request) chart.Figure
}

// Window is one plot pane.
type Window struct {
	ID        string
	Title     string
	Path      string
	Variable  string
	Archetype chart.Archetype
	Options   settings.Options
	Figure    chart.Figure
	Frame     int
}

// ID returns the pane identifier for a variable of a file.
func ID(path, variable string) string {
	return path + "::" + variable
}

// Registry holds the panes in creation order.
type Registry struct {
	mu       sync.Mutex
	renderer Renderer
	logger   *zap.SugaredLogger

	windows map[string]*Window
	order   []string
	active  string
}

// NewRegistry returns an empty registry drawing with r.
func NewRegistry(r Renderer, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Registry{renderer: r, logger: logger, windows: map[string]*Window{}}
}

func (r *Registry) render(w *Window) {
	w.Figure = r.renderer.Build(chart.Request{
		Path:      w.Path,
		Variable:  w.Variable,
		Archetype: w.Archetype,
		Options:   w.Options,
	})
	if w.Archetype == chart.Unsupported && !w.Figure.Failed() {
		w.Archetype = w.Figure.Archetype
	}
	if n := w.Figure.FrameCount(); w.Frame >= n {
		w.Frame = max(n-1, 0)
	}
}

// OpenOrRefresh re-renders and focuses the pane for id if it exists, or
// creates it. created reports which happened.
func (r *Registry) OpenOrRefresh(id, title, path, variable string, arch chart.Archetype, opts settings.Options) (w Window, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	win, ok := r.windows[id]
	if !ok {
		win = &Window{ID: id}
		r.windows[id] = win
		r.order = append(r.order, id)
	}
	win.Title = title
	win.Path = path
	win.Variable = variable
	win.Archetype = arch
	win.Options = opts.Clone()
	r.render(win)
	r.active = id
	r.logger.Infow("plot window", "id", id, "created", !ok, "archetype", win.Archetype)
	return *win, !ok
}

// Close removes the pane. Closing the active pane leaves no pane active.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked(id)
}

func (r *Registry) closeLocked(id string) bool {
	if _, ok := r.windows[id]; !ok {
		return false
	}
	delete(r.windows, id)
	i := r.indexLocked(id)
	r.order = append(r.order[:i], r.order[i+1:]...)
	if r.active == id {
		r.active = ""
	}
	r.logger.Debugw("plot window closed", "id", id)
	return true
}

// CloseFile closes every pane showing path and returns how many were closed.
func (r *Registry) CloseFile(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range append([]string(nil), r.order...) {
		if r.windows[id].Path == path && r.closeLocked(id) {
			n++
		}
	}
	return n
}

// CloseAll removes every pane.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = map[string]*Window{}
	r.order = nil
	r.active = ""
}

func (r *Registry) indexLocked(id string) int {
	for i, o := range r.order {
		if o == id {
			return i
		}
	}
	return -1
}

// Len is the number of open panes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// List returns the panes in creation order.
func (r *Registry) List() []Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Window, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.windows[id])
	}
	return out
}

// Get returns the pane for id.
func (r *Registry) Get(id string) (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Active returns the active pane.
func (r *Registry) Active() (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[r.active]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Focus makes id the active pane.
func (r *Registry) Focus(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return false
	}
	r.active = id
	return true
}

// Next focuses the pane after the active one, wrapping around.
func (r *Registry) Next() (Window, bool) { return r.cycle(1) }

// Prev focuses the pane before the active one, wrapping around.
func (r *Registry) Prev() (Window, bool) { return r.cycle(-1) }

func (r *Registry) cycle(step int) (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.order)
	if n == 0 {
		return Window{}, false
	}
	i := r.indexLocked(r.active)
	if i < 0 {
		i = 0
	} else {
		i = ((i+step)%n + n) % n
	}
	r.active = r.order[i]
	return *r.windows[r.active], true
}

// withActive runs fn on the active pane under the lock.
func (r *Registry) withActive(fn func(w *Window) error) (Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[r.active]
	if !ok {
		return Window{}, ErrNoActiveWindow
	}
	if err := fn(w); err != nil {
		return *w, err
	}
	return *w, nil
}

// UpdateActiveOptions merges opts into the active pane's options and
// re-renders it.
func (r *Registry) UpdateActiveOptions(opts settings.Options) (Window, error) {
	return r.withActive(func(w *Window) error {
		w.Options = settings.Merge(w.Options, opts)
		r.render(w)
		return nil
	})
}

// SetActiveOptions replaces the per-pane overrides of the active pane and
// re-renders it. Keys left out fall back to the saved defaults.
func (r *Registry) SetActiveOptions(opts settings.Options) (Window, error) {
	return r.withActive(func(w *Window) error {
		w.Options = opts.Clone()
		r.render(w)
		return nil
	})
}

// SetActiveArchetype switches the chart type of the active pane.
func (r *Registry) SetActiveArchetype(a chart.Archetype) (Window, error) {
	return r.withActive(func(w *Window) error {
		w.Archetype = a
		r.render(w)
		return nil
	})
}

// RefreshActive re-renders the active pane.
func (r *Registry) RefreshActive() (Window, error) {
	return r.withActive(func(w *Window) error {
		r.render(w)
		return nil
	})
}

// RefreshAll re-renders every pane, e.g. after saved options change.
func (r *Registry) RefreshAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		r.render(r.windows[id])
	}
}

// StepFrame moves the active pane's animation frame by delta, clamped to the
// available frames.
func (r *Registry) StepFrame(delta int) (Window, error) {
	return r.withActive(func(w *Window) error {
		n := w.Figure.FrameCount()
		if n <= 1 {
			return nil
		}
		w.Frame = min(max(w.Frame+delta, 0), n-1)
		return nil
	})
}

// ExportActive saves the active pane to path; the format follows the
// extension.
func (r *Registry) ExportActive(path string) error {
	_, err := r.withActive(func(w *Window) error {
		if err := w.Figure.SaveFile(path, w.Frame); err != nil {
			return fmt.Errorf("exporting %s: %w", w.Variable, err)
		}
		r.logger.Infow("plot exported", "id", w.ID, "path", path)
		return nil
	})
	return err
}
