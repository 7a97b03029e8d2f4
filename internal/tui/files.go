package tui

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"

	"ncbrowse/internal/app"
	"ncbrowse/internal/dataset"
	"ncbrowse/internal/geom"
)

// browsePurpose says what a file picked in the explorer is for.
type browsePurpose int

const (
	browseDataset browsePurpose = iota
	browseOverlay
)

var datasetExts = map[string]bool{".nc": true, ".nc4": true, ".cdf": true, ".netcdf": true}

// isDataset reports whether path has a NetCDF extension.
func isDataset(path string) bool {
	return datasetExts[strings.ToLower(filepath.Ext(path))]
}

type fileItem struct {
	title, desc string
	path        string
	isDir       bool
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) openBrowser(p browsePurpose) {
	m.purpose = p
	m.mode = modeBrowse
	m.l.Title = "Open dataset"
	if p == browseOverlay {
		m.l.Title = "Add overlay"
	}
	m.l.ResetFilter()
	m.refreshDir()
}

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	accept := isDataset
	if m.purpose == browseOverlay {
		accept = geom.Supported
	}
	var dirs, files []list.Item
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		p := filepath.Join(m.cwd, name)
		if e.IsDir() {
			dirs = append(dirs, fileItem{title: name + "/", path: p, isDir: true})
			continue
		}
		if !accept(name) {
			continue
		}
		desc := strings.ToLower(filepath.Ext(name))
		if fi, err := e.Info(); err == nil {
			desc = humanize.Bytes(uint64(fi.Size()))
		}
		files = append(files, fileItem{title: name, desc: desc, path: p})
	}
	byTitle := func(items []list.Item) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	}
	byTitle(dirs)
	byTitle(files)
	items := []list.Item{fileItem{title: "../", path: filepath.Dir(m.cwd), isDir: true}}
	items = append(items, dirs...)
	items = append(items, files...)
	m.l.SetItems(items)
	m.l.Select(0)
	if len(files) == 0 {
		m.status = "no supported files in " + m.cwd
	} else {
		m.status = m.cwd
	}
}

// choose acts on the selected explorer entry: directories are entered, files
// are opened or added as overlays.
func (m *Model) choose(it fileItem) {
	if it.isDir {
		m.cwd = it.path
		m.l.ResetFilter()
		m.refreshDir()
		return
	}
	m.mode = modeNormal
	switch m.purpose {
	case browseOverlay:
		name, err := m.app.AddOverlay(it.path)
		if err != nil {
			m.setErr("overlay error", err)
			return
		}
		m.status = "overlay added: " + name
	default:
		m.loadPath(it.path)
	}
}

// loadPath opens a dataset and shows its structure.
func (m *Model) loadPath(p string) {
	ds, err := m.app.OpenFile(p)
	m.opened(ds, err)
}

// openBookmark opens a bookmarked path, reporting pruned entries.
func (m *Model) openBookmark(p string) {
	ds, err := m.app.OpenBookmark(p)
	if errors.Is(err, app.ErrBookmarkMissing) {
		m.status = "bookmark removed, file no longer exists: " + p
		return
	}
	m.opened(ds, err)
}

func (m *Model) openRecent(p string) {
	ds, err := m.app.OpenRecent(p)
	if errors.Is(err, app.ErrRecentMissing) {
		m.status = "removed from recent files, file no longer exists: " + p
		return
	}
	m.opened(ds, err)
}

func (m *Model) opened(ds *dataset.Dataset, err error) {
	if ds == nil {
		m.setErr("load error", err)
		return
	}
	m.cwd = filepath.Dir(ds.Path)
	m.syncTree()
	m.view = viewInfo
	m.focus = focusTree
	m.showFileInfo()
	m.status = "loaded: " + filepath.Base(ds.Path) + "  " +
		humanize.Bytes(uint64(max(ds.Size, 0)))
	if err != nil {
		m.status += "  (settings not saved: " + err.Error() + ")"
	}
}
