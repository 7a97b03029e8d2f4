package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ncbrowse/internal/chart"
	"ncbrowse/internal/plotwin"
	"ncbrowse/internal/settings"
)

type pickerKind int

const (
	pickArchetype pickerKind = iota
	pickBookmark
	pickSettings
	pickColormap
)

// Values of settings rows that are not overlays.
const (
	settingAddOverlay = "+add"
	settingColormap   = "+cmap"
	settingTheme      = "+theme"
)

type choiceItem struct {
	title, desc string
	value       string
	recent      bool
}

func (c choiceItem) Title() string       { return c.title }
func (c choiceItem) Description() string { return c.desc }
func (c choiceItem) FilterValue() string { return c.title }

func (m *Model) openPicker(kind pickerKind, title string, items []list.Item) {
	m.pickerKind = kind
	m.picker.Title = title
	m.picker.SetItems(items)
	m.picker.Select(0)
	m.mode = modePicker
}

// openArchetypePicker offers the plot types for variable, or for the active
// pane when variable is empty.
func (m *Model) openArchetypePicker(variable string) {
	ds := m.app.Datasets.Current()
	inferred := chart.Unsupported
	target := variable
	if variable != "" {
		if ds == nil {
			m.status = "no file is open"
			return
		}
		v, ok := ds.Variable(variable)
		if !ok {
			m.status = "variable not found: " + variable
			return
		}
		inferred = chart.Infer(v.Dims)
	} else if w, ok := m.app.Plots.Active(); ok {
		variable = w.Variable
		if d := m.app.Datasets.Get(w.Path); d != nil {
			if v, ok := d.Variable(w.Variable); ok {
				inferred = chart.Infer(v.Dims)
			}
		}
	} else {
		m.setErr("plot", plotwin.ErrNoActiveWindow)
		return
	}
	auto := "auto"
	if inferred != chart.Unsupported {
		auto += " (" + inferred.String() + ")"
	}
	items := []list.Item{choiceItem{title: auto, desc: "infer from dimensions", value: ""}}
	for _, a := range chart.Archetypes() {
		items = append(items, choiceItem{title: a.String(), desc: archetypeHelp[a], value: a.String()})
	}
	m.pickerVar = target
	m.openPicker(pickArchetype, "Plot "+variable+" as", items)
}

var archetypeHelp = map[chart.Archetype]string{
	chart.TimeSeries: "values along time",
	chart.Profile:    "values against depth or pressure",
	chart.GeoMap:     "lat/lon map with overlays",
	chart.Heatmap:    "2-D colored grid",
	chart.Animated:   "grid stepped along time or depth",
	chart.Line:       "values along any single dimension",
}

func (m *Model) openBookmarks() {
	var items []list.Item
	for _, p := range m.app.Bookmarks.All() {
		items = append(items, choiceItem{title: filepath.Base(p), desc: p, value: p})
	}
	for _, p := range m.app.Settings.RecentFiles() {
		if m.app.Bookmarks.Contains(p) {
			continue
		}
		items = append(items, choiceItem{title: filepath.Base(p), desc: "recent: " + p, value: p, recent: true})
	}
	if len(items) == 0 {
		m.status = "no bookmarks or recent files"
		return
	}
	m.openPicker(pickBookmark, "Bookmarks and recent files", items)
}

func (m *Model) openSettings() {
	opts := m.app.Settings.PlotOptions(nil)
	items := []list.Item{
		choiceItem{title: "colormap: " + opts.String(settings.PlotColormap), desc: "default palette for grids", value: settingColormap},
		choiceItem{title: "theme: " + opts.String(settings.PlotTheme), desc: "Light or Dark plot template", value: settingTheme},
		choiceItem{title: "add overlay…", desc: m.app.Overlays.Dir(), value: settingAddOverlay},
	}
	active := map[string]bool{}
	for _, n := range m.app.Settings.ActiveOverlays() {
		active[n] = true
	}
	for _, n := range m.app.Overlays.List() {
		box := "[ ] "
		if active[n] {
			box = "[x] "
		}
		items = append(items, choiceItem{title: box + n, desc: "overlay: space toggles, d deletes", value: n})
	}
	prev, idx := m.pickerKind, m.picker.Index()
	m.openPicker(pickSettings, "Settings", items)
	if prev == pickSettings && idx < len(items) {
		m.picker.Select(idx)
	}
}

func (m *Model) openColormaps() {
	current := m.app.Settings.PlotOptions(nil).String(settings.PlotColormap)
	var items []list.Item
	sel := 0
	for i, n := range m.app.Colormaps.Names() {
		if n == current {
			sel = i
		}
		items = append(items, choiceItem{title: n, value: n})
	}
	m.openPicker(pickColormap, "Colormap", items)
	m.picker.Select(sel)
}

// pick acts on the selected picker row.
func (m *Model) pick(c choiceItem) {
	m.mode = modeNormal
	switch m.pickerKind {
	case pickArchetype:
		arch, err := chart.ParseArchetype(c.value)
		if err != nil {
			m.setErr("plot", err)
			return
		}
		if m.pickerVar == "" {
			w, err := m.app.Plots.SetActiveArchetype(arch)
			if err != nil {
				m.setErr("plot", err)
				return
			}
			m.status = w.Title + " as " + w.Archetype.String()
			m.showPane(w)
			return
		}
		m.requestPlot(m.pickerVar, arch)
	case pickBookmark:
		if c.recent {
			m.openRecent(c.value)
			break
		}
		m.openBookmark(c.value)
	case pickColormap:
		if err := m.app.SetDefaultPlotOptions(settings.Options{settings.PlotColormap: c.value}); err != nil {
			m.setErr("settings error", err)
			return
		}
		m.status = "colormap: " + c.value
		m.openSettings()
	case pickSettings:
		switch c.value {
		case settingColormap:
			m.openColormaps()
		case settingTheme:
			theme := "Dark"
			if strings.EqualFold(m.app.Settings.PlotOptions(nil).String(settings.PlotTheme), "dark") {
				theme = "Light"
			}
			if err := m.app.SetDefaultPlotOptions(settings.Options{settings.PlotTheme: theme}); err != nil {
				m.setErr("settings error", err)
			}
			m.openSettings()
		case settingAddOverlay:
			m.openBrowser(browseOverlay)
		default:
			m.toggleOverlay(c.value)
			m.openSettings()
		}
	}
}

func (m *Model) toggleOverlay(name string) {
	on := true
	for _, n := range m.app.Settings.ActiveOverlays() {
		if n == name {
			on = false
		}
	}
	if err := m.app.SetOverlayActive(name, on); err != nil {
		m.setErr("settings error", err)
		return
	}
	m.status = fmt.Sprintf("overlay %s: %v", name, on)
}

// pickerDelete removes the selected bookmark or overlay file.
func (m *Model) pickerDelete(c choiceItem) {
	switch m.pickerKind {
	case pickBookmark:
		if !m.app.Bookmarks.Contains(c.value) {
			return
		}
		if _, err := m.app.ToggleBookmark(c.value); err != nil {
			m.setErr("bookmark error", err)
			return
		}
		m.status = "bookmark removed: " + c.value
		m.openBookmarks()
	case pickSettings:
		if strings.HasPrefix(c.value, "+") {
			return
		}
		err := errors.Join(m.app.SetOverlayActive(c.value, false), m.app.Overlays.Remove(c.value))
		if err != nil {
			m.setErr("overlay error", err)
			return
		}
		m.status = "overlay deleted: " + c.value
		m.openSettings()
	}
}

// requestPlot opens or refreshes the pane for variable of the current file.
func (m *Model) requestPlot(variable string, arch chart.Archetype) {
	w, created, err := m.app.RequestPlot("", variable, arch, nil)
	if w.ID == "" {
		m.setErr("plot error", err)
		return
	}
	switch {
	case err != nil:
		m.setErr("plot error", err)
	case created:
		m.status = "plotted " + w.Title + " as " + w.Archetype.String()
	default:
		m.status = "refreshed " + w.Title
	}
	m.showPane(w)
}

// showPane brings the plot view forward and surfaces the first warning of w.
func (m *Model) showPane(w plotwin.Window) {
	m.view = viewPlot
	m.focus = focusMain
	if len(w.Figure.Warnings) > 0 {
		m.status += "  (" + w.Figure.Warnings[0] + ")"
	}
}

// optionsForm edits the plot options of the active pane.
type optionsForm struct {
	keys   []string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newOptionsForm() optionsForm {
	f := optionsForm{
		keys: []string{
			settings.PlotTitle, settings.PlotXLabel, settings.PlotYLabel, settings.PlotCbarLabel,
			settings.PlotColormap, settings.PlotTheme, settings.PlotFontSize, settings.PlotTitleFontSize,
		},
		labels: []string{"title", "x label", "y label", "colorbar label", "colormap", "theme", "font size", "title font size"},
	}
	for _, l := range f.labels {
		ti := textinput.New()
		ti.Prompt = padRight(l, 16) + "│ "
		ti.Placeholder = "auto"
		ti.CharLimit = 120
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// load fills the inputs from opts.
func (f *optionsForm) load(opts settings.Options) tea.Cmd {
	for i, k := range f.keys {
		f.inputs[i].SetValue(opts.String(k))
		f.inputs[i].Blur()
	}
	f.focus = 0
	return f.inputs[0].Focus()
}

func (f *optionsForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// values parses the inputs. Font sizes must be positive numbers.
func (f *optionsForm) values() (settings.Options, error) {
	out := settings.Options{}
	for i, k := range f.keys {
		v := strings.TrimSpace(f.inputs[i].Value())
		switch k {
		case settings.PlotFontSize, settings.PlotTitleFontSize:
			if v == "" {
				continue
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%s must be a positive number, got %q", f.labels[i], v)
			}
			out[k] = n
		default:
			out[k] = v
		}
	}
	return out, nil
}

func (f optionsForm) View() string {
	lines := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		lines[i] = in.View()
	}
	return strings.Join(lines, "\n")
}

func (m *Model) openOptions() tea.Cmd {
	w, ok := m.app.Plots.Active()
	if !ok {
		m.setErr("options", plotwin.ErrNoActiveWindow)
		return nil
	}
	m.mode = modeOptions
	m.status = "editing options of " + w.Title + ": enter applies, ctrl+d saves as defaults"
	return m.form.load(m.app.Settings.PlotOptions(w.Options))
}

// applyOptions sends the form to the active pane, or to the saved defaults.
func (m *Model) applyOptions(asDefault bool) {
	opts, err := m.form.values()
	if err != nil {
		m.setErr("options", err)
		return
	}
	m.mode = modeNormal
	if asDefault {
		if err := m.app.SetDefaultPlotOptions(opts); err != nil {
			m.setErr("settings error", err)
			return
		}
		m.status = "plot defaults saved"
		return
	}
	cur, ok := m.app.Plots.Active()
	if !ok {
		m.setErr("options", plotwin.ErrNoActiveWindow)
		return
	}
	// keep only what differs from the saved defaults so later default
	// changes still reach this pane
	overrides := settings.Merge(cur.Options, opts).Without(m.app.Settings.PlotOptions(nil))
	w, err := m.app.Plots.SetActiveOptions(overrides)
	if err != nil {
		m.setErr("options", err)
		return
	}
	m.status = "options applied to " + w.Title
	m.showPane(w)
}

func (m *Model) openExport() tea.Cmd {
	w, ok := m.app.Plots.Active()
	if !ok {
		m.setErr("export", plotwin.ErrNoActiveWindow)
		return nil
	}
	m.mode = modeExport
	m.export.SetValue(filepath.Join(m.cwd, w.Variable+".html"))
	m.export.CursorEnd()
	m.status = "export " + w.Title + " as html, png, jpg or svg"
	return m.export.Focus()
}

func (m *Model) runExport() {
	m.mode = modeNormal
	m.export.Blur()
	out := strings.TrimSpace(m.export.Value())
	if out == "" {
		m.status = "export: empty path"
		return
	}
	if err := m.app.Plots.ExportActive(out); err != nil {
		m.setErr("export error", err)
		return
	}
	m.status = "exported " + out
}
