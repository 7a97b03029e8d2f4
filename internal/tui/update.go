package tui

import (
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"ncbrowse/internal/plotwin"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modePicker:
			return m.updatePicker(msg)
		case modeOptions:
			return m.updateOptions(msg)
		case modeExport:
			return m.updateExport(msg)
		}
		return m.updateNormal(msg)
	}
	// cursor blinks and list filter results
	var cmd tea.Cmd
	switch m.mode {
	case modeBrowse:
		m.l, cmd = m.l.Update(msg)
	case modeOptions:
		in := &m.form.inputs[m.form.focus]
		*in, cmd = in.Update(msg)
	case modeExport:
		m.export, cmd = m.export.Update(msg)
	}
	return m, cmd
}

func (m *Model) dialogSize() (int, int) {
	return min(72, m.mainWidth()), m.contentHeight()
}

func (m *Model) resize() {
	dw, dh := m.dialogSize()
	m.l.SetSize(dw-4, dh-2)
	m.picker.SetSize(dw-4, dh-2)
	m.export.Width = dw - 4 - len(m.export.Prompt)
	for i := range m.form.inputs {
		m.form.inputs[i].Width = dw - 24
	}
	m.info.Width = m.mainWidth() - 4
	m.info.Height = m.contentHeight() - 2
	m.help.Width = m.width
	if m.infoVar != "" {
		m.showVarInfo(m.infoVar)
	} else {
		m.showFileInfo()
	}
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.helpVisible = !m.helpVisible
	case key.Matches(msg, keys.Open):
		m.openBrowser(browseDataset)
	case key.Matches(msg, keys.CloseFile):
		m.closeFile()
	case key.Matches(msg, keys.NextFile):
		m.nextFile()
	case key.Matches(msg, keys.Focus):
		if m.focus == focusTree {
			m.focus = focusMain
		} else {
			m.focus = focusTree
		}
	case key.Matches(msg, keys.Select):
		if m.focus == focusTree {
			m.activate()
		}
	case key.Matches(msg, keys.Plot):
		if m.focus == focusMain && m.view == viewPlot {
			m.openArchetypePicker("")
			break
		}
		n, ok := m.selected()
		if !ok || !n.Plottable() {
			m.status = "select a variable to plot"
			break
		}
		m.openArchetypePicker(n.Variable)
	case key.Matches(msg, keys.PrevPane):
		m.cyclePane(m.app.Plots.Prev)
	case key.Matches(msg, keys.NextPane):
		m.cyclePane(m.app.Plots.Next)
	case key.Matches(msg, keys.ClosePane):
		w, ok := m.app.Plots.Active()
		if !ok {
			m.setErr("close", plotwin.ErrNoActiveWindow)
			break
		}
		pos := 0
		for i, p := range m.app.Plots.List() {
			if p.ID == w.ID {
				pos = i
			}
		}
		m.app.Plots.Close(w.ID)
		m.status = "closed " + w.Title
		// the registry leaves nothing active; show the tab that took its place
		if rest := m.app.Plots.List(); len(rest) > 0 {
			m.app.Plots.Focus(rest[min(pos, len(rest)-1)].ID)
		} else {
			m.view = viewInfo
		}
	case key.Matches(msg, keys.CloseAll):
		n := m.app.Plots.Len()
		m.app.Plots.CloseAll()
		m.view = viewInfo
		m.status = "closed all panes (" + strconv.Itoa(n) + ")"
	case key.Matches(msg, keys.PrevFrame):
		m.stepFrame(-1)
	case key.Matches(msg, keys.NextFrame):
		m.stepFrame(1)
	case key.Matches(msg, keys.Refresh):
		w, err := m.app.Plots.RefreshActive()
		if err != nil {
			m.setErr("refresh", err)
			break
		}
		m.status = "refreshed " + w.Title
		m.showPane(w)
	case key.Matches(msg, keys.Options):
		return m, m.openOptions()
	case key.Matches(msg, keys.Settings):
		m.openSettings()
	case key.Matches(msg, keys.Bookmark):
		path := m.app.Datasets.CurrentPath()
		on, err := m.app.ToggleBookmark(path)
		switch {
		case err != nil:
			m.setErr("bookmark error", err)
		case on:
			m.status = "bookmarked " + filepath.Base(path)
		default:
			m.status = "bookmark removed: " + filepath.Base(path)
		}
	case key.Matches(msg, keys.Bookmarks):
		m.openBookmarks()
	case key.Matches(msg, keys.Export):
		return m, m.openExport()
	case m.focus == focusTree && key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case m.focus == focusTree && key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case m.focus == focusTree && msg.String() == "pgup":
		m.moveCursor(-(m.contentHeight() - 2))
	case m.focus == focusTree && msg.String() == "pgdown":
		m.moveCursor(m.contentHeight() - 2)
	case m.focus == focusMain && m.view == viewPlot && msg.String() == "left":
		m.stepFrame(-1)
	case m.focus == focusMain && m.view == viewPlot && msg.String() == "right":
		m.stepFrame(1)
	case m.focus == focusMain && m.view == viewInfo:
		var cmd tea.Cmd
		m.info, cmd = m.info.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) cyclePane(step func() (plotwin.Window, bool)) {
	w, ok := step()
	if !ok {
		m.setErr("panes", plotwin.ErrNoActiveWindow)
		return
	}
	m.status = w.Title
	m.showPane(w)
}

func (m *Model) stepFrame(delta int) {
	w, err := m.app.Plots.StepFrame(delta)
	if err != nil {
		m.setErr("frame", err)
		return
	}
	if n := w.Figure.FrameCount(); n > 1 {
		m.status = w.Title + ": frame " + strconv.Itoa(w.Frame+1) + "/" + strconv.Itoa(n) + " " + w.Figure.FrameLabel(w.Frame)
	} else {
		m.status = w.Title + " has a single frame"
	}
	m.view = viewPlot
}

// closeFile closes the current dataset and falls back to the most recently
// opened one still open.
func (m *Model) closeFile() {
	path := m.app.Datasets.CurrentPath()
	if path == "" {
		m.status = "no file is open"
		return
	}
	m.app.CloseFile(path)
	if paths := m.app.Datasets.Paths(); len(paths) > 0 {
		m.app.Datasets.SetCurrent(paths[len(paths)-1])
	}
	m.syncTree()
	m.showFileInfo()
	if rest := m.app.Plots.List(); len(rest) == 0 {
		m.view = viewInfo
	} else if _, ok := m.app.Plots.Active(); !ok {
		m.app.Plots.Focus(rest[len(rest)-1].ID)
	}
	m.status = "closed " + filepath.Base(path)
}

func (m *Model) nextFile() {
	paths := m.app.Datasets.Paths()
	if len(paths) < 2 {
		m.status = "no other file is open"
		return
	}
	cur := m.app.Datasets.CurrentPath()
	next := paths[0]
	for i, p := range paths {
		if p == cur {
			next = paths[(i+1)%len(paths)]
		}
	}
	m.app.Datasets.SetCurrent(next)
	m.syncTree()
	m.showFileInfo()
	m.view = viewInfo
	m.status = filepath.Base(next)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// If list is filtering, send keys to list and ignore dialog commands
	if m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "esc":
		if m.l.FilterState() == list.FilterApplied {
			m.l.ResetFilter()
			return m, nil
		}
		m.mode = modeNormal
		m.status = "browse cancelled"
		return m, nil
	case "enter":
		if it, ok := m.l.SelectedItem().(fileItem); ok {
			m.choose(it)
		}
		return m, nil
	case "backspace", "left":
		m.cwd = filepath.Dir(m.cwd)
		m.refreshDir()
		return m, nil
	}
	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c, _ := m.picker.SelectedItem().(choiceItem)
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = modeNormal
		if m.pickerKind == pickColormap {
			m.openSettings()
		}
		return m, nil
	case key.Matches(msg, keys.Select):
		m.pick(c)
		return m, nil
	case key.Matches(msg, keys.Toggle) && m.pickerKind == pickSettings:
		m.pick(c)
		return m, nil
	case key.Matches(msg, keys.Delete):
		m.pickerDelete(c)
		return m, nil
	case msg.String() == "q":
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.SaveAsBase) {
		m.applyOptions(true)
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.status = "options unchanged"
		return m, nil
	case "enter":
		m.applyOptions(false)
		return m, nil
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	}
	var cmd tea.Cmd
	in := &m.form.inputs[m.form.focus]
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m Model) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.export.Blur()
		m.status = "export cancelled"
		return m, nil
	case "enter":
		m.runExport()
		return m, nil
	}
	var cmd tea.Cmd
	m.export, cmd = m.export.Update(msg)
	return m, cmd
}
