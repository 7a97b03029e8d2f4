// Package tui is the terminal front end: a structure tree of the current
// dataset, an info pane, tabbed plot panes and the dialogs around them.
package tui

import (
	"os"

	"github.com/charmbracelet/bubbles/help"
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"ncbrowse/internal/app"
	"ncbrowse/internal/settings"
	"ncbrowse/internal/tree"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusMain
)

type mainView int

const (
	viewInfo mainView = iota
	viewPlot
)

// mode is the dialog currently capturing keys.
type mode int

const (
	modeNormal mode = iota
	modeBrowse
	modePicker
	modeOptions
	modeExport
)

const (
	headerHeight = 1
	footerHeight = 2
	minSidebar   = 24
)

type Model struct {
	app *app.App

	width  int
	height int

	status      string
	helpVisible bool
	focus       focusArea
	view        mainView
	mode        mode
	help        help.Model

	// Structure tree of the current dataset
	treePath  string
	nodes     []tree.Node
	collapsed map[string]bool
	cursor    int

	// Info pane
	info    viewport.Model
	infoVar string
	tbl     table.Model

	// File explorer
	cwd     string
	purpose browsePurpose
	l       list.Model

	// Choice dialogs
	picker     list.Model
	pickerKind pickerKind
	// pickerVar is the variable an archetype choice applies to; empty means
	// the active pane.
	pickerVar string

	form   optionsForm
	export textinput.Model
}

// New builds the UI around a and opens every path in files.
func New(a *app.App, files ...string) Model {
	m := Model{
		app:         a,
		helpVisible: false,
		status:      "ncbrowse ready: press o to open a file",
		collapsed:   map[string]bool{},
		help:        help.New(),
	}
	m.cwd = a.Settings.AppSettings().String(settings.KeyLastDir)
	if st, err := os.Stat(m.cwd); m.cwd == "" || err != nil || !st.IsDir() {
		m.cwd, _ = os.Getwd()
	}
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	m.l.KeyMap.Quit.SetEnabled(false)

	pd := list.NewDefaultDelegate()
	m.picker = list.New(nil, pd, 0, 0)
	m.picker.SetShowHelp(false)
	m.picker.SetShowStatusBar(false)
	m.picker.SetFilteringEnabled(false)
	m.picker.KeyMap.Quit.SetEnabled(false)

	m.info = viewport.New(0, 0)
	m.tbl = table.New(table.WithFocused(false))
	m.export = textinput.New()
	m.export.Prompt = "save as: "
	m.form = newOptionsForm()

	for _, f := range files {
		m.loadPath(f)
	}
	m.syncTree()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Size returns the last known terminal size.
func (m Model) Size() (int, int) { return m.width, m.height }

func (m Model) sidebarWidth() int {
	w := m.app.Settings.AppSettings().Int(settings.KeySidebarWidth, 32)
	return clamp(w, minSidebar, max(minSidebar, m.width/2))
}

func (m Model) contentHeight() int {
	return max(4, m.height-headerHeight-footerHeight)
}

func (m Model) mainWidth() int {
	return max(10, m.width-m.sidebarWidth()-1)
}

// setErr reports err in the status line.
func (m *Model) setErr(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
}
