package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open       key.Binding
	Select     key.Binding
	Plot       key.Binding
	CloseFile  key.Binding
	NextFile   key.Binding
	Focus      key.Binding
	PrevPane   key.Binding
	NextPane   key.Binding
	ClosePane  key.Binding
	CloseAll   key.Binding
	PrevFrame  key.Binding
	NextFrame  key.Binding
	Refresh    key.Binding
	Options    key.Binding
	Settings   key.Binding
	Bookmark   key.Binding
	Bookmarks  key.Binding
	Export     key.Binding
	Up         key.Binding
	Down       key.Binding
	Help       key.Binding
	Quit       key.Binding
	Back       key.Binding
	Delete     key.Binding
	Toggle     key.Binding
	SaveAsBase key.Binding
}

var keys = keyMap{
	Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "info/expand")),
	Plot:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "plot as…")),
	CloseFile:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "close file")),
	NextFile:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "next file")),
	Focus:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	PrevPane:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev pane")),
	NextPane:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next pane")),
	ClosePane:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close pane")),
	CloseAll:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "close all panes")),
	PrevFrame:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "prev frame")),
	NextFrame:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "next frame")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Options:    key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "plot options")),
	Settings:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "settings")),
	Bookmark:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
	Bookmarks:  key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "bookmarks")),
	Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Help:       key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	SaveAsBase: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "save as defaults")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Select, k.Plot, k.Focus, k.PrevFrame, k.NextFrame, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.CloseFile, k.NextFile, k.Bookmark, k.Bookmarks},
		{k.Select, k.Plot, k.Up, k.Down, k.Focus},
		{k.PrevPane, k.NextPane, k.ClosePane, k.CloseAll, k.Refresh},
		{k.PrevFrame, k.NextFrame, k.Options, k.Settings, k.Export},
		{k.Help, k.Quit},
	}
}
