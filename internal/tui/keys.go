package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Bell        key.Binding
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	Open        key.Binding
	MarkRead    key.Binding
	MarkAllRead key.Binding
	Remove      key.Binding
	Clear       key.Binding
	Permission  key.Binding
	Back        key.Binding
	Help        key.Binding
	Quit        key.Binding
	Allow       key.Binding
	Block       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Bell:        key.NewBinding(key.WithKeys("b", "n"), key.WithHelp("b", "notifications")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Open:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
		MarkRead:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark read")),
		MarkAllRead: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "mark all read")),
		Remove:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		Clear:       key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "clear all")),
		Permission:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "enable notifications")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Allow:       key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "allow")),
		Block:       key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "block")),
	}
}

// setNotificationsEnabled toggles the bindings that act on notifications.
// Disabled bindings never match and are left out of help.
func (k *keyMap) setNotificationsEnabled(on bool) {
	for _, b := range []*key.Binding{
		&k.Bell, &k.Up, &k.Down, &k.Select, &k.Open,
		&k.MarkRead, &k.MarkAllRead, &k.Remove, &k.Clear, &k.Permission,
	} {
		b.SetEnabled(on)
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Bell, k.Select, k.MarkRead, k.Permission, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Bell, k.Up, k.Down, k.Select, k.Open},
		{k.MarkRead, k.MarkAllRead, k.Remove, k.Clear},
		{k.Permission, k.Back, k.Help, k.Quit},
	}
}

type confirmKeys struct{ keyMap }

func (k confirmKeys) ShortHelp() []key.Binding { return []key.Binding{k.Allow, k.Block} }

func (k confirmKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
