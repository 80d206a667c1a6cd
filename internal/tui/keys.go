package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Unregister key.Binding
	Copy       key.Binding
	Refresh    key.Binding
	Focus      key.Binding
	PrevOption key.Binding
	NextOption key.Binding
	Submit     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Unregister: key.NewBinding(key.WithKeys("x", "delete", "enter"), key.WithHelp("x", "unregister")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy email")),
		Refresh:    key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
		Focus:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "list/form")),
		PrevOption: key.NewBinding(key.WithKeys("ctrl+p", "up"), key.WithHelp("↑", "prev activity")),
		NextOption: key.NewBinding(key.WithKeys("ctrl+n", "down"), key.WithHelp("↓", "next activity")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign up")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// formKeys is the subset shown while the sign-up form has focus; "q" and "?"
// are typed into the email field there.
type formKeys struct{ k keyMap }

func (f formKeys) ShortHelp() []key.Binding {
	return []key.Binding{f.k.PrevOption, f.k.NextOption, f.k.Submit, f.k.Focus}
}

func (f formKeys) FullHelp() [][]key.Binding { return [][]key.Binding{f.ShortHelp()} }

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Unregister, k.Refresh, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Unregister, k.Copy},
		{k.Focus, k.PrevOption, k.NextOption, k.Submit},
		{k.Refresh, k.Help, k.Quit},
	}
}
