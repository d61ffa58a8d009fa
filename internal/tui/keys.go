package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard's bindings. It implements help.KeyMap.
type keyMap struct {
	Panel1     key.Binding
	Panel2     key.Binding
	Panel3     key.Binding
	Panel4     key.Binding
	Next       key.Binding
	Prev       key.Binding
	Select     key.Binding
	Close      key.Binding
	Refresh    key.Binding
	Retry      key.Binding
	Open       key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ZoomReset  key.Binding
	Fullscreen key.Binding
	Exit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Poke       key.Binding
	Logs       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Panel1:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1-4", "focus panel")),
		Panel2:     key.NewBinding(key.WithKeys("2")),
		Panel3:     key.NewBinding(key.WithKeys("3")),
		Panel4:     key.NewBinding(key.WithKeys("4")),
		Next:       key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next panel")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev panel")),
		Select:     key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "choose tool")),
		Close:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close panel")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Retry:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
		Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_")),
		ZoomReset:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		Fullscreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		Exit:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "exit fullscreen")),
		ScrollUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "scroll")),
		ScrollDown: key.NewBinding(key.WithKeys("down", "j")),
		Poke:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "poke cat")),
		Logs:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logs")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+d"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Panel1, k.ZoomIn, k.Fullscreen, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Panel1, k.Next, k.Prev, k.ScrollUp},
		{k.Select, k.Close, k.Refresh, k.Retry, k.Open},
		{k.ZoomIn, k.ZoomReset, k.Fullscreen, k.Exit},
		{k.Poke, k.Logs, k.Help, k.Quit},
	}
}
