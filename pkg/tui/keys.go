package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every binding of the viewer.
type KeyMap struct {
	EditSlot    [6]key.Binding
	Pause       key.Binding
	NextIface   key.Binding
	PrevIface   key.Binding
	AllIfaces   key.Binding
	WANIface    key.Binding
	Direction   key.Binding
	Flow        key.Binding
	ToggleLocal key.Binding
	ToggleWAN   key.Binding
	ClearAll    key.Binding
	Description key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	RawLeft     key.Binding
	RawRight    key.Binding
	Help        key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	Apply       key.Binding
	Cancel      key.Binding
	ClearSlot   key.Binding
}

var slotHelp = [6]string{"iface", "proto", "action", "src", "dst", "port"}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Pause:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		NextIface:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next iface")),
		PrevIface:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev iface")),
		AllIfaces:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all ifaces")),
		WANIface:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "WAN iface")),
		Direction:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "direction")),
		Flow:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flow")),
		ToggleLocal: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "local src")),
		ToggleWAN:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "WAN src")),
		ClearAll:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Description: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "service info")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Top:         key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "oldest")),
		Bottom:      key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "follow")),
		RawLeft:     key.NewBinding(key.WithKeys("left", "<"), key.WithHelp("←", "scroll raw")),
		RawRight:    key.NewBinding(key.WithKeys("right", ">"), key.WithHelp("→", "scroll raw")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
		Apply:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ClearSlot:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear slot")),
	}
	for i := range km.EditSlot {
		n := i + 1
		km.EditSlot[i] = key.NewBinding(
			key.WithKeys("f"+itoa(n), itoa(n)),
			key.WithHelp("F"+itoa(n), slotHelp[i]),
		)
	}
	return km
}

func itoa(n int) string {
	return string(rune('0' + n))
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.NextIface, k.Direction, k.Flow, k.ClearAll, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.EditSlot[:],
		{k.Pause, k.NextIface, k.PrevIface, k.AllIfaces, k.WANIface},
		{k.Direction, k.Flow, k.ToggleLocal, k.ToggleWAN, k.ClearAll, k.Description},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.RawLeft, k.RawRight, k.Help, k.Quit},
	}
}

// editorKeys is the help shown while a slot editor is open.
type editorKeys struct{ km KeyMap }

func (e editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{e.km.Apply, e.km.Cancel, e.km.ClearSlot}
}

func (e editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{e.ShortHelp()}
}
