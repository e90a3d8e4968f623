package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	TabNext    key.Binding
	TabPrev    key.Binding
	Enter      key.Binding
	Back       key.Binding
	Add        key.Binding
	Remove     key.Binding
	Edit       key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Send       key.Binding
	Save       key.Binding
	NewTab     key.Binding
	CloseTab   key.Binding
	NextEditor key.Binding
	PrevEditor key.Binding
	Vars       key.Binding
	Format     key.Binding
	Probe      key.Binding
	ProbeAll   key.Binding
	ClearLog   key.Binding
	Search     key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	TabNext: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	TabPrev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev tab"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Connect: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "connect"),
	),
	Disconnect: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "disconnect"),
	),
	Send: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "send"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "save template"),
	),
	NewTab: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "new editor tab"),
	),
	CloseTab: key.NewBinding(
		key.WithKeys("ctrl+w"),
		key.WithHelp("ctrl+w", "close editor tab"),
	),
	NextEditor: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next editor"),
	),
	PrevEditor: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev editor"),
	),
	Vars: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "variables"),
	),
	Format: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "format json"),
	),
	Probe: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "probe"),
	),
	ProbeAll: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "probe all"),
	),
	ClearLog: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear log"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
}

// ShortHelp returns a compact list for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TabNext, k.Connect, k.Send, k.Save, k.Help, k.Quit}
}

// FullHelp returns grouped bindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TabNext, k.TabPrev, k.Enter, k.Back},
		{k.Add, k.Edit, k.Remove, k.Connect, k.Disconnect},
		{k.Send, k.Save, k.NewTab, k.CloseTab, k.NextEditor, k.PrevEditor},
		{k.Vars, k.Format, k.Probe, k.ProbeAll, k.ClearLog, k.Search},
		{k.Help, k.Quit},
	}
}
