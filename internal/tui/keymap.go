package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Criteria, one binding per dimension
	Search      key.Binding
	CycleScope  key.Binding
	CycleSort   key.Binding
	CycleRole   key.Binding
	CyclePolicy key.Binding
	Amount      key.Binding
	Dates       key.Binding
	Clear       key.Binding

	// Claim actions
	MarkPaid key.Binding
	Return   key.Binding
	Approve  key.Binding
	Reject   key.Binding

	// Prompts
	Confirm key.Binding
	Cancel  key.Binding

	// Application
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn", "page down"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		CycleScope: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		CycleRole: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "provider role"),
		),
		CyclePolicy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "policy"),
		),
		Amount: key.NewBinding(
			key.WithKeys("$"),
			key.WithHelp("$", "amount range"),
		),
		Dates: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "date range"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),

		MarkPaid: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "mark paid"),
		),
		Return: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "return for review"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.CycleScope, k.Clear, k.MarkPaid, k.Return, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Search, k.CycleScope, k.CycleSort, k.CycleRole},
		{k.CyclePolicy, k.Amount, k.Dates, k.Clear},
		{k.MarkPaid, k.Return, k.Approve, k.Reject},
		{k.Refresh, k.Help, k.Quit},
	}
}
