package board

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the scheduling board TUI.
type KeyMap struct {
	PrevDay key.Binding
	NextDay key.Binding

	ZoomIn  key.Binding
	ZoomOut key.Binding

	// Split confirmation (active only while a cross-day split is pending).
	Confirm key.Binding
	Cancel  key.Binding

	Reload key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	PrevDay: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "previous day"),
	),
	NextDay: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next day"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "confirm split"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel split"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
