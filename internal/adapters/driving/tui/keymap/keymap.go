// Package keymap defines keybindings for the review TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the review TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the key legend.
	Help key.Binding

	// Up moves to the previous mention.
	Up key.Binding

	// Down moves to the next mention.
	Down key.Binding

	// Prev selects the previous candidate of the current mention.
	Prev key.Binding

	// Next selects the next candidate of the current mention.
	Next key.Binding

	// Accept toggles an accept on the selected candidate.
	Accept key.Binding

	// Reject toggles a reject on the selected candidate.
	Reject key.Binding

	// Uncertain toggles a discussion flag on the selected candidate.
	Uncertain key.Binding

	// NotPerson toggles the not_person entity flag on the mention.
	NotPerson key.Binding

	// WrongEra toggles the wrong_era entity flag on the mention.
	WrongEra key.Binding

	// Duplicate toggles the duplicate entity flag on the mention.
	Duplicate key.Binding

	// Group toggles the group entity flag on the mention.
	Group key.Binding

	// Pull fetches community decisions from the aggregation service.
	Pull key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous mention"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next mention"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous candidate"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next candidate"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept"),
		),
		Reject: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reject"),
		),
		Uncertain: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "uncertain"),
		),
		NotPerson: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "not a person"),
		),
		WrongEra: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "wrong era"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "duplicate"),
		),
		Group: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "group"),
		),
		Pull: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pull community decisions"),
		),
	}
}
