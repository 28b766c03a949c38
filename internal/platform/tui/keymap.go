package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Pin is one input line of the console.
type Pin int

const (
	PinUp Pin = iota
	PinDown
	PinLeft
	PinRight
	PinX
	PinY
	pinCount
)

// KeyMap binds terminal keys to console pins.
// It implements help.KeyMap.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	X     key.Binding
	Y     key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns arrows/WASD for the joystick, X and Z for the
// buttons.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", " "),
			key.WithHelp("↑/w/space", "up/jump"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "right"),
		),
		X: key.NewBinding(
			key.WithKeys("x", "enter", "k"),
			key.WithHelp("x/enter", "talk/choose"),
		),
		Y: key.NewBinding(
			key.WithKeys("z", "y", "j"),
			key.WithHelp("z/y", "inventory"),
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

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.X, k.Y, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.X, k.Y},
		{k.Help, k.Quit},
	}
}

// Pin returns the console pin a key drives.
func (k KeyMap) Pin(msg tea.KeyMsg) (Pin, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return PinUp, true
	case key.Matches(msg, k.Down):
		return PinDown, true
	case key.Matches(msg, k.Left):
		return PinLeft, true
	case key.Matches(msg, k.Right):
		return PinRight, true
	case key.Matches(msg, k.X):
		return PinX, true
	case key.Matches(msg, k.Y):
		return PinY, true
	}
	return 0, false
}
