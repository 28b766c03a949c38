package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/console.yaml
var defaultConsoleYAML []byte

//go:embed defaults/mario.yaml
var defaultMarioYAML []byte

// DefaultConsoleConfig returns the default console configuration.
func DefaultConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		Slot:       "Default",
		SavesRoot:  "~/.handheld/saves",
		Device:     "dir",
		CardPath:   "~/.handheld/card.db",
		TickRate:   30,
		Autosave:   10 * time.Second,
		ResetHold:  2 * time.Second,
		SaveFormat: "legacy",
		Screen: ScreenConfig{
			Width:  48,
			Height: 18,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultMarioConfig returns the default platformer physics.
func DefaultMarioConfig() MarioConfig {
	return MarioConfig{
		RunSpeed:       12,
		JumpVelocity:   -16,
		Gravity:        40,
		AccelRate:      25,
		JumpCut:        0.5,
		HangSpeed:      6,
		HangGravity:    0.5,
		HangAccel:      1.5,
		CoyoteTime:     100 * time.Millisecond,
		CharacterSpeed: 7,
	}
}
