// Package config provides YAML-based configuration loading for the console
// and its games.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
)

// ConsoleConfig contains the runtime settings of the console.
type ConsoleConfig struct {
	Slot       string        `yaml:"slot"`        // Save slot directory on the device
	SavesRoot  string        `yaml:"saves_root"`  // Root of the directory device
	Device     string        `yaml:"device"`      // "dir" or "card"
	CardPath   string        `yaml:"card_path"`   // SQLite card image for the card device
	TickRate   int           `yaml:"tick_rate"`   // Frames per second
	Autosave   time.Duration `yaml:"autosave"`    // Interval between background saves
	ResetHold  time.Duration `yaml:"reset_hold"`  // How long Y is held in the menu to offer a reset
	SaveFormat string        `yaml:"save_format"` // "legacy" or "tagged"
	Screen     ScreenConfig  `yaml:"screen"`
	Log        LogConfig     `yaml:"log"`
}

// ScreenConfig is the size of the console display in characters.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// Runtime returns the frame geometry and rate, falling back to the core
// defaults for unset fields.
func (c ConsoleConfig) Runtime() core.RuntimeConfig {
	rc := core.DefaultConfig()
	if c.Screen.Width > 0 {
		rc.ScreenW = c.Screen.Width
	}
	if c.Screen.Height > 0 {
		rc.ScreenH = c.Screen.Height
	}
	if c.TickRate > 0 {
		rc.TickRate = c.TickRate
	}
	return rc
}

// Format parses the save format. An empty value is the legacy format.
func (c ConsoleConfig) Format() (codec.Format, error) {
	if c.SaveFormat == "" {
		return codec.Legacy, nil
	}
	f, err := codec.ParseFormat(c.SaveFormat)
	if err != nil {
		return codec.Legacy, fmt.Errorf("config: save_format: %w", err)
	}
	return f, nil
}

// LogLevel parses the log level. An empty value is info.
func (c ConsoleConfig) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("config: log.level: %w", err)
	}
	return lvl, nil
}

// MarioConfig contains the physics of the platformer. Distances are in
// cells, speeds in cells per second.
type MarioConfig struct {
	RunSpeed       float32       `yaml:"run_speed"`
	JumpVelocity   float32       `yaml:"jump_velocity"` // negative is up
	Gravity        float32       `yaml:"gravity"`
	AccelRate      float32       `yaml:"accel_rate"` // fraction of the speed gap closed per second
	JumpCut        float32       `yaml:"jump_cut"`   // vertical speed kept when jump is released early
	HangSpeed      float32       `yaml:"hang_speed"` // below this vertical speed a jump hangs
	HangGravity    float32       `yaml:"hang_gravity"`
	HangAccel      float32       `yaml:"hang_accel"`
	CoyoteTime     time.Duration `yaml:"coyote_time"`
	CharacterSpeed float32       `yaml:"character_speed"`
}
