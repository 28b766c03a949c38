// handheld is a terminal handheld console: a story platformer whose saves
// live in slots on a directory tree or a single-file card image.
//
// Usage:
//
//	handheld play [game]       - Run the console in this terminal
//	handheld serve             - Start SSH server, one console per user
//	handheld list              - List installed games
//	handheld slots             - List save slots
//	handheld reset <slot>      - Wipe a save slot
//	handheld inspect <slot>    - Print what a slot has saved
//
// Global flags:
//
//	--config <path>        - Console config YAML
//	--mario-config <path>  - Platformer physics YAML
//	--slot <name>          - Save slot (default from config)
//	--fps <rate>           - Tick rate (default from config)
//	--card <path>          - Save to a card image instead of the saves directory
//	--log-level <level>    - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-handheld/internal/config"
	"github.com/vovakirdan/tui-handheld/internal/games/mario"
	_ "github.com/vovakirdan/tui-handheld/internal/games/snake"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

var (
	// Global flags
	flagConfig      string
	flagMarioConfig string
	flagSlot        string
	flagFPS         int
	flagCard        string
	flagLogLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "handheld",
	Short: "Handheld - a pocket console in your terminal",
	Long: `Handheld is a terminal console that runs a story platformer.
Progress, conversations and every level's objects are kept in a save slot.

Available commands:
  play     - Run the console in this terminal
  serve    - Start SSH server, each user plays their own slot
  list     - Show installed games
  slots    - Show save slots
  reset    - Wipe a save slot
  inspect  - Print a slot's saved data

Examples:
  handheld play
  handheld play mario --slot Alice
  handheld serve --ssh :2222 --card ./card.db
  handheld inspect Default`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		mario.SetConfigPath(flagMarioConfig)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to console config YAML")
	rootCmd.PersistentFlags().StringVar(&flagMarioConfig, "mario-config", "", "Path to platformer config YAML")
	rootCmd.PersistentFlags().StringVar(&flagSlot, "slot", "", "Save slot (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagCard, "card", "", "Save to this card image instead of the saves directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(slotsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(inspectCmd)
}

// loadConfig reads the console config and applies the global flags.
func loadConfig() (config.ConsoleConfig, error) {
	cfg, err := config.LoadConsole(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSlot != "" {
		cfg.Slot = flagSlot
	}
	if flagFPS > 0 {
		cfg.TickRate = flagFPS
	}
	if flagCard != "" {
		cfg.Device = storage.KindCard
		cfg.CardPath = flagCard
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.ConsoleConfig) (*log.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "handheld",
		Level:           lvl,
	}), nil
}

func openDevice(cfg config.ConsoleConfig) (storage.Device, error) {
	return storage.OpenDevice(cfg.Device, cfg.SavesRoot, cfg.CardPath)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
