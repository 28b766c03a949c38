package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-handheld/internal/console"
	"github.com/vovakirdan/tui-handheld/internal/platform/tui"
	"github.com/vovakirdan/tui-handheld/internal/registry"
)

// The bezel around the screen: a border on each side, then the title and
// help lines below.
const (
	bezelW = 2
	bezelH = 4
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Run the console",
	Long: `Boot the console on a save slot. Without a game the menu opens.

Controls:
  Arrows/WASD    - Joystick (Space also pushes up)
  X/Enter/K      - Button X
  Z/Y/J          - Button Y
  ?              - Toggle help
  Q/Ctrl+C       - Save and quit

In the menu, hold Y for two seconds to reset the slot.
Logs go to ~/.handheld/handheld.log.

Examples:
  handheld play
  handheld play mario
  handheld play --slot Alice --card ./card.db`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
	}
	if len(args) == 1 && !registry.Exists(args[0]) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", args[0])
		fmt.Fprintln(os.Stderr, "Run 'handheld list' to see available games.")
		os.Exit(1)
	}

	// The terminal belongs to the program, so logs go to a file.
	logFile, err := openLogFile()
	if err != nil {
		fail("opening log: %v", err)
	}
	defer logFile.Close()
	logger, err := newLogger(logFile, cfg)
	if err != nil {
		fail("%v", err)
	}

	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		rc := cfg.Runtime()
		if w < rc.ScreenW+bezelW || h < rc.ScreenH+bezelH {
			fmt.Fprintf(os.Stderr, "Warning: terminal is %dx%d, the console needs %dx%d\n",
				w, h, rc.ScreenW+bezelW, rc.ScreenH+bezelH)
		}
	}

	dev, err := openDevice(cfg)
	if err != nil {
		fail("opening saves: %v", err)
	}
	defer dev.Close()

	c, err := console.New(cfg, dev, cfg.Slot, logger)
	if err != nil {
		fail("%v", err)
	}
	if err := c.Load(); err != nil {
		fail("booting console: %v", err)
	}
	if len(args) == 1 {
		if err := c.Start(args[0]); err != nil {
			c.Close()
			fail("%v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := tui.NewSession(c, cfg.Runtime(), nil, logger, tea.WithAltScreen())
	if err := session.Run(ctx); err != nil {
		fail("running console: %v", err)
	}
}

func openLogFile() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".handheld")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "handheld.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
