package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-handheld/internal/console"
	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/registry"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <slot>",
	Short: "Print a slot's saved data",
	Long: `Boot a console on the slot without running it and print its progress,
the script threads and the objects every game has saved. Nothing is written.

Examples:
  handheld inspect Default
  handheld inspect alice --card ./card.db`,
	Args: cobra.ExactArgs(1),
	Run:  runInspect,
}

func runInspect(_ *cobra.Command, args []string) {
	slot := args[0]
	if !storage.ValidSlot(slot) {
		fail("invalid slot name %q", slot)
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
	}
	logger, err := newLogger(os.Stderr, cfg)
	if err != nil {
		fail("%v", err)
	}
	dev, err := openDevice(cfg)
	if err != nil {
		fail("opening saves: %v", err)
	}
	defer dev.Close()

	if !dev.Exists(storage.Join(slot, progress.FileName)) {
		fail("no saved progress in slot %q", slot)
	}

	c, err := console.New(cfg, dev, slot, logger)
	if err != nil {
		fail("%v", err)
	}
	if err := c.Load(); err != nil {
		fail("booting console: %v", err)
	}
	// Close would save, so only the interpreter is released.
	defer c.Lua().Close()

	w := os.Stdout
	printState(w, c.State())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Threads:")
	for i, t := range c.Scripts().Threads() {
		fmt.Fprintf(w, "  %d: head %d at %d\n", i, t.Head, t.Position())
	}

	for _, g := range c.Games() {
		d, ok := g.(registry.Dumper)
		if !ok {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", g.ID())
		if err := d.Dump(w); err != nil {
			fmt.Fprintf(w, "  error: %v\n", err)
		}
	}
}

func printState(w io.Writer, s *progress.State) {
	fmt.Fprintf(w, "Games unlocked: %d\n", s.NGames)
	fmt.Fprintf(w, "Money:          %d\n", s.Money)
	fmt.Fprintf(w, "Mario level:    %d\n", s.Mario.Level)
	fmt.Fprintf(w, "Speed buff:     x%g for %.1fs\n", s.Mario.SpeedBuf.Multiplier, s.Mario.SpeedBuf.Timer)
	fmt.Fprintf(w, "Jump buff:      x%g for %.1fs\n", s.Mario.JumpBuf.Multiplier, s.Mario.JumpBuf.Timer)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inventory:")
	if s.Inventory.Len() == 0 {
		fmt.Fprintln(w, "  (empty)")
	}
	for item, n := range s.Inventory.All() {
		fmt.Fprintf(w, "  %-12s %d\n", item, n)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dialogs:")
	if s.Dialogs.Len() == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for name, node := range s.Dialogs.All() {
		fmt.Fprintf(w, "  %-12s node %d\n", name, node)
	}
}
