package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset <slot>",
	Short: "Wipe a save slot",
	Long: `Delete everything a slot has saved and write a fresh starting state,
the same as holding Y in the console menu.

Examples:
  handheld reset Default
  handheld reset alice --card ./card.db`,
	Args: cobra.ExactArgs(1),
	Run:  runReset,
}

func runReset(_ *cobra.Command, args []string) {
	slot := args[0]
	if !storage.ValidSlot(slot) {
		fail("invalid slot name %q", slot)
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
	}
	format, err := cfg.Format()
	if err != nil {
		fail("%v", err)
	}
	dev, err := openDevice(cfg)
	if err != nil {
		fail("opening saves: %v", err)
	}
	defer dev.Close()

	if !dev.Exists(slot) {
		fail("no slot %q", slot)
	}
	if err := dev.Remove(slot); err != nil {
		fail("wiping slot: %v", err)
	}

	// Loading a slot without a progress file writes the default one.
	st := progress.NewStore(dev, slot, format, log.Default())
	if _, err := st.Load(); err != nil {
		fail("writing fresh state: %v", err)
	}
	fmt.Printf("Slot %s reset.\n", slot)
}
