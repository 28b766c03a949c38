package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-handheld/internal/storage"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List save slots",
	Long: `Shows the save slots on the configured device (the saves directory,
or the card image given with --card).`,
	Run: runSlots,
}

func runSlots(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("loading config: %v", err)
	}
	dev, err := openDevice(cfg)
	if err != nil {
		fail("opening saves: %v", err)
	}
	defer dev.Close()

	names, err := dev.List("")
	if err != nil && !storage.IsNotExist(err) {
		fail("listing slots: %v", err)
	}

	var slots []string
	for _, name := range names {
		if storage.ValidSlot(name) {
			slots = append(slots, name)
		}
	}
	if len(slots) == 0 {
		fmt.Println("No save slots yet.")
		return
	}

	fmt.Println("Save slots:")
	fmt.Println()
	for _, slot := range slots {
		marker := " "
		if slot == cfg.Slot {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, slot)
	}
	fmt.Println()
	fmt.Println("* is the default slot. Pick another with --slot.")
}
