package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed games",
	Long: `Shows every installed game in menu order. A slot shows as many of them
as it has unlocked; a fresh slot unlocks the first few.`,
	Run: runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No games installed.")
		return
	}

	width := len("ID")
	for _, g := range games {
		width = max(width, len(g.ID))
	}
	unlocked := int(progress.Default().NGames)

	fmt.Printf("  #  %-*s  %s\n", width, "ID", "Title")
	for i, g := range games {
		note := ""
		if i >= unlocked {
			note = "  (locked in a fresh slot)"
		}
		fmt.Printf("  %d  %-*s  %s%s\n", i+1, width, g.ID, g.Title, note)
	}
	fmt.Println()
	fmt.Println("Run 'handheld play <id>' to skip the menu.")
}
