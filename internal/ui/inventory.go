package ui

import (
	"fmt"

	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/progress"
)

// cellWidth is the width of one inventory slot, brackets included.
const cellWidth = 3

// Inventory is the item grid toggled with Y.
type Inventory struct {
	// Icons maps item names to the glyph drawn in their slot.
	Icons map[string]rune

	open     bool
	selected int
	width    int
}

// Toggle opens or closes the grid. It opens on the first item.
func (inv *Inventory) Toggle() {
	inv.open = !inv.open
	inv.selected = 0
}

// Open reports whether the grid is shown.
func (inv *Inventory) Open() bool {
	return inv.open
}

// Selected returns the highlighted slot.
func (inv *Inventory) Selected() int {
	return inv.selected
}

// Update moves the selection across the grid and uses the highlighted item
// when X is released. use is called before the item is taken away.
func (inv *Inventory) Update(in *core.Input, state *progress.State, use func(item string)) {
	if !inv.open {
		return
	}
	items := state.Inventory.Keys()
	if len(items) == 0 {
		return
	}
	width := max(inv.width, 1)
	if in.JoyMoved && (in.JoyX != 0 || in.JoyY != 0) {
		inv.selected = core.Wrap(inv.selected+in.JoyX+in.JoyY*width, len(items))
	}
	inv.selected = min(inv.selected, len(items)-1)

	if in.X.Released {
		in.X.Consume()
		item := items[inv.selected]
		if use != nil {
			use(item)
		}
		state.UseOne(item)
		if n := state.Inventory.Len(); n > 0 {
			inv.selected = min(inv.selected, n-1)
		} else {
			inv.selected = 0
		}
	}
}

// Draw renders the grid with the highlighted item's name on top.
func (inv *Inventory) Draw(dst *core.Screen, state *progress.State) {
	if !inv.open {
		return
	}
	x, y, width := canvas(dst)
	inv.width = max(width/cellWidth, 1)

	items := state.Inventory.Keys()
	if len(items) == 0 {
		dst.DrawTextColor(x, y, "Nothing is here yet.", core.ColorWhite)
		return
	}

	sel := min(inv.selected, len(items)-1)
	dst.DrawTextColor(x, y, fmt.Sprintf("%s x%d", items[sel], state.Count(items[sel])), core.ColorWhite)
	y += 2

	for i, item := range items {
		cx := x + (i%inv.width)*cellWidth
		cy := y + i/inv.width
		icon, ok := inv.Icons[item]
		if !ok {
			icon = '?'
			if item != "" {
				icon = []rune(item)[0]
			}
		}
		dst.Put(cx+1, cy, icon, core.ColorBrightYellow)
		if i == sel {
			dst.Put(cx, cy, '[', core.ColorRed)
			dst.Put(cx+2, cy, ']', core.ColorRed)
		}
	}
}
