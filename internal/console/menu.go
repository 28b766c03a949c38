package console

import (
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/registry"
)

// menu is the game picker. Holding Y offers to wipe the slot.
type menu struct {
	pointer int
	held    float32 // seconds Y has been held
	confirm bool
}

// menuGames returns the games the slot has unlocked.
func (c *Console) menuGames() []registry.Game {
	n := min(int(c.state.NGames), len(c.games))
	return c.games[:max(n, 0)]
}

func (c *Console) updateMenu(in *core.Input, dt float32) {
	m := &c.menu
	if m.confirm {
		switch {
		case in.X.Released:
			in.X.Consume()
			m.confirm = false
			c.resetPending = true
		case in.Y.Pressed:
			in.Y.Consume()
			m.confirm = false
		}
		return
	}

	games := c.menuGames()
	switch {
	case len(games) == 0:
	case in.JoyMoved:
		m.pointer = core.Wrap(m.pointer+in.JoyY, len(games))
	case in.X.Released:
		in.X.Consume()
		c.start(games[m.pointer])
		return
	}

	if in.Y.Held {
		m.held += dt
	} else {
		m.held = 0
	}
	if c.cfg.ResetHold > 0 && m.held >= float32(c.cfg.ResetHold.Seconds()) {
		m.held = 0
		m.confirm = true
	}
}

func (c *Console) drawMenu(dst *core.Screen) {
	if c.menu.confirm {
		y := dst.Height()/2 - 1
		dst.DrawTextCentered(y, "X To reset", core.ColorBrightRed)
		dst.DrawTextCentered(y+1, "Y To quit", core.ColorWhite)
		return
	}

	dst.DrawTextCentered(1, "Games", core.ColorBrightYellow)
	for i, g := range c.menuGames() {
		prefix, color := "  ", core.ColorWhite
		if i == c.menu.pointer {
			prefix, color = "> ", core.ColorBrightCyan
		}
		dst.DrawTextColor(2, 3+i, prefix+g.Title(), color)
	}
	dst.DrawTextColor(0, dst.Height()-1, c.slot, core.ColorGray)
}
