// Package ui draws the modal overlays of the console: dialogs, shops, the
// inventory grid and the chat log.
package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

// Margin is the gap between the screen edge and an overlay box.
const Margin = 2

// Dialog is a prompt with a list of answers picked with the joystick.
type Dialog struct {
	Title   string
	Answers []string

	active bool
	chosen bool
	choice int
}

// Open shows the prompt with the cursor on the first answer.
func (d *Dialog) Open(title string, answers []string) {
	d.Title = title
	d.Answers = answers
	d.active = true
	d.chosen = false
	d.choice = 0
}

// Close hides the prompt without choosing.
func (d *Dialog) Close() {
	d.active = false
}

// Active reports whether the prompt is shown.
func (d *Dialog) Active() bool {
	return d.active
}

// Choice returns the picked answer once X was pressed.
func (d *Dialog) Choice() (int, bool) {
	return d.choice, d.chosen
}

// Update moves the cursor and picks on X. It consumes X.
func (d *Dialog) Update(in *core.Input) {
	if !d.active || d.chosen {
		return
	}
	if in.JoyMoved && in.JoyY != 0 {
		d.choice = core.Wrap(d.choice+in.JoyY, max(len(d.Answers), 1))
	}
	if in.X.Pressed {
		in.X.Consume()
		d.chosen = true
		d.active = false
	}
}

// Draw renders the prompt inside a box.
func (d *Dialog) Draw(dst *core.Screen) {
	if !d.active {
		return
	}
	x, y, width := canvas(dst)
	y += dst.DrawTextColor(x, y, wrap(d.Title, width), core.ColorWhite) + 1
	for i, answer := range d.Answers {
		prefix := "  "
		if i == d.choice {
			prefix = "> "
		}
		y += dst.DrawTextColor(x, y, wrap(prefix+answer, width), core.ColorBrightYellow)
	}
}

// canvas draws the overlay box and returns where its text area starts.
func canvas(dst *core.Screen) (x, y, width int) {
	box := core.NewRect(Margin, Margin/2, dst.Width()-Margin*2, dst.Height()-Margin)
	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawRect(box, core.ColorYellow)
	return box.X + 2, box.Y + 1, box.W - 4
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ansi.Wordwrap(line, width, "")
	}
	return strings.Join(lines, "\n")
}
