package core

import "time"

// JoyRepeat is how long a held joystick direction waits before it reports
// movement again.
const JoyRepeat = 300 * time.Millisecond

// Pins is the raw level of every console input line at one instant.
// The platform layer fills it from whatever it reads (keys, GPIO, a test).
type Pins struct {
	Up, Down, Left, Right bool
	X, Y                  bool
}

// Button holds the edge-detected state of one button for the current frame.
type Button struct {
	Pressed  bool // went down this frame
	Released bool // went up this frame
	Held     bool // is down
}

// Tick advances the button with the current pin level.
func (b *Button) Tick(down bool) {
	last := b.Held
	b.Held = down
	b.Pressed = !last && down
	b.Released = last && !down
}

// Consume clears the edges so later readers in the same frame do not act on
// them again.
func (b *Button) Consume() {
	b.Pressed = false
	b.Released = false
}

// Input is the snapshot games and the UI read during one frame.
type Input struct {
	// JoyX and JoyY are -1, 0 or 1. Negative Y is up.
	JoyX, JoyY int
	// JoyMoved is set on the frame the direction changed, and then again
	// every JoyRepeat while it is held.
	JoyMoved bool

	X, Y Button
}

// Controller turns successive Pins samples into Input snapshots.
type Controller struct {
	in      Input
	movedAt time.Time
}

// NewController creates a controller with nothing held.
func NewController() *Controller {
	return &Controller{}
}

// Sample refreshes the snapshot from the pins and returns it.
func (c *Controller) Sample(p Pins, now time.Time) Input {
	x := axis(p.Left, p.Right)
	y := axis(p.Up, p.Down)

	c.in.X.Tick(p.X)
	c.in.Y.Tick(p.Y)

	if x != c.in.JoyX || y != c.in.JoyY || now.Sub(c.movedAt) > JoyRepeat {
		c.movedAt = now
		c.in.JoyX, c.in.JoyY = x, y
		c.in.JoyMoved = true
	} else {
		c.in.JoyMoved = false
	}
	return c.in
}

func axis(neg, pos bool) int {
	v := 0
	if neg {
		v--
	}
	if pos {
		v++
	}
	return v
}
