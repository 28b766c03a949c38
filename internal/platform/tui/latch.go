package tui

import (
	"sync"
	"time"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

// Terminals report key presses and auto-repeats but no releases, so a pin
// counts as held for a while after its last key event.
const (
	// DefaultJoyHold is shorter than core.JoyRepeat so a tap moves once.
	DefaultJoyHold = 200 * time.Millisecond
	// DefaultButtonHold bridges the terminal's initial auto-repeat delay so
	// a held button stays down.
	DefaultButtonHold = 600 * time.Millisecond
)

// Latch turns key events into pin levels. Press is called from the
// terminal program, Pins from the frame loop.
type Latch struct {
	mu     sync.Mutex
	last   [pinCount]time.Time
	joy    time.Duration
	button time.Duration
	now    func() time.Time
}

// NewLatch creates a latch with the given hold windows.
func NewLatch(joy, button time.Duration) *Latch {
	return &Latch{joy: joy, button: button, now: time.Now}
}

// Press records a key event for p. Pressing a direction releases the
// opposite one.
func (l *Latch) Press(p Pin) {
	if p < 0 || p >= pinCount {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last[p] = l.now()
	switch p {
	case PinUp:
		l.last[PinDown] = time.Time{}
	case PinDown:
		l.last[PinUp] = time.Time{}
	case PinLeft:
		l.last[PinRight] = time.Time{}
	case PinRight:
		l.last[PinLeft] = time.Time{}
	}
}

// ReleaseAll drops every pin.
func (l *Latch) ReleaseAll() {
	l.mu.Lock()
	l.last = [pinCount]time.Time{}
	l.mu.Unlock()
}

// Pins implements frame.InputSource.
func (l *Latch) Pins() core.Pins {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	held := func(p Pin, window time.Duration) bool {
		t := l.last[p]
		return !t.IsZero() && now.Sub(t) < window
	}
	return core.Pins{
		Up:    held(PinUp, l.joy),
		Down:  held(PinDown, l.joy),
		Left:  held(PinLeft, l.joy),
		Right: held(PinRight, l.joy),
		X:     held(PinX, l.button),
		Y:     held(PinY, l.button),
	}
}
