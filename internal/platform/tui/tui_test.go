package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testLatch() (*Latch, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLatch(DefaultJoyHold, DefaultButtonHold)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLatchHoldWindows(t *testing.T) {
	l, now := testLatch()
	l.Press(PinRight)
	l.Press(PinX)

	if p := l.Pins(); !p.Right || !p.X {
		t.Fatalf("pins right after press = %+v", p)
	}

	*now = now.Add(DefaultJoyHold)
	if p := l.Pins(); p.Right || !p.X {
		t.Errorf("after the joystick window: %+v", p)
	}

	*now = now.Add(DefaultButtonHold)
	if p := l.Pins(); p.X {
		t.Errorf("after the button window: %+v", p)
	}
}

func TestLatchRepeatKeepsHeld(t *testing.T) {
	l, now := testLatch()
	for range 10 {
		l.Press(PinY)
		*now = now.Add(DefaultButtonHold / 2)
		if !l.Pins().Y {
			t.Fatal("Y dropped between auto-repeats")
		}
	}
}

func TestLatchOpposites(t *testing.T) {
	l, _ := testLatch()
	l.Press(PinLeft)
	l.Press(PinRight)
	l.Press(PinUp)
	l.Press(PinDown)

	p := l.Pins()
	if p.Left || !p.Right || p.Up || !p.Down {
		t.Errorf("pins = %+v, want only the last of each axis", p)
	}

	l.ReleaseAll()
	if l.Pins() != (core.Pins{}) {
		t.Error("ReleaseAll left pins held")
	}
}

func TestKeyMapPins(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want Pin
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, PinUp, true},
		{runes("w"), PinUp, true},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, PinUp, true},
		{tea.KeyMsg{Type: tea.KeyDown}, PinDown, true},
		{runes("a"), PinLeft, true},
		{tea.KeyMsg{Type: tea.KeyRight}, PinRight, true},
		{runes("x"), PinX, true},
		{tea.KeyMsg{Type: tea.KeyEnter}, PinX, true},
		{runes("z"), PinY, true},
		{runes("q"), 0, false},
		{runes("p"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			got, ok := keys.Pin(tt.msg)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Pin(%q) = %v, %v; want %v, %v", tt.msg.String(), got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestModel(t *testing.T) {
	l, _ := testLatch()
	r := lipgloss.NewRenderer(io.Discard)
	var m tea.Model = NewModel(l, DefaultKeyMap(), "handheld · Test", r)

	m, _ = m.Update(runes("x"))
	if !l.Pins().X {
		t.Error("x did not press X")
	}

	m, _ = m.Update(FrameMsg("FRAME-ROW"))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	view := m.View()
	if !strings.Contains(view, "FRAME-ROW") || !strings.Contains(view, "Test") {
		t.Errorf("view does not show the frame and title:\n%s", view)
	}

	m, _ = m.Update(tea.BlurMsg{})
	if l.Pins().X {
		t.Error("focus loss did not release the pins")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.(Model).Quitting() {
		t.Fatal("ctrl+c did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared on quit")
	}
}

func TestPainterRender(t *testing.T) {
	scr := core.NewScreen(6, 2)
	scr.DrawTextColor(0, 0, "ab", core.ColorRed)
	scr.DrawTextColor(2, 0, "cd", core.ColorOrange)
	scr.DrawText(0, 1, "plain")

	p := NewPainter(lipgloss.NewRenderer(io.Discard))
	got := p.Render(scr)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "abcd") || !strings.Contains(lines[1], "plain") {
		t.Errorf("Render() = %q", got)
	}
}

func TestProgramDisplayWithoutProgram(t *testing.T) {
	d := NewProgramDisplay(NewPainter(lipgloss.NewRenderer(io.Discard)))
	d.Present(core.NewScreen(4, 2))
}
