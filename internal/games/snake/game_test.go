package snake

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/registry"
	"github.com/vovakirdan/tui-handheld/internal/script"
	"github.com/vovakirdan/tui-handheld/internal/storage"
	"github.com/vovakirdan/tui-handheld/internal/ui"
)

type testHost struct {
	dev    storage.Device
	state  *progress.State
	format codec.Format
}

var _ registry.Host = (*testHost)(nil)

func (h *testHost) Logger() *log.Logger        { return log.New(io.Discard) }
func (h *testHost) Config() core.RuntimeConfig { return core.DefaultConfig() }
func (h *testHost) Device() storage.Device     { return h.dev }
func (h *testHost) Slot() string               { return "Test" }
func (h *testHost) Format() codec.Format       { return h.format }
func (h *testHost) State() *progress.State     { return h.state }
func (h *testHost) SaveState()                 {}
func (h *testHost) Interact(string)            {}
func (h *testHost) UI() *ui.UI                 { return nil }
func (h *testHost) Lua() *script.Lua           { return nil }
func (h *testHost) Scripts() *script.Runner    { return nil }

func newHost(t *testing.T, format codec.Format) *testHost {
	t.Helper()
	dev, err := storage.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &testHost{dev: dev, state: progress.Default(), format: format}
}

func startGame(t *testing.T, h *testHost) *Game {
	t.Helper()
	g := New()
	if err := g.Load(h); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	g.Start()
	g.food = Point{-1, -1}
	return g
}

// stepOnce advances exactly one move.
func stepOnce(g *Game, in core.Input) {
	g.Update(&in, g.step)
}

func TestNoImmediateReversal(t *testing.T) {
	g := startGame(t, newHost(t, codec.Legacy))
	if g.dir != DirRight {
		t.Fatalf("initial direction = %v, want right", g.dir)
	}

	g.Update(&core.Input{JoyX: -1}, 0)
	if g.next != DirRight {
		t.Errorf("reversal accepted: next = %v", g.next)
	}

	g.Update(&core.Input{JoyY: -1}, 0)
	if g.next != DirUp {
		t.Errorf("next = %v, want up", g.next)
	}
}

func TestMovesOnStep(t *testing.T) {
	g := startGame(t, newHost(t, codec.Legacy))
	head := g.body[0]

	g.Update(&core.Input{}, g.step/2)
	if g.body[0] != head {
		t.Fatalf("moved before a full step: %v", g.body[0])
	}

	g.Update(&core.Input{}, g.step/2)
	if want := (Point{head.X + 1, head.Y}); g.body[0] != want {
		t.Errorf("head = %v, want %v", g.body[0], want)
	}
	if len(g.body) != 3 {
		t.Errorf("length = %d, want 3", len(g.body))
	}
}

func TestEatPaysAndGrows(t *testing.T) {
	h := newHost(t, codec.Legacy)
	g := startGame(t, h)
	head := g.body[0]
	g.food = Point{head.X + 1, head.Y}

	stepOnce(g, core.Input{})

	if len(g.body) != 4 {
		t.Errorf("length = %d, want 4", len(g.body))
	}
	if h.state.Money != 2000+Reward {
		t.Errorf("money = %d, want %d", h.state.Money, 2000+Reward)
	}
	if g.food == (Point{head.X + 1, head.Y}) || g.onBody(g.food) {
		t.Errorf("food not respawned on a free cell: %v", g.food)
	}
}

func crash(t *testing.T, g *Game) {
	t.Helper()
	for range 2 * g.w {
		stepOnce(g, core.Input{})
		if g.over {
			return
		}
	}
	t.Fatal("snake never hit the wall")
}

func TestCrashAndRestart(t *testing.T) {
	g := startGame(t, newHost(t, codec.Legacy))
	crash(t, g)

	if g.record.Best != 3 {
		t.Errorf("best = %d, want 3", g.record.Best)
	}
	head := g.body[0]
	stepOnce(g, core.Input{})
	if g.body[0] != head {
		t.Error("snake moved after crashing")
	}

	in := core.Input{X: core.Button{Released: true}}
	g.Update(&in, 0)
	if g.over {
		t.Fatal("X did not restart the round")
	}
	if in.X.Released {
		t.Error("restart did not consume X")
	}
	if g.record.Games != 2 {
		t.Errorf("games = %d, want 2", g.record.Games)
	}
}

func TestRecordPersists(t *testing.T) {
	for _, format := range []codec.Format{codec.Legacy, codec.Tagged} {
		t.Run(format.String(), func(t *testing.T) {
			h := newHost(t, format)
			g := startGame(t, h)
			crash(t, g)
			g.Save()

			if !h.dev.Exists("Test/snake/record.dat") {
				t.Fatal("record file not written")
			}

			again := startGame(t, h)
			if again.Record().Best != 3 || again.Record().Games != 2 {
				t.Errorf("record = %+v, want best 3 after 2 games", again.Record())
			}

			var out bytes.Buffer
			if err := again.Dump(&out); err != nil {
				t.Fatalf("Dump() error = %v", err)
			}
			if !strings.Contains(out.String(), "best 3, 1 games") {
				t.Errorf("Dump() = %q", out.String())
			}
		})
	}
}

func TestSaveSkipsUnchangedRecord(t *testing.T) {
	h := newHost(t, codec.Legacy)
	g := startGame(t, h)
	g.Save()
	if err := h.dev.Remove("Test/snake/record.dat"); err != nil {
		t.Fatal(err)
	}

	g.Save()
	if h.dev.Exists("Test/snake/record.dat") {
		t.Error("unchanged record written again")
	}
}

func TestDraw(t *testing.T) {
	g := startGame(t, newHost(t, codec.Legacy))
	crash(t, g)
	head := g.body[0]

	scr := core.NewScreen(48, 18)
	g.Draw(scr)
	if !strings.Contains(scr.Row(0), "Snake") {
		t.Errorf("score line = %q", scr.Row(0))
	}
	if c := scr.GetCell(head.X, head.Y+hudHeight); c.Rune != 'O' {
		t.Errorf("head cell = %q, want 'O'", c.Rune)
	}
	if !strings.Contains(scr.String(), "Game Over") {
		t.Error("crash banner missing")
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists(ID) {
		t.Fatalf("%q not registered", ID)
	}
}
