package mario

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
	"github.com/vovakirdan/tui-handheld/internal/level"
	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/registry"
	"github.com/vovakirdan/tui-handheld/internal/script"
	"github.com/vovakirdan/tui-handheld/internal/storage"
	"github.com/vovakirdan/tui-handheld/internal/ui"
)

const slot = "Test"

type testHost struct {
	dev        storage.Device
	state      *progress.State
	ui         *ui.UI
	lua        *script.Lua
	scripts    *script.Runner
	game       *Game
	interacted []string
	saves      int
}

var _ registry.Host = (*testHost)(nil)

func (h *testHost) Logger() *log.Logger        { return log.New(io.Discard) }
func (h *testHost) Config() core.RuntimeConfig { return core.DefaultConfig() }
func (h *testHost) Device() storage.Device     { return h.dev }
func (h *testHost) Slot() string               { return slot }
func (h *testHost) Format() codec.Format       { return codec.Legacy }
func (h *testHost) State() *progress.State     { return h.state }
func (h *testHost) Interact(name string)       { h.interacted = append(h.interacted, name) }
func (h *testHost) UI() *ui.UI                 { return h.ui }
func (h *testHost) Lua() *script.Lua           { return h.lua }
func (h *testHost) Scripts() *script.Runner    { return h.scripts }

func (h *testHost) SaveState() {
	h.saves++
	h.game.Save()
}

func newGame(t *testing.T) (*Game, *testHost) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dev, err := storage.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	h := &testHost{
		dev:     dev,
		state:   progress.Default(),
		lua:     script.NewLua(logger),
		scripts: script.NewRunner(script.NewBank(), logger),
	}
	h.ui = ui.New(h.state)
	t.Cleanup(h.lua.Close)

	g := New()
	h.game = g
	if err := g.Load(h); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	g.Start()
	g.FileIO()
	return g, h
}

// frame runs one tick followed by the swap-phase file I/O.
func frame(g *Game, in core.Input) {
	g.Update(&in, 1.0/30)
	g.FileIO()
}

func pressX() core.Input {
	var in core.Input
	in.X.Pressed = true
	in.X.Held = true
	return in
}

func near(a, b float32) bool {
	return core.AbsF(a-b) < 0.01
}

func playerCount(t *testing.T, g *Game, dev storage.Device, n int16) int {
	t.Helper()
	data, err := storage.ReadFile(dev, g.store.Path(n))
	if err != nil {
		t.Fatalf("reading level %d: %v", n, err)
	}
	objs, err := level.ReadRecords(bytes.NewReader(data), g.reg)
	if err != nil {
		t.Fatalf("decoding level %d: %v", n, err)
	}
	count := 0
	for _, o := range objs {
		if o.Has(TypePlayer) {
			count++
		}
	}
	return count
}

func TestStartLoadsSavedLevel(t *testing.T) {
	g, h := newGame(t)

	if h.state.Mario.Level != 0 {
		t.Errorf("Level = %d, want 0", h.state.Mario.Level)
	}
	p := g.player()
	if p == nil {
		t.Fatal("no player in the first level")
	}
	if p.Pos != core.V(5, 11) || p.Size != core.V(2, 2) {
		t.Errorf("player at %v size %v", p.Pos, p.Size)
	}
	if !h.dev.Exists(g.store.Path(0)) {
		t.Error("level 0 was not saved after loading")
	}
	if h.ui.Inventory.Icons["Coffee"] == 0 {
		t.Error("inventory icons not installed")
	}
}

func TestPlayerWalksOnGround(t *testing.T) {
	g, _ := newGame(t)
	p := g.player()

	for range 30 {
		frame(g, core.Input{})
	}
	if !near(p.Pos.Y, 11) || !near(p.Pos.X, 5) {
		t.Fatalf("idle player drifted to %v", p.Pos)
	}

	for range 15 {
		frame(g, core.Input{JoyX: 1})
	}
	if p.Pos.X <= 6 {
		t.Errorf("player x = %v after walking right", p.Pos.X)
	}
	if !near(p.Pos.Y, 11) {
		t.Errorf("player y = %v, want on ground", p.Pos.Y)
	}
	if r, _ := ecs.Get[*ecs.AtlasRenderer](p); r.Flip {
		t.Error("player faces left while walking right")
	}
}

func TestPlayerJumps(t *testing.T) {
	g, _ := newGame(t)
	p := g.player()
	frame(g, core.Input{})

	for range 5 {
		frame(g, core.Input{JoyY: -1})
	}
	if p.Pos.Y >= 10 {
		t.Fatalf("player y = %v, want airborne", p.Pos.Y)
	}
	for range 90 {
		frame(g, core.Input{})
	}
	if !near(p.Pos.Y, 11) {
		t.Errorf("player y = %v, want landed", p.Pos.Y)
	}
}

func TestInteractWithTito(t *testing.T) {
	g, h := newGame(t)
	g.player().Pos = core.V(12, 11)

	in := pressX()
	g.Update(&in, 1.0/30)
	if len(h.interacted) != 1 || h.interacted[0] != "Tito" {
		t.Fatalf("interacted = %v, want [Tito]", h.interacted)
	}
	if in.X.Pressed {
		t.Error("X was not consumed")
	}

	frame(g, core.Input{})
	if len(h.interacted) != 1 {
		t.Error("interaction repeated without X")
	}
}

func TestUpdateBlockedByOverlay(t *testing.T) {
	g, h := newGame(t)
	p := g.player()
	h.ui.OpenDialog("Hi", []string{"ok"})

	for range 10 {
		frame(g, core.Input{JoyX: 1})
	}
	if p.Pos.X != 5 {
		t.Errorf("player moved to %v while a dialog was open", p.Pos)
	}
}

func TestTravelRoundTrip(t *testing.T) {
	g, h := newGame(t)

	if err := h.lua.Do("travel(1, 8, 12)"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	g.FileIO()
	if h.state.Mario.Level != 1 {
		t.Fatalf("Level = %d, want 1", h.state.Mario.Level)
	}
	if p := g.player(); p == nil || p.Pos != core.V(7, 11) {
		t.Fatalf("player after travel = %+v", p)
	}
	if n := playerCount(t, g, h.dev, 0); n != 0 {
		t.Errorf("level 0 still holds %d players", n)
	}

	// A second file I/O has nothing left to move.
	saves := h.saves
	g.FileIO()
	if h.saves != saves {
		t.Error("transfer flushed twice")
	}

	if err := h.lua.Do("travel(0, 57, 12)"); err != nil {
		t.Fatal(err)
	}
	g.FileIO()
	if h.state.Mario.Level != 0 {
		t.Fatalf("Level = %d, want 0", h.state.Mario.Level)
	}
	if got := len(g.engine.World.Query(TypePlayer)); got != 1 {
		t.Fatalf("players in level 0 = %d, want 1", got)
	}
	if p := g.player(); p.Pos != core.V(56, 11) {
		t.Errorf("player at %v, want (56, 11)", p.Pos)
	}
	if n := playerCount(t, g, h.dev, 1); n != 0 {
		t.Errorf("level 1 still holds %d players", n)
	}
}

func TestTravelRejectsUnknownLevel(t *testing.T) {
	_, h := newGame(t)
	if err := h.lua.Do("travel(9, 0, 0)"); err == nil {
		t.Error("travel to a missing level succeeded")
	}
}

func TestDoorNeedsX(t *testing.T) {
	g, h := newGame(t)
	g.player().Pos = core.V(36, 11)

	frame(g, core.Input{})
	if h.state.Mario.Level != 0 {
		t.Fatal("door used without X")
	}

	frame(g, pressX())
	if h.state.Mario.Level != 2 {
		t.Fatalf("Level = %d, want 2", h.state.Mario.Level)
	}
	if p := g.player(); p == nil || p.Pos != core.V(3, 11) {
		t.Errorf("player after door = %+v", p)
	}
}

func TestCharacterWalksAndPersists(t *testing.T) {
	g, h := newGame(t)
	if err := h.lua.Do("travel(1, 8, 12)"); err != nil {
		t.Fatal(err)
	}
	g.FileIO()

	if err := h.lua.Do(`spawn_character("Luigi", 14, 12); set_target("Luigi", 1, 12)`); err != nil {
		t.Fatalf("spawn: %v", err)
	}
	luigi := g.character("Luigi")
	if luigi == nil {
		t.Fatal("Luigi not spawned")
	}
	var obj *ecs.Object
	for _, o := range g.engine.World.Query(TypeCharacter) {
		obj = o
	}
	if obj.Pos != core.V(13, 11) {
		t.Errorf("Luigi spawned at %v, want (13, 11)", obj.Pos)
	}
	for range 10 {
		frame(g, core.Input{})
	}
	if obj.Pos.X >= 13 {
		t.Errorf("Luigi did not walk: %v", obj.Pos)
	}

	h.lua.Do("travel(0, 57, 12)")
	g.FileIO()
	h.lua.Do("travel(1, 8, 12)")
	g.FileIO()

	back := g.character("Luigi")
	if back == nil {
		t.Fatal("Luigi lost after leaving the level")
	}
	if back.Target != (core.Vec2i{X: 1, Y: 12}) {
		t.Errorf("Luigi target = %v", back.Target)
	}
}

func TestSetTargetUnknownCharacter(t *testing.T) {
	_, h := newGame(t)
	if err := h.lua.Do(`set_target("Nobody", 1, 1)`); err == nil {
		t.Error("set_target on a missing character succeeded")
	}
}

func TestUseItem(t *testing.T) {
	tests := []struct {
		item  string
		speed progress.Buf
		jump  progress.Buf
		flip  float32
	}{
		{"Coffee", progress.Buf{Timer: 10, Multiplier: 2}, progress.NoBuf, 0},
		{"Gold Coffee", progress.Buf{Timer: 20, Multiplier: 2.5}, progress.Buf{Timer: 20, Multiplier: 2.5}, 20},
		{"Firework Red", progress.NoBuf, progress.NoBuf, 0},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			g, h := newGame(t)
			g.UseItem(tt.item)
			m := h.state.Mario
			if m.SpeedBuf != tt.speed || m.JumpBuf != tt.jump || m.FlipBuf != tt.flip {
				t.Errorf("after %s: %+v", tt.item, m)
			}
		})
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists(ID) {
		t.Fatal("mario is not registered")
	}
}

func TestDump(t *testing.T) {
	g, _ := newGame(t)
	var buf bytes.Buffer
	if err := g.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test/mario/level0.lvl: 1 objects") {
		t.Errorf("Dump() = %q", out)
	}
	if !strings.Contains(out, "(5, 11) AtlasRenderer Serialize Player") {
		t.Errorf("player record missing from %q", out)
	}
	if strings.Contains(out, "level1") {
		t.Error("unvisited level listed")
	}
}
