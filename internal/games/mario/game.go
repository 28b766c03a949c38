// Package mario implements the story platformer: tile levels, a player with
// run/jump physics, characters that walk on script command, and level
// transfers that are written to the save slot between frames.
package mario

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/config"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
	"github.com/vovakirdan/tui-handheld/internal/level"
	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/registry"
	"github.com/vovakirdan/tui-handheld/internal/storage"
	"github.com/vovakirdan/tui-handheld/internal/tiles"
	"github.com/vovakirdan/tui-handheld/internal/ui"
)

//go:embed levels.yaml
var levelsYAML []byte

// ID is the registry id and the game's directory in a save slot.
const ID = "mario"

// configPath stores the custom config path set via CLI
var configPath string

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// Game is the platformer.
type Game struct {
	cfg     config.MarioConfig
	host    registry.Host
	logger  *log.Logger
	atlases *ecs.Atlases
	reg     *ecs.Registry
	engine  *tiles.Engine
	store   *level.Store
	ctx     ecs.Context

	// nextLevel is the level to load at the next file I/O, or -1.
	nextLevel int16
}

// New creates a new platformer instance.
func New() *Game {
	return &Game{nextLevel: -1}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return ID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return "Super Mario Story"
}

// Load builds the component registry and the levels and registers the
// script functions.
func (g *Game) Load(h registry.Host) error {
	cfg, err := config.LoadMario(configPath)
	if err != nil {
		return fmt.Errorf("mario: %w", err)
	}
	g.cfg = cfg
	g.host = h
	g.logger = h.Logger().WithPrefix(ID)

	g.atlases = ecs.NewAtlases()
	defineAtlases(g.atlases)
	g.reg = ecs.NewRegistry(ecs.Builtin(g.atlases), g.components())

	def, err := tiles.ParseYAML(levelsYAML)
	if err != nil {
		return fmt.Errorf("mario: %w", err)
	}
	sets := make([]tiles.Tileset, 0, len(def.Tilesets))
	for _, ts := range def.Tilesets {
		set, err := ts.Tileset()
		if err != nil {
			return fmt.Errorf("mario: %w", err)
		}
		sets = append(sets, set)
	}
	g.engine = tiles.NewEngine(g.reg, sets)
	for _, l := range def.Levels {
		if int(l.Tileset) >= len(sets) {
			return fmt.Errorf("mario: level %q: unknown tileset %d", l.Name, l.Tileset)
		}
		data, err := tiles.Compile(l, sets[l.Tileset], g.reg)
		if err != nil {
			return fmt.Errorf("mario: %w", err)
		}
		g.engine.AddLevel(data)
	}

	rc := h.Config()
	g.engine.Camera.Viewport = core.NewRect(0, 1, rc.ScreenW, rc.ScreenH-1)
	g.store = level.NewStore(h.Device(), h.Slot(), ID, g.reg, g.logger)

	icons := h.UI().Inventory.Icons
	if icons == nil {
		icons = make(map[string]rune, len(itemIcons))
	}
	maps.Copy(icons, itemIcons)
	h.UI().Inventory.Icons = icons

	g.registerLua()
	return nil
}

// Start schedules the saved level to be loaded at the next file I/O.
func (g *Game) Start() {
	st := g.host.State()
	g.nextLevel = max(st.Mario.Level, 0)
	st.Mario.Level = -1
	g.ctx = ecs.Context{}
}

// Update advances the level unless a load is pending or an overlay is open.
func (g *Game) Update(in *core.Input, dt float32) {
	if g.nextLevel != -1 {
		return
	}
	if g.host.UI().Blocking() {
		return
	}
	g.ctx.Begin(in, dt, g.engine.World)
	g.engine.World.Update(&g.ctx)
}

// Draw renders the level and the money counter.
func (g *Game) Draw(dst *core.Screen) {
	if g.nextLevel != -1 {
		dst.DrawTextCentered(dst.Height()/2, "...", core.ColorGray)
		return
	}
	g.engine.Draw(dst)
	dst.DrawTextColor(0, 0, fmt.Sprintf("%d$", g.host.State().Money), core.ColorMagenta)
}

// FileIO flushes a pending transfer and performs a pending level change.
// It runs while the display holds the frame.
func (g *Game) FileIO() {
	flushed, err := g.store.Flush(g.engine.World, &g.ctx)
	if err != nil {
		g.logger.Warn("transfer failed", "error", err)
	}
	if flushed {
		g.host.SaveState()
	}

	if g.nextLevel != -1 {
		g.Save()
		g.loadNextLevel()
		g.host.SaveState()
	}
}

// Save writes the persistent objects of the current level.
func (g *Game) Save() {
	lvl := g.host.State().Mario.Level
	if lvl < 0 {
		return
	}
	if err := g.store.Save(g.engine.World, lvl); err != nil {
		g.logger.Warn("level save failed", "level", lvl, "error", err)
	}
}

func (g *Game) loadNextLevel() {
	st := g.host.State()
	st.Mario.Level = g.nextLevel
	g.nextLevel = -1

	if err := g.engine.Load(int(st.Mario.Level)); err != nil {
		g.logger.Error("level load failed", "level", st.Mario.Level, "error", err)
		return
	}
	if _, err := g.store.Load(g.engine.World, st.Mario.Level); err != nil {
		g.logger.Warn("level save unreadable", "level", st.Mario.Level, "error", err)
	}
	if p := g.player(); p != nil {
		g.engine.Camera.Follow(p.Center())
		g.engine.Camera.Clamp(g.engine.Bounds())
	}
}

// Dump lists the saved objects of every level of the slot.
func (g *Game) Dump(w io.Writer) error {
	for n := range g.engine.Levels() {
		path := g.store.Path(int16(n))
		data, err := storage.ReadFile(g.host.Device(), path)
		if storage.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}

		objs, readErr := level.ReadRecords(bytes.NewReader(data), g.reg)
		fmt.Fprintf(w, "%s: %d objects\n", path, len(objs))
		for _, obj := range objs {
			names := make([]string, 0, len(obj.Components()))
			for _, c := range obj.Components() {
				name, err := g.reg.TypeToName(c.Type())
				if err != nil {
					name = fmt.Sprint(c.Type())
				}
				names = append(names, name)
			}
			fmt.Fprintf(w, "  (%g, %g) %s\n", obj.Pos.X, obj.Pos.Y, strings.Join(names, " "))
		}
		if readErr != nil {
			fmt.Fprintf(w, "  damaged: %v\n", readErr)
		}
	}
	return nil
}

// UseItem applies an inventory item.
func (g *Game) UseItem(item string) {
	m := &g.host.State().Mario
	switch item {
	case "Coffee":
		m.SpeedBuf = progress.Buf{Timer: 10, Multiplier: 2}
	case "Gold Coffee":
		m.SpeedBuf = progress.Buf{Timer: 20, Multiplier: 2.5}
		m.JumpBuf = progress.Buf{Timer: 20, Multiplier: 2.5}
		m.FlipBuf = 20
	default:
		g.host.UI().Message(ui.Player, "I can't use it here.")
	}
}

// BuyItem thanks the vendor.
func (g *Game) BuyItem(item string) {
	g.host.UI().Message(ui.Player, fmt.Sprintf("Got %s!", item))
}

// transfer moves obj to tile target of level lvl at the next file I/O.
func (g *Game) transfer(obj *ecs.Object, target core.Vec2i, lvl int16) {
	if err := g.ctx.RequestTransfer(ecs.Transfer{Object: obj, Level: lvl, Target: target}); err != nil {
		g.logger.Debug("transfer dropped", "level", lvl, "error", err)
		return
	}
	obj.Pos = tileTarget(target, obj.Size)
	if obj.Has(TypePlayer) {
		g.nextLevel = lvl
	}
}

func (g *Game) player() *ecs.Object {
	return g.engine.World.First(TypePlayer)
}

// Register the game with the registry
func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	})
}
