// Package console is the root of the runtime: it owns a save slot, the
// progress state, the script threads and the overlays, and switches between
// the game menu and the running game.
//
// A Console is a frame.Logic. All of its methods run on the frame loop's
// logic goroutine.
package console

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/config"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/frame"
	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/registry"
	"github.com/vovakirdan/tui-handheld/internal/script"
	"github.com/vovakirdan/tui-handheld/internal/storage"
	"github.com/vovakirdan/tui-handheld/internal/story"
	"github.com/vovakirdan/tui-handheld/internal/ui"
)

// Console is one handheld bound to one save slot.
type Console struct {
	cfg    config.ConsoleConfig
	rc     core.RuntimeConfig
	format codec.Format
	dev    storage.Device
	slot   string
	logger *log.Logger
	now    func() time.Time

	state    *progress.State
	progress *progress.Store
	bank     *script.Bank
	scripts  *script.Runner
	lua      *script.Lua
	story    *story.Story
	ui       *ui.UI

	games  []registry.Game
	active registry.Game
	menu   menu

	lastSave     time.Time
	resetPending bool
	loaded       bool
}

// Option configures a Console.
type Option func(*Console)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

// WithGames replaces the registered games.
func WithGames(games ...registry.Game) Option {
	return func(c *Console) {
		c.games = games
	}
}

// New creates a console for slot on dev. An empty slot uses the configured
// one. Nothing is read until Load.
func New(cfg config.ConsoleConfig, dev storage.Device, slot string, logger *log.Logger, opts ...Option) (*Console, error) {
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	if slot == "" {
		slot = cfg.Slot
	}
	if !storage.ValidSlot(slot) {
		return nil, fmt.Errorf("console: invalid slot name %q", slot)
	}

	c := &Console{
		cfg:    cfg,
		rc:     cfg.Runtime(),
		format: format,
		dev:    dev,
		slot:   slot,
		logger: logger.WithPrefix("console"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.games == nil {
		for _, info := range registry.List() {
			g, err := registry.Create(info.ID)
			if err != nil {
				return nil, err
			}
			c.games = append(c.games, g)
		}
	}
	return c, nil
}

// Load boots the console: games, then the story, then the slot's progress
// and script threads. It ends in the menu.
func (c *Console) Load() error {
	c.bank = script.NewBank()
	c.scripts = script.NewRunner(c.bank, c.logger)
	c.lua = script.NewLua(c.logger)
	c.state = progress.Default()
	c.ui = ui.New(c.state)
	c.ui.SetClock(c.now)
	c.ui.OnBuy = c.onBuy
	c.ui.OnUse = c.onUse
	c.progress = progress.NewStore(c.dev, c.slot, c.format, c.logger)

	for _, g := range c.games {
		if err := g.Load(c); err != nil {
			return fmt.Errorf("console: load %s: %w", g.ID(), err)
		}
	}

	st, err := story.LoadDefault(c.bank, c, c.logger)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	c.story = st

	if err := c.loadSlot(); err != nil {
		return err
	}
	c.logger.Info("console ready", "slot", c.slot, "games", len(c.games))
	return nil
}

// loadSlot reads progress and threads, creating them when the slot is new,
// and returns to the menu.
func (c *Console) loadSlot() error {
	state, err := c.progress.Load()
	if err != nil {
		return err
	}
	c.state = state
	c.ui.SetState(state)

	if err := c.scripts.LoadFile(c.dev, c.slot, c.story.Root); err != nil {
		c.logger.Warn("script threads damaged", "slot", c.slot, "error", err)
	}

	c.active = nil
	c.menu = menu{}
	c.lastSave = c.now()
	c.loaded = true
	return nil
}

// SaveState writes progress, the script threads and the active game's data.
// Failures are logged.
func (c *Console) SaveState() {
	if err := c.progress.Save(c.state); err != nil {
		c.logger.Warn("progress save failed", "error", err)
	}
	if err := c.scripts.SaveFile(c.dev, c.slot); err != nil {
		c.logger.Warn("script save failed", "error", err)
	}
	if s, ok := c.active.(registry.Saver); ok {
		s.Save()
	}
}

// Update advances the menu, or the overlays, the scripts and the game.
func (c *Console) Update(in *core.Input, dt float32) {
	if c.active == nil {
		c.updateMenu(in, dt)
		return
	}

	c.ui.Update(in)
	c.scripts.Tick(c.ui)
	c.active.Update(in, dt)
	c.state.Tick(dt)
}

// Draw renders the menu, or the game under the overlays.
func (c *Console) Draw(dst *core.Screen) {
	if c.active == nil {
		c.drawMenu(dst)
		return
	}
	c.active.Draw(dst)
	c.ui.Draw(dst)
}

// FileIO performs a requested slot reset, the autosave and the game's
// deferred disk work.
func (c *Console) FileIO() {
	if c.resetPending {
		c.resetPending = false
		c.reset()
	}

	if c.cfg.Autosave > 0 && c.now().Sub(c.lastSave) >= c.cfg.Autosave {
		c.lastSave = c.now()
		c.SaveState()
	}

	if f, ok := c.active.(registry.FileIOer); ok {
		f.FileIO()
	}
}

func (c *Console) reset() {
	c.logger.Info("resetting slot", "slot", c.slot)
	if err := c.dev.Remove(c.slot); err != nil {
		c.logger.Warn("slot reset failed", "slot", c.slot, "error", err)
		return
	}
	c.scripts.Reset()
	if err := c.loadSlot(); err != nil {
		c.logger.Error("slot reload failed", "slot", c.slot, "error", err)
	}
}

// Start runs the game with the given id, as if picked in the menu.
func (c *Console) Start(id string) error {
	for _, g := range c.games {
		if g.ID() == id {
			c.start(g)
			return nil
		}
	}
	return fmt.Errorf("console: unknown game %q", id)
}

func (c *Console) start(g registry.Game) {
	c.logger.Debug("starting game", "game", g.ID())
	c.active = g
	g.Start()
}

// Active returns the running game, or nil in the menu.
func (c *Console) Active() registry.Game {
	return c.active
}

// Games returns every loaded game, unlocked or not.
func (c *Console) Games() []registry.Game {
	return c.games
}

// Close saves one last time and releases the script VM. Later calls do
// nothing.
func (c *Console) Close() {
	if c.loaded {
		c.SaveState()
		c.loaded = false
	}
	if c.lua != nil {
		c.lua.Close()
		c.lua = nil
	}
}

func (c *Console) onBuy(item string) {
	if b, ok := c.active.(registry.ItemBuyer); ok {
		b.BuyItem(item)
	}
}

func (c *Console) onUse(item string) {
	if u, ok := c.active.(registry.ItemUser); ok {
		u.UseItem(item)
	}
}

// Host

func (c *Console) Logger() *log.Logger        { return c.logger }
func (c *Console) Config() core.RuntimeConfig { return c.rc }
func (c *Console) Device() storage.Device     { return c.dev }
func (c *Console) Slot() string               { return c.slot }
func (c *Console) Format() codec.Format       { return c.format }
func (c *Console) State() *progress.State     { return c.state }
func (c *Console) UI() *ui.UI                 { return c.ui }
func (c *Console) Lua() *script.Lua           { return c.lua }
func (c *Console) Scripts() *script.Runner    { return c.scripts }

// Interact starts the conversation or shop bound to name.
func (c *Console) Interact(name string) {
	if !c.story.Interact(name) {
		c.logger.Debug("nothing to say", "name", name)
	}
}

var (
	_ registry.Host = (*Console)(nil)
	_ story.Host    = (*Console)(nil)
	_ frame.Logic   = (*Console)(nil)
)
