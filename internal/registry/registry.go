// Package registry provides a global registry for game factories and the
// contract between games and the console.
// Games register themselves in init() functions, allowing the platform
// to discover and instantiate games without hardcoded dependencies.
package registry

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/script"
	"github.com/vovakirdan/tui-handheld/internal/storage"
	"github.com/vovakirdan/tui-handheld/internal/ui"
)

// Game is the contract a game plugs into the console with.
// Games contain pure logic with no external dependencies (especially no Bubble Tea).
// The console handles input sampling, timing, persistence and rendering.
type Game interface {
	// ID returns a unique identifier for this game (e.g., "mario").
	// Used for CLI commands and as the game's directory in a save slot.
	ID() string

	// Title returns a human-readable name for the console menu.
	Title() string

	// Load registers the game's components, levels and script functions.
	// Called once when the console boots, before any state is read.
	Load(h Host) error

	// Start is called when the player picks the game in the menu.
	Start()

	// Update advances the game by dt seconds.
	// Buttons consumed by the game must be consumed on in.
	Update(in *core.Input, dt float32)

	// Draw renders the game into the provided screen buffer.
	// The screen is pre-cleared before this call.
	Draw(dst *core.Screen)
}

// FileIOer is implemented by games with deferred disk work. FileIO runs
// only while the display holds the frame.
type FileIOer interface {
	FileIO()
}

// Saver is implemented by games that persist more than the progress state.
type Saver interface {
	Save()
}

// ItemUser is implemented by games that react to inventory items.
type ItemUser interface {
	UseItem(item string)
}

// ItemBuyer is implemented by games that react to shop purchases.
type ItemBuyer interface {
	BuyItem(item string)
}

// Dumper is implemented by games that can describe their saved data.
type Dumper interface {
	Dump(w io.Writer) error
}

// Host is what the console exposes to a game.
type Host interface {
	Logger() *log.Logger
	Config() core.RuntimeConfig

	// Device, Slot and Format locate the save slot.
	Device() storage.Device
	Slot() string
	Format() codec.Format

	// State is the progress record; SaveState writes it and the script threads.
	State() *progress.State
	SaveState()

	// Interact is called when the player talks to something named.
	Interact(name string)

	UI() *ui.UI
	Lua() *script.Lua
	Scripts() *script.Runner
}

// GameInfo contains metadata about a registered game.
type GameInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a game factory to the registry.
// Typically called from a game's init() function.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	g := f()
	titles[id] = g.Title()
}

// List returns information about all registered games, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new game by its ID.
// Returns an error if the game ID is not registered.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	return f(), nil
}

// Exists checks if a game with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
