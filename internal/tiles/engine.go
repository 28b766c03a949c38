// Package tiles is the tile engine of the platformer: a solid/air grid with
// a camera, and the compact level definitions the world is rebuilt from.
//
// A definition is little-endian:
//
//	u16 width, u16 height, u8 tileset
//	width*height tile indices, row by row
//	u16 object count
//	per object: f32 x, f32 y, u8 component count,
//	            per component: u16 type, then the kind's arguments
package tiles

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
)

// ErrUnknownLevel is returned for a level index that was never added.
var ErrUnknownLevel = errors.New("tiles: unknown level")

const edge = 1e-4

// Tile is one kind of grid cell.
type Tile struct {
	Key   rune
	Glyph rune
	Color core.Color
	Solid bool
}

// Tileset is indexed by the tile bytes of a map. Index 0 is air.
type Tileset []Tile

// Map is the grid of the loaded level.
type Map struct {
	W, H    int
	Tileset uint8
	Tiles   []uint8
}

// At returns the tile index at x, y, or 0 outside the map.
func (m *Map) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return 0
	}
	return m.Tiles[y*m.W+x]
}

// Engine owns the world of the current level.
type Engine struct {
	World  *ecs.World
	Camera Camera
	Map    Map

	reg      *ecs.Registry
	tilesets []Tileset
	levels   [][]byte
	current  int
}

// NewEngine creates an engine that resolves level components through reg.
func NewEngine(reg *ecs.Registry, tilesets []Tileset) *Engine {
	return &Engine{
		World:    ecs.NewWorld(),
		reg:      reg,
		tilesets: tilesets,
		current:  -1,
	}
}

// AddLevel stores a compiled definition and returns its index.
func (e *Engine) AddLevel(def []byte) int {
	e.levels = append(e.levels, def)
	return len(e.levels) - 1
}

// Levels returns how many levels are defined.
func (e *Engine) Levels() int {
	return len(e.levels)
}

// Current returns the loaded level, or -1.
func (e *Engine) Current() int {
	return e.current
}

// Load replaces the grid and the world with the definition of level index.
// Persistent objects in the definition are first-visit defaults; a saved
// level file loaded afterwards replaces them.
func (e *Engine) Load(index int) error {
	if index < 0 || index >= len(e.levels) {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, index)
	}
	cur := codec.NewCursor(e.levels[index])

	m, err := e.readMap(cur)
	if err != nil {
		return fmt.Errorf("tiles: level %d: %w", index, err)
	}
	objects, err := e.readObjects(cur)
	if err != nil {
		return fmt.Errorf("tiles: level %d: %w", index, err)
	}

	e.Map = m
	e.World.Clear()
	for _, obj := range objects {
		e.World.Append(obj)
	}
	e.current = index
	return nil
}

func (e *Engine) readMap(cur *codec.Cursor) (Map, error) {
	w, err := cur.ReadU16()
	if err != nil {
		return Map{}, err
	}
	h, err := cur.ReadU16()
	if err != nil {
		return Map{}, err
	}
	ts, err := cur.ReadU8()
	if err != nil {
		return Map{}, err
	}
	if int(ts) >= len(e.tilesets) {
		return Map{}, fmt.Errorf("unknown tileset %d", ts)
	}
	raw, err := cur.ReadBytes(int(w) * int(h))
	if err != nil {
		return Map{}, err
	}
	for i, t := range raw {
		if int(t) >= len(e.tilesets[ts]) {
			return Map{}, fmt.Errorf("tile %d at %d out of tileset %d", t, i, ts)
		}
	}
	return Map{W: int(w), H: int(h), Tileset: ts, Tiles: append([]uint8(nil), raw...)}, nil
}

func (e *Engine) readObjects(cur *codec.Cursor) ([]*ecs.Object, error) {
	n, err := cur.ReadU16()
	if err != nil {
		return nil, err
	}
	objects := make([]*ecs.Object, 0, n)
	for i := range int(n) {
		x, err := cur.ReadF32()
		if err != nil {
			return nil, err
		}
		y, err := cur.ReadF32()
		if err != nil {
			return nil, err
		}
		count, err := cur.ReadU8()
		if err != nil {
			return nil, err
		}
		comps := make([]ecs.Component, 0, count)
		for range int(count) {
			t, err := cur.ReadU16()
			if err != nil {
				return nil, err
			}
			c, err := e.reg.Load(ecs.Type(t), cur)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", i, err)
			}
			comps = append(comps, c)
		}
		objects = append(objects, ecs.NewObject(core.V(x, y), comps...))
	}
	return objects, nil
}

// Size returns the map size in cells.
func (e *Engine) Size() core.Vec2 {
	return core.V(float32(e.Map.W), float32(e.Map.H))
}

// Bounds returns the map as a box.
func (e *Engine) Bounds() core.Box {
	return core.Box{Size: e.Size()}
}

// Tile returns the tile at x, y.
func (e *Engine) Tile(x, y int) Tile {
	if int(e.Map.Tileset) >= len(e.tilesets) {
		return Tile{}
	}
	return e.tilesets[e.Map.Tileset][e.Map.At(x, y)]
}

// Solid reports whether the cell blocks movement. The side walls of the
// map are solid; above and below it is open.
func (e *Engine) Solid(x, y int) bool {
	if x < 0 || x >= e.Map.W {
		return true
	}
	if y < 0 || y >= e.Map.H {
		return false
	}
	return e.Tile(x, y).Solid
}

// Collides reports whether any cell under b is solid.
func (e *Engine) Collides(b core.Box) bool {
	x0, y0 := core.Floor(b.Pos.X), core.Floor(b.Pos.Y)
	x1 := core.Floor(b.Pos.X + b.Size.X - edge)
	y1 := core.Floor(b.Pos.Y + b.Size.Y - edge)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if e.Solid(x, y) {
				return true
			}
		}
	}
	return false
}

// Draw renders the visible tiles and every object with an atlas renderer.
func (e *Engine) Draw(dst *core.Screen) {
	vp := e.Camera.Viewport
	ox, oy := core.Floor(e.Camera.Pos.X), core.Floor(e.Camera.Pos.Y)
	for sy := 0; sy < vp.H; sy++ {
		for sx := 0; sx < vp.W; sx++ {
			if e.Map.At(ox+sx, oy+sy) == 0 {
				continue
			}
			t := e.Tile(ox+sx, oy+sy)
			dst.Put(vp.X+sx, vp.Y+sy, t.Glyph, t.Color)
		}
	}

	for _, obj := range e.World.Objects() {
		r, ok := ecs.Get[*ecs.AtlasRenderer](obj)
		if !ok {
			continue
		}
		x, y := e.Camera.ToScreen(obj.Pos)
		r.Draw(dst, x, y)
	}
}
