package mario

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
)

func (g *Game) registerLua() {
	vm := g.host.Lua()
	vm.Register("spawn_character", g.luaSpawnCharacter)
	vm.Register("set_target", g.luaSetTarget)
	vm.Register("travel", g.luaTravel)
}

// spawn_character(name, x, y) places a persistent, talkable character on
// tile x, y of the current level.
func (g *Game) luaSpawnCharacter(L *lua.LState) int {
	name := L.CheckString(1)
	tile := core.Vec2i{X: int32(L.CheckInt(2)), Y: int32(L.CheckInt(3))}
	if _, err := g.SpawnCharacter(name, tile); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// set_target(name, x, y) makes a character walk to tile x, y.
func (g *Game) luaSetTarget(L *lua.LState) int {
	name := L.CheckString(1)
	tile := core.Vec2i{X: int32(L.CheckInt(2)), Y: int32(L.CheckInt(3))}
	c := g.character(name)
	if c == nil {
		L.RaiseError("no character %q in this level", name)
		return 0
	}
	c.Target = tile
	return 0
}

// travel(level, x, y) sends the player to tile x, y of another level.
func (g *Game) luaTravel(L *lua.LState) int {
	lvl := L.CheckInt(1)
	tile := core.Vec2i{X: int32(L.CheckInt(2)), Y: int32(L.CheckInt(3))}
	if lvl < 0 || lvl >= g.engine.Levels() {
		L.ArgError(1, "unknown level")
		return 0
	}
	p := g.player()
	if p == nil {
		L.RaiseError("no player in this level")
		return 0
	}
	g.transfer(p, tile, int16(lvl))
	return 0
}

// SpawnCharacter adds a character to the current level.
func (g *Game) SpawnCharacter(name string, tile core.Vec2i) (*ecs.Object, error) {
	idx, ok := characterAtlases[name]
	if !ok {
		idx = AtlasTito
	}
	comps := make([]ecs.Component, 0, 4)
	for _, kind := range []string{"AtlasRenderer", "Serialize", "Interactible", "Character"} {
		c, err := g.reg.CreateNamed(kind)
		if err != nil {
			return nil, err
		}
		switch c := c.(type) {
		case *ecs.AtlasRenderer:
			c.Atlas = idx
		case *Interactible:
			c.Name = name
		}
		comps = append(comps, c)
	}
	obj := ecs.NewObject(core.Vec2{}, comps...)
	obj.Pos = tileTarget(tile, obj.Size)
	g.engine.World.Append(obj)
	return obj, nil
}

// character returns the walking component of the named character.
func (g *Game) character(name string) *Character {
	for _, obj := range g.engine.World.Query(TypeCharacter) {
		i, ok := ecs.Get[*Interactible](obj)
		if !ok || i.Name != name {
			continue
		}
		c, _ := ecs.Get[*Character](obj)
		return c
	}
	return nil
}
