package mario

import (
	"io"
	"math"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
)

// Component types of the platformer. They follow the engine's built-ins.
const (
	TypeLevelTransition = ecs.BuiltinCount + iota
	TypeScrollLock
	TypePlayer
	TypeInteractible
	TypeCharacter
)

// step is the distance objects are moved by before each collision test.
const step = 0.125

// noTarget is the Character target meaning "stand still".
var noTarget = core.Vec2i{X: -1, Y: -1}

func (g *Game) components() *ecs.Table {
	return ecs.NewTable(
		ecs.Kind{
			Type: TypeLevelTransition,
			Name: "LevelTransition",
			New:  func() ecs.Component { return &LevelTransition{g: g} },
			Load: func(cur *codec.Cursor) (ecs.Component, error) {
				lvl, err := cur.ReadI32()
				if err != nil {
					return nil, err
				}
				target, err := readVec2i(cur)
				return &LevelTransition{Level: int16(lvl), Target: target, g: g}, err
			},
		},
		ecs.Kind{
			Type: TypeScrollLock,
			Name: "ScrollLock",
			New:  func() ecs.Component { return &ScrollLock{g: g} },
			Load: func(cur *codec.Cursor) (ecs.Component, error) {
				w, err := cur.ReadI32()
				return &ScrollLock{Width: float32(w), g: g}, err
			},
		},
		ecs.Kind{
			Type: TypePlayer,
			Name: "Player",
			New:  func() ecs.Component { return &Player{g: g} },
		},
		ecs.Kind{
			Type: TypeInteractible,
			Name: "Interactible",
			New:  func() ecs.Component { return &Interactible{g: g} },
			Load: func(cur *codec.Cursor) (ecs.Component, error) {
				name, err := cur.ReadString()
				return &Interactible{Name: name, g: g}, err
			},
		},
		ecs.Kind{
			Type: TypeCharacter,
			Name: "Character",
			New:  func() ecs.Component { return &Character{Target: noTarget, g: g} },
			Load: func(cur *codec.Cursor) (ecs.Component, error) {
				target, err := readVec2i(cur)
				return &Character{Target: target, g: g}, err
			},
		},
	)
}

func readVec2i(cur *codec.Cursor) (core.Vec2i, error) {
	x, err := cur.ReadI32()
	if err != nil {
		return core.Vec2i{}, err
	}
	y, err := cur.ReadI32()
	return core.Vec2i{X: x, Y: y}, err
}

// LevelTransition sends persistent objects that touch it to another level.
// The player has to press X.
type LevelTransition struct {
	Level  int16
	Target core.Vec2i

	g *Game
}

func (*LevelTransition) Type() ecs.Type { return TypeLevelTransition }

func (t *LevelTransition) Collide(ctx *ecs.Context, _, other *ecs.Object) {
	if !other.Persistent() {
		return
	}
	if other.Has(TypePlayer) {
		if !ctx.Input.X.Pressed {
			return
		}
		ctx.Input.X.Consume()
	}
	t.g.transfer(other, t.Target, t.Level)
}

// ScrollLock keeps the camera inside a horizontal room while the player's
// centre is in it.
type ScrollLock struct {
	Width float32

	g *Game
}

func (*ScrollLock) Type() ecs.Type { return TypeScrollLock }

// Setup stretches the owner over the room. The height covers anything the
// player can reach.
func (s *ScrollLock) Setup(obj *ecs.Object) {
	obj.Size = core.V(s.Width, math.MaxInt16)
	obj.Pos.Y = -math.MaxInt16 / 2
}

func (s *ScrollLock) Collide(_ *ecs.Context, obj, other *ecs.Object) {
	if !other.Has(TypePlayer) {
		return
	}
	cx := other.Center().X
	if cx < obj.Pos.X || cx >= obj.Pos.X+s.Width {
		return
	}
	room := s.g.engine.Bounds()
	room.Pos.X = obj.Pos.X
	room.Size.X = s.Width
	s.g.engine.Camera.Clamp(room)
}

// Interactible lets the player talk to its owner with X.
type Interactible struct {
	Name string

	g *Game
}

func (*Interactible) Type() ecs.Type { return TypeInteractible }

func (i *Interactible) Collide(ctx *ecs.Context, _, other *ecs.Object) {
	if !other.Has(TypePlayer) || !ctx.Input.X.Pressed {
		return
	}
	ctx.Input.X.Consume()
	i.g.host.Interact(i.Name)
}

func (i *Interactible) Serialize(w io.Writer, _ *ecs.Object) error {
	return codec.WriteString(w, i.Name)
}

func (i *Interactible) Deserialize(r io.Reader, _ *ecs.Object) error {
	var err error
	i.Name, err = codec.ReadString(r)
	return err
}

// Character walks its owner towards a target tile.
type Character struct {
	Target core.Vec2i

	anim float32
	g    *Game
}

func (*Character) Type() ecs.Type { return TypeCharacter }

func (c *Character) Update(ctx *ecs.Context, obj *ecs.Object) {
	r, _ := ecs.Get[*ecs.AtlasRenderer](obj)
	if c.Target.X < 0 || c.Target.Y < 0 {
		if r != nil {
			r.Frame = 0
		}
		return
	}

	goal := tileTarget(c.Target, obj.Size)
	d := goal.Sub(obj.Pos)
	dist := c.g.cfg.CharacterSpeed * ctx.DT
	obj.Pos.X = approach(obj.Pos.X, goal.X, dist)
	obj.Pos.Y = approach(obj.Pos.Y, goal.Y, dist)

	if r == nil {
		return
	}
	if d.X == 0 && d.Y == 0 {
		r.Frame = 0
		c.anim = 0
		return
	}
	if d.X != 0 {
		r.Flip = d.X < 0
	}
	c.anim = animate(c.anim, ctx.DT)
	r.Frame = int(c.anim)
	if d.Y < 0 {
		r.Frame = jumpFrame
	}
}

func (c *Character) Serialize(w io.Writer, _ *ecs.Object) error {
	if err := codec.WriteValue(w, c.Target.X); err != nil {
		return err
	}
	return codec.WriteValue(w, c.Target.Y)
}

func (c *Character) Deserialize(r io.Reader, _ *ecs.Object) error {
	var err error
	if c.Target.X, err = codec.ReadValue[int32](r); err != nil {
		return err
	}
	c.Target.Y, err = codec.ReadValue[int32](r)
	return err
}

// tileTarget places a box of the given size with its bottom-right corner on
// the bottom-right corner of tile t.
func tileTarget(t core.Vec2i, size core.Vec2) core.Vec2 {
	return core.V(float32(t.X+1), float32(t.Y+1)).Sub(size)
}

func approach(v, goal, dist float32) float32 {
	if core.AbsF(goal-v) <= dist {
		return goal
	}
	return v + core.Sign(goal-v)*dist
}

const (
	walkFrames = 4
	jumpFrame  = 4
	animRate   = 16
)

func animate(anim, dt float32) float32 {
	anim += dt * animRate
	for anim >= walkFrames {
		anim -= walkFrames
	}
	return anim
}
