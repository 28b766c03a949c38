package mario

import (
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
)

// maxUnstick bounds how far the player is pushed up out of solid tiles.
const maxUnstick = 64

// Player is the controllable character.
type Player struct {
	vel      core.Vec2
	onGround bool
	jumping  bool
	jumpHeld bool
	airTime  float32 // seconds since the player last stood on ground
	anim     float32

	g *Game
}

func (*Player) Type() ecs.Type { return TypePlayer }

// Setup points the owner's renderer at the player sheet, so a player saved
// mid-flip comes back upright.
func (p *Player) Setup(obj *ecs.Object) {
	if r, ok := ecs.Get[*ecs.AtlasRenderer](obj); ok {
		r.Atlas = AtlasMario
		obj.Size = p.g.atlasSize(AtlasMario)
	}
}

func (p *Player) Update(ctx *ecs.Context, obj *ecs.Object) {
	cfg := p.g.cfg
	st := p.g.host.State()
	in := ctx.Input
	dt := ctx.DT

	speedMul := st.Mario.SpeedBuf.Value()
	gravityMul := float32(1)
	jump := in.JoyY < 0

	if p.onGround {
		p.airTime = 0
		p.jumping = false
	} else {
		p.airTime += dt
	}

	// Press jump, with coyote time after walking off an edge.
	if jump && !p.jumpHeld && p.airTime < float32(cfg.CoyoteTime.Seconds()) {
		p.vel.Y = cfg.JumpVelocity * st.Mario.JumpBuf.Value()
		p.jumping = true
		p.jumpHeld = true
		p.airTime = float32(cfg.CoyoteTime.Seconds())
		gravityMul = 0
	}

	// Release jump: cut the ascent short.
	if p.jumpHeld && !jump {
		p.jumpHeld = false
		if p.jumping && p.vel.Y < 0 {
			p.vel.Y *= cfg.JumpCut
		}
		p.jumping = false
	}

	// Jump hang near the apex.
	if p.jumping && core.AbsF(p.vel.Y) < cfg.HangSpeed {
		speedMul *= cfg.HangAccel
		gravityMul *= cfg.HangGravity
	}

	target := float32(in.JoyX) * cfg.RunSpeed * speedMul
	p.vel.X += (target - p.vel.X) * min(cfg.AccelRate*dt, 1)
	if core.AbsF(p.vel.X) < 0.05 {
		p.vel.X = 0
	}
	p.vel.Y += cfg.Gravity * gravityMul * dt

	p.animate(obj, float32(in.JoyX), dt, st.Mario.FlipBuf > 0)
	p.move(obj, dt)

	cam := &p.g.engine.Camera
	cam.Follow(obj.Center())
	cam.Clamp(p.g.engine.Bounds())
}

func (p *Player) move(obj *ecs.Object, dt float32) {
	eng := p.g.engine
	for range maxUnstick {
		if !eng.Collides(obj.Bounds()) {
			break
		}
		obj.Pos.Y -= step
	}

	if p.g.slide(obj, p.vel.X*dt, 0) {
		p.vel.X = 0
	}

	p.onGround = false
	if p.g.slide(obj, 0, p.vel.Y*dt) {
		p.onGround = p.vel.Y > 0
		p.vel.Y = 0
	}
}

func (p *Player) animate(obj *ecs.Object, dir, dt float32, flipping bool) {
	r, ok := ecs.Get[*ecs.AtlasRenderer](obj)
	if !ok {
		return
	}

	window := p.g.cfg.HangSpeed * 1.5
	if flipping && p.jumping && core.AbsF(p.vel.Y) < window {
		r.Atlas = AtlasMarioFlip
		frames := p.g.atlasFrames(AtlasMarioFlip)
		t := (p.vel.Y + window) / (2 * window)
		r.Frame = core.Clamp(int(t*float32(frames)), 0, frames-1)
		return
	}
	r.Atlas = AtlasMario

	if dir != 0 {
		r.Flip = dir < 0
		p.anim = animate(p.anim, dt)
		r.Frame = int(p.anim)
	} else {
		p.anim = 0
		r.Frame = 0
	}
	if p.vel.Y < 0 {
		r.Frame = jumpFrame
	}
}

// slide moves obj by (dx, dy) in small steps and stops before the first
// solid tile. It reports whether it was stopped.
func (g *Game) slide(obj *ecs.Object, dx, dy float32) bool {
	dist := max(core.AbsF(dx), core.AbsF(dy))
	if dist == 0 {
		return false
	}
	n := int(dist/step) + 1
	sx, sy := dx/float32(n), dy/float32(n)
	for range n {
		obj.Pos.X += sx
		obj.Pos.Y += sy
		if g.engine.Collides(obj.Bounds()) {
			obj.Pos.X -= sx
			obj.Pos.Y -= sy
			return true
		}
	}
	return false
}
