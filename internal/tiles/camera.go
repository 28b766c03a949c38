package tiles

import "github.com/vovakirdan/tui-handheld/internal/core"

// Camera maps world cells onto a viewport of the screen.
type Camera struct {
	// Pos is the world position of the viewport's top-left corner.
	Pos core.Vec2
	// Viewport is where the world is drawn on the screen.
	Viewport core.Rect
}

// Follow centres the camera on target.
func (c *Camera) Follow(target core.Vec2) {
	c.Pos = core.V(
		target.X-float32(c.Viewport.W)/2,
		target.Y-float32(c.Viewport.H)/2,
	)
}

// Clamp keeps the viewport inside bounds. An axis narrower than the
// viewport is aligned to the bounds' start.
func (c *Camera) Clamp(bounds core.Box) {
	c.Pos.X = clampAxis(c.Pos.X, bounds.Pos.X, bounds.Size.X, float32(c.Viewport.W))
	c.Pos.Y = clampAxis(c.Pos.Y, bounds.Pos.Y, bounds.Size.Y, float32(c.Viewport.H))
}

func clampAxis(pos, start, length, view float32) float32 {
	if length <= view {
		return start
	}
	return core.ClampF(pos, start, start+length-view)
}

// ToScreen converts a world position to screen cells.
func (c *Camera) ToScreen(p core.Vec2) (int, int) {
	return c.Viewport.X + core.Floor(p.X-c.Pos.X), c.Viewport.Y + core.Floor(p.Y-c.Pos.Y)
}
