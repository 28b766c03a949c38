// Package core provides the primitive types shared by the console runtime:
// geometry, the screen buffer games draw into, and the per-frame input snapshot.
// It has no external dependencies so game logic stays pure and testable.
package core

import "math"

// Rect represents an integer axis-aligned box in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
func (r Rect) Intersects(other Rect) bool {
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Vec2 is a position or extent in world units (one unit is one tile).
type Vec2 struct {
	X, Y float32
}

// V creates a Vec2.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v*k.
func (v Vec2) Scale(k float32) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Vec2i is an integer tile coordinate.
type Vec2i struct {
	X, Y int32
}

// Vec returns the coordinate as a Vec2.
func (v Vec2i) Vec() Vec2 {
	return Vec2{X: float32(v.X), Y: float32(v.Y)}
}

// Box is a float axis-aligned bounding box used for object overlap tests.
type Box struct {
	Pos, Size Vec2
}

// Overlaps reports whether two boxes share any area.
// Touching edges do not count as overlap.
func (b Box) Overlaps(o Box) bool {
	if b.Pos.X >= o.Pos.X+o.Size.X || o.Pos.X >= b.Pos.X+b.Size.X {
		return false
	}
	if b.Pos.Y >= o.Pos.Y+o.Size.Y || o.Pos.Y >= b.Pos.Y+b.Size.Y {
		return false
	}
	return true
}

// Center returns the center point of the box.
func (b Box) Center() Vec2 {
	return Vec2{X: b.Pos.X + b.Size.X/2, Y: b.Pos.Y + b.Size.Y/2}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float32 value to be within [min, max].
func ClampF(val, min, max float32) float32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Wrap maps v into [0, n), wrapping negative values around.
func Wrap(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float32) float32 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

// AbsF returns the absolute value of a float32.
func AbsF(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// Floor returns the largest integer not above v.
func Floor(v float32) int {
	return int(math.Floor(float64(v)))
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
