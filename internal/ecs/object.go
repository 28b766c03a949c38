package ecs

import "github.com/vovakirdan/tui-handheld/internal/core"

// Object is a game object: a box in level space that owns an ordered list
// of components.
type Object struct {
	Pos  core.Vec2
	Size core.Vec2

	comps     []Component
	destroyed bool
}

// NewObject creates a detached object. Use World.Spawn to place one in a level.
func NewObject(pos core.Vec2, comps ...Component) *Object {
	o := &Object{Pos: pos}
	for _, c := range comps {
		o.Add(c)
	}
	return o
}

// Add attaches a component and runs its Setup hook.
func (o *Object) Add(c Component) {
	o.comps = append(o.comps, c)
	if s, ok := c.(Setupper); ok {
		s.Setup(o)
	}
}

// Component returns the first component of type t, or nil.
func (o *Object) Component(t Type) Component {
	for _, c := range o.comps {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// Has reports whether the object carries a component of type t.
func (o *Object) Has(t Type) bool {
	return o.Component(t) != nil
}

// Components returns the components in attach order.
// The slice must not be modified.
func (o *Object) Components() []Component {
	return o.comps
}

// Persistent reports whether the object carries the Serialize marker.
func (o *Object) Persistent() bool {
	return o.Has(TypeSerialize)
}

// Destroyed reports whether the object is marked for removal.
func (o *Object) Destroyed() bool {
	return o.destroyed
}

// Bounds returns the object's box.
func (o *Object) Bounds() core.Box {
	return core.Box{Pos: o.Pos, Size: o.Size}
}

// Center returns the centre of the object's box.
func (o *Object) Center() core.Vec2 {
	return o.Bounds().Center()
}

// Get returns the first component of concrete type T.
func Get[T Component](o *Object) (T, bool) {
	for _, c := range o.comps {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
