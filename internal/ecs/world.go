package ecs

import (
	"errors"
	"slices"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

// ErrTransferPending is returned when a second transfer is requested before
// the first was flushed.
var ErrTransferPending = errors.New("ecs: a transfer is already pending")

// Transfer is a deferred move of one object into another level.
type Transfer struct {
	Object *Object
	Level  int16
	Target core.Vec2i
}

// Context is passed to every hook of the update phase.
// It outlives the tick so a requested transfer survives until file I/O.
type Context struct {
	Input *core.Input
	DT    float32
	World *World

	transfer *Transfer
}

// Begin prepares the context for a new tick.
func (c *Context) Begin(in *core.Input, dt float32, w *World) {
	c.Input = in
	c.DT = dt
	c.World = w
}

// RequestTransfer records a pending transfer. Only one can be pending.
func (c *Context) RequestTransfer(t Transfer) error {
	if c.transfer != nil {
		return ErrTransferPending
	}
	c.transfer = &t
	return nil
}

// PendingTransfer reports whether a transfer waits to be flushed.
func (c *Context) PendingTransfer() bool {
	return c.transfer != nil
}

// TakeTransfer returns the pending transfer and clears the slot.
func (c *Context) TakeTransfer() (Transfer, bool) {
	if c.transfer == nil {
		return Transfer{}, false
	}
	t := *c.transfer
	c.transfer = nil
	return t, true
}

// World is the ordered object list of the loaded level.
type World struct {
	objects []*Object
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Spawn creates an object with the given components and appends it.
func (w *World) Spawn(pos core.Vec2, comps ...Component) *Object {
	o := NewObject(pos, comps...)
	w.objects = append(w.objects, o)
	return o
}

// Append adds an existing object at the end of the list.
func (w *World) Append(o *Object) {
	o.destroyed = false
	w.objects = append(w.objects, o)
}

// Destroy marks an object for removal at the next Compact.
// It is safe to call while iterating.
func (w *World) Destroy(o *Object) {
	o.destroyed = true
}

// Compact drops destroyed objects, keeping the order of the rest.
func (w *World) Compact() {
	n := 0
	for _, o := range w.objects {
		if !o.destroyed {
			w.objects[n] = o
			n++
		}
	}
	clear(w.objects[n:])
	w.objects = w.objects[:n]
}

// Remove takes an object out of the list now. It must not be called while
// iterating the list.
func (w *World) Remove(o *Object) bool {
	for i, obj := range w.objects {
		if obj == o {
			w.objects = slices.Delete(w.objects, i, i+1)
			return true
		}
	}
	return false
}

// RemoveWhere drops every object matching pred and returns how many went.
func (w *World) RemoveWhere(pred func(*Object) bool) int {
	removed := 0
	for _, o := range w.objects {
		if pred(o) {
			o.destroyed = true
			removed++
		}
	}
	w.Compact()
	return removed
}

// Clear drops every object.
func (w *World) Clear() {
	clear(w.objects)
	w.objects = w.objects[:0]
}

// Len returns the number of objects, destroyed ones included until Compact.
func (w *World) Len() int {
	return len(w.objects)
}

// Objects returns a snapshot of the list.
func (w *World) Objects() []*Object {
	return append([]*Object(nil), w.objects...)
}

// Query returns the live objects carrying a component of type t.
func (w *World) Query(t Type) []*Object {
	var out []*Object
	for _, o := range w.objects {
		if !o.destroyed && o.Has(t) {
			out = append(out, o)
		}
	}
	return out
}

// First returns the first live object carrying type t, or nil.
func (w *World) First(t Type) *Object {
	for _, o := range w.objects {
		if !o.destroyed && o.Has(t) {
			return o
		}
	}
	return nil
}

// Update runs one tick: Updater hooks, then collisions, then Compact.
// Both passes walk a snapshot taken at the start, so objects spawned during
// the tick are first updated on the next one.
func (w *World) Update(ctx *Context) {
	ctx.World = w
	snapshot := w.Objects()

	for _, o := range snapshot {
		for _, c := range o.comps {
			if o.destroyed {
				break
			}
			if u, ok := c.(Updater); ok {
				u.Update(ctx, o)
			}
		}
	}

	for _, a := range snapshot {
		for _, b := range snapshot {
			if a == b || a.destroyed || b.destroyed {
				continue
			}
			if !a.Bounds().Overlaps(b.Bounds()) {
				continue
			}
			for _, c := range a.comps {
				if col, ok := c.(Collider); ok {
					col.Collide(ctx, a, b)
				}
			}
		}
	}

	w.Compact()
}
