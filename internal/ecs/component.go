// Package ecs holds game objects, the components they own and the registry
// that turns type tags and names into components.
//
// A component is any value with a Type. Behaviour is opt-in: a component
// that also implements Updater, Collider, Serializer and so on is called at
// the matching point of the frame.
package ecs

import (
	"errors"
	"io"
)

// ErrUnknownComponent is returned when no resolver knows a tag or name.
var ErrUnknownComponent = errors.New("ecs: unknown component")

// Type is the tag of a component kind. It is unique across engine and game
// kinds.
type Type uint16

// Engine kinds. Game kinds are numbered from BuiltinCount.
const (
	TypeAtlasRenderer Type = iota
	TypeSerialize
	BuiltinCount
)

// Component is one unit of per-object data and behaviour.
type Component interface {
	Type() Type
}

// Setupper is called once when the component is attached to an object.
type Setupper interface {
	Setup(obj *Object)
}

// Updater is called every tick.
type Updater interface {
	Update(ctx *Context, obj *Object)
}

// Collider is called for every other object overlapping its owner.
// It may change both objects and request a level transfer.
type Collider interface {
	Collide(ctx *Context, obj, other *Object)
}

// Serializer writes the component payload of a level save record.
type Serializer interface {
	Serialize(w io.Writer, obj *Object) error
}

// Deserializer reads back what Serializer wrote.
type Deserializer interface {
	Deserialize(r io.Reader, obj *Object) error
}
