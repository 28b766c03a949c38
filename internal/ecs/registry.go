package ecs

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/tui-handheld/internal/codec"
)

// Resolver knows how to build some set of component kinds.
// The second result of each lookup reports whether the kind is known.
type Resolver interface {
	Create(t Type) (Component, bool)
	Load(t Type, cur *codec.Cursor) (Component, bool, error)
	Name(t Type) (string, bool)
	Type(name string) (Type, bool)
}

// Kind describes one component kind for a Table.
type Kind struct {
	Type Type
	Name string
	// New returns a default component.
	New func() Component
	// Load builds a component from level definition bytes.
	// When nil, the kind takes no arguments and New is used.
	Load func(cur *codec.Cursor) (Component, error)
}

// Table is a map-backed Resolver.
type Table struct {
	byType map[Type]Kind
	byName map[string]Type
}

// NewTable creates a table from kinds. It panics on a duplicate type or name.
func NewTable(kinds ...Kind) *Table {
	t := &Table{
		byType: make(map[Type]Kind, len(kinds)),
		byName: make(map[string]Type, len(kinds)),
	}
	for _, k := range kinds {
		t.Add(k)
	}
	return t
}

// Add registers one more kind. It panics on a duplicate type or name.
func (t *Table) Add(k Kind) {
	if _, exists := t.byType[k.Type]; exists {
		panic(fmt.Sprintf("ecs: component type %d already registered", k.Type))
	}
	if _, exists := t.byName[k.Name]; exists {
		panic(fmt.Sprintf("ecs: component %q already registered", k.Name))
	}
	if k.New == nil {
		panic(fmt.Sprintf("ecs: component %q has no constructor", k.Name))
	}
	t.byType[k.Type] = k
	t.byName[k.Name] = k.Type
}

// Create implements Resolver.
func (t *Table) Create(typ Type) (Component, bool) {
	k, ok := t.byType[typ]
	if !ok {
		return nil, false
	}
	return k.New(), true
}

// Load implements Resolver.
func (t *Table) Load(typ Type, cur *codec.Cursor) (Component, bool, error) {
	k, ok := t.byType[typ]
	if !ok {
		return nil, false, nil
	}
	if k.Load == nil {
		return k.New(), true, nil
	}
	c, err := k.Load(cur)
	if err != nil {
		return nil, true, fmt.Errorf("ecs: load %s: %w", k.Name, err)
	}
	return c, true, nil
}

// Name implements Resolver.
func (t *Table) Name(typ Type) (string, bool) {
	k, ok := t.byType[typ]
	return k.Name, ok
}

// Type implements Resolver.
func (t *Table) Type(name string) (Type, bool) {
	typ, ok := t.byName[name]
	return typ, ok
}

// Types returns the registered types in ascending order.
func (t *Table) Types() []Type {
	types := make([]Type, 0, len(t.byType))
	for typ := range t.byType {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Registry chains resolvers. Lookups try them in order, so the engine
// table added first wins over game tables.
type Registry struct {
	resolvers []Resolver
}

// NewRegistry creates a registry from an ordered resolver list.
func NewRegistry(resolvers ...Resolver) *Registry {
	r := &Registry{}
	for _, res := range resolvers {
		r.Use(res)
	}
	return r
}

// Use appends a resolver to the chain. Tables are checked against the
// chain and a clashing type or name panics.
func (r *Registry) Use(res Resolver) {
	if t, ok := res.(*Table); ok {
		for _, typ := range t.Types() {
			if name, known := r.name(typ); known {
				panic(fmt.Sprintf("ecs: component type %d already registered as %q", typ, name))
			}
			name, _ := t.Name(typ)
			if _, known := r.typ(name); known {
				panic(fmt.Sprintf("ecs: component %q already registered", name))
			}
		}
	}
	r.resolvers = append(r.resolvers, res)
}

// Create builds a default component of type t.
func (r *Registry) Create(t Type) (Component, error) {
	for _, res := range r.resolvers {
		if c, ok := res.Create(t); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: type %d", ErrUnknownComponent, t)
}

// Load builds a component of type t from level definition bytes.
func (r *Registry) Load(t Type, cur *codec.Cursor) (Component, error) {
	for _, res := range r.resolvers {
		c, ok, err := res.Load(t, cur)
		if !ok {
			continue
		}
		return c, err
	}
	return nil, fmt.Errorf("%w: type %d", ErrUnknownComponent, t)
}

// TypeToName returns the symbolic name used in save files.
func (r *Registry) TypeToName(t Type) (string, error) {
	if name, ok := r.name(t); ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: type %d", ErrUnknownComponent, t)
}

// NameToType resolves a name read from a save file.
func (r *Registry) NameToType(name string) (Type, error) {
	if t, ok := r.typ(name); ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
}

// CreateNamed builds a default component from its save file name.
func (r *Registry) CreateNamed(name string) (Component, error) {
	t, err := r.NameToType(name)
	if err != nil {
		return nil, err
	}
	return r.Create(t)
}

func (r *Registry) name(t Type) (string, bool) {
	for _, res := range r.resolvers {
		if name, ok := res.Name(t); ok {
			return name, true
		}
	}
	return "", false
}

func (r *Registry) typ(name string) (Type, bool) {
	for _, res := range r.resolvers {
		if t, ok := res.Type(name); ok {
			return t, true
		}
	}
	return 0, false
}
