package ecs

import (
	"fmt"
	"io"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
)

// Atlas is a sprite sheet: one or more frames of the same size.
type Atlas struct {
	Frames [][]string
	Color  core.Color
}

// Size returns the size of the first frame in cells.
func (a Atlas) Size() core.Vec2 {
	if len(a.Frames) == 0 {
		return core.Vec2{}
	}
	w := 0
	for _, row := range a.Frames[0] {
		w = max(w, len([]rune(row)))
	}
	return core.V(float32(w), float32(len(a.Frames[0])))
}

// Frame returns frame i, wrapping around the sheet.
func (a Atlas) Frame(i int) []string {
	if len(a.Frames) == 0 {
		return nil
	}
	return a.Frames[core.Wrap(i, len(a.Frames))]
}

// Atlases maps atlas indices to sheets. Games define theirs while loading.
type Atlases struct {
	sheets map[uint16]Atlas
}

// NewAtlases creates an empty set.
func NewAtlases() *Atlases {
	return &Atlases{sheets: make(map[uint16]Atlas)}
}

// Define registers a sheet. It panics if the index is taken.
func (s *Atlases) Define(index uint16, a Atlas) {
	if _, exists := s.sheets[index]; exists {
		panic(fmt.Sprintf("ecs: atlas %d already defined", index))
	}
	s.sheets[index] = a
}

// Get returns the sheet at index.
func (s *Atlases) Get(index uint16) (Atlas, bool) {
	a, ok := s.sheets[index]
	return a, ok
}

// AtlasRenderer draws its object with a frame of an atlas and gives the
// object its size.
type AtlasRenderer struct {
	Atlas uint16
	Frame int
	Flip  bool

	atlases *Atlases
}

func (*AtlasRenderer) Type() Type { return TypeAtlasRenderer }

// Setup sizes the owner from the atlas.
func (a *AtlasRenderer) Setup(obj *Object) {
	if sheet, ok := a.Sheet(); ok {
		obj.Size = sheet.Size()
	}
}

// Sheet returns the atlas the renderer draws from.
func (a *AtlasRenderer) Sheet() (Atlas, bool) {
	if a.atlases == nil {
		return Atlas{}, false
	}
	return a.atlases.Get(a.Atlas)
}

// Draw blits the current frame at the given screen position.
func (a *AtlasRenderer) Draw(dst *core.Screen, x, y int) {
	sheet, ok := a.Sheet()
	if !ok {
		return
	}
	dst.Blit(x, y, sheet.Frame(a.Frame), sheet.Color, a.Flip)
}

func (a *AtlasRenderer) Serialize(w io.Writer, _ *Object) error {
	if err := codec.WriteValue(w, a.Atlas); err != nil {
		return err
	}
	return codec.WriteValue(w, a.Flip)
}

func (a *AtlasRenderer) Deserialize(r io.Reader, _ *Object) error {
	var err error
	if a.Atlas, err = codec.ReadValue[uint16](r); err != nil {
		return err
	}
	a.Flip, err = codec.ReadValue[bool](r)
	return err
}

// Serialize marks its object as persistent. It has no payload.
type Serialize struct{}

func (Serialize) Type() Type { return TypeSerialize }

// Builtin returns the resolver for engine kinds. Renderers look their
// sheets up in atlases.
func Builtin(atlases *Atlases) *Table {
	return NewTable(
		Kind{
			Type: TypeAtlasRenderer,
			Name: "AtlasRenderer",
			New:  func() Component { return &AtlasRenderer{atlases: atlases} },
			Load: func(cur *codec.Cursor) (Component, error) {
				idx, err := cur.ReadI32()
				if err != nil {
					return nil, err
				}
				return &AtlasRenderer{Atlas: uint16(idx), atlases: atlases}, nil
			},
		},
		Kind{
			Type: TypeSerialize,
			Name: "Serialize",
			New:  func() Component { return Serialize{} },
		},
	)
}
