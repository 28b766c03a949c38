package tiles

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
)

// YAMLFile is the authored form of a game's tilesets and levels.
type YAMLFile struct {
	Tilesets []YAMLTileset `yaml:"tilesets"`
	Levels   []YAMLLevel   `yaml:"levels"`
}

// YAMLTileset lists the tiles of a set. The first tile is air.
type YAMLTileset struct {
	Name  string     `yaml:"name"`
	Tiles []YAMLTile `yaml:"tiles"`
}

// YAMLTile is one tile of a set, keyed by the character used in rows.
type YAMLTile struct {
	Key   string `yaml:"key"`
	Glyph string `yaml:"glyph,omitempty"` // defaults to Key
	Color string `yaml:"color,omitempty"`
	Solid bool   `yaml:"solid,omitempty"`
}

// YAMLLevel is one level: a character grid and the objects placed on it.
type YAMLLevel struct {
	Name    string       `yaml:"name"`
	Tileset uint8        `yaml:"tileset"`
	Rows    []string     `yaml:"rows"`
	Objects []YAMLObject `yaml:"objects"`
}

// YAMLObject places an object at a cell position.
type YAMLObject struct {
	X          float32         `yaml:"x"`
	Y          float32         `yaml:"y"`
	Components []YAMLComponent `yaml:"components"`
}

// YAMLComponent names a component kind and its constructor arguments.
// Integers are stored as i32, strings NUL-terminated, floats as f32 and
// booleans as a byte.
type YAMLComponent struct {
	Type string `yaml:"type"`
	Args []any  `yaml:"args,omitempty"`
}

// ParseYAML parses a tiles file.
func ParseYAML(data []byte) (YAMLFile, error) {
	var f YAMLFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return YAMLFile{}, fmt.Errorf("tiles: yaml unmarshal: %w", err)
	}
	return f, nil
}

// Tileset converts the authored set into its runtime form.
func (t YAMLTileset) Tileset() (Tileset, error) {
	if len(t.Tiles) == 0 || len(t.Tiles) > math.MaxUint8+1 {
		return nil, fmt.Errorf("tiles: tileset %q: need 1..256 tiles, have %d", t.Name, len(t.Tiles))
	}
	set := make(Tileset, len(t.Tiles))
	for i, yt := range t.Tiles {
		glyph := yt.Glyph
		if glyph == "" {
			glyph = yt.Key
		}
		runes := []rune(glyph)
		if len(runes) != 1 || len([]rune(yt.Key)) != 1 {
			return nil, fmt.Errorf("tiles: tileset %q: tile %d: key and glyph must be one character", t.Name, i)
		}
		c := core.ColorDefault
		if yt.Color != "" {
			var ok bool
			if c, ok = core.ParseColor(yt.Color); !ok {
				return nil, fmt.Errorf("tiles: tileset %q: unknown color %q", t.Name, yt.Color)
			}
		}
		set[i] = Tile{Key: []rune(yt.Key)[0], Glyph: runes[0], Color: c, Solid: yt.Solid}
	}
	return set, nil
}

// Compile turns an authored level into the compact definition bytes that
// Engine.Load reads. Component names are resolved through reg.
func Compile(l YAMLLevel, set Tileset, reg *ecs.Registry) ([]byte, error) {
	h := len(l.Rows)
	w := 0
	for _, row := range l.Rows {
		w = max(w, len([]rune(row)))
	}
	if w > math.MaxUint16 || h > math.MaxUint16 || len(l.Objects) > math.MaxUint16 {
		return nil, fmt.Errorf("tiles: level %q is too large", l.Name)
	}

	keys := make(map[rune]uint8, len(set))
	for i, t := range set {
		keys[t.Key] = uint8(i)
	}

	var b codec.Builder
	b.WriteU16(uint16(w))
	b.WriteU16(uint16(h))
	b.WriteU8(l.Tileset)
	for y, row := range l.Rows {
		runes := []rune(row)
		for x := range w {
			if x >= len(runes) {
				b.WriteU8(0)
				continue
			}
			idx, ok := keys[runes[x]]
			if !ok {
				return nil, fmt.Errorf("tiles: level %q: unknown tile %q at %d,%d", l.Name, runes[x], x, y)
			}
			b.WriteU8(idx)
		}
	}

	b.WriteU16(uint16(len(l.Objects)))
	for i, obj := range l.Objects {
		if len(obj.Components) > math.MaxUint8 {
			return nil, fmt.Errorf("tiles: level %q: object %d has too many components", l.Name, i)
		}
		b.WriteF32(obj.X)
		b.WriteF32(obj.Y)
		b.WriteU8(uint8(len(obj.Components)))
		for _, c := range obj.Components {
			t, err := reg.NameToType(c.Type)
			if err != nil {
				return nil, fmt.Errorf("tiles: level %q: object %d: %w", l.Name, i, err)
			}
			b.WriteU16(uint16(t))
			for _, arg := range c.Args {
				if err := writeArg(&b, arg); err != nil {
					return nil, fmt.Errorf("tiles: level %q: object %d: %s: %w", l.Name, i, c.Type, err)
				}
			}
		}
	}
	return b.Bytes()
}

func writeArg(b *codec.Builder, arg any) error {
	switch v := arg.(type) {
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("argument %d overflows i32", v)
		}
		b.WriteI32(int32(v))
	case float64:
		b.WriteF32(float32(v))
	case string:
		b.WriteString(v)
	case bool:
		if v {
			b.WriteU8(1)
		} else {
			b.WriteU8(0)
		}
	default:
		return fmt.Errorf("unsupported argument %v (%T)", arg, arg)
	}
	return nil
}
