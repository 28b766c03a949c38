// Package level persists the objects of a level that carry the Serialize
// marker.
//
// A level file is a flat sequence of records, read to end of file:
//
//	pos.x f32 | pos.y f32 | count u8 | count × (name NUL | payload)
//
// The payload layout belongs to each component. Records of objects that
// moved in from another level are appended, so a file may hold the same
// object more than once after repeated visits.
package level

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

// Store reads and writes the level files of one game in one save slot.
type Store struct {
	dev    storage.Device
	slot   string
	game   string
	reg    *ecs.Registry
	logger *log.Logger
}

// NewStore creates a store for <slot>/<game>/.
func NewStore(dev storage.Device, slot, game string, reg *ecs.Registry, logger *log.Logger) *Store {
	return &Store{dev: dev, slot: slot, game: game, reg: reg, logger: logger}
}

// Dir returns the directory holding the level files.
func (s *Store) Dir() string {
	return storage.Join(s.slot, s.game)
}

// Path returns the file of level n.
func (s *Store) Path(n int16) string {
	return storage.Join(s.slot, s.game, fmt.Sprintf("level%d.lvl", n))
}

// Save writes every persistent object of the world to level n, replacing
// the file.
func (s *Store) Save(w *ecs.World, n int16) error {
	var buf bytes.Buffer
	for _, obj := range w.Objects() {
		if obj.Destroyed() || !obj.Persistent() {
			continue
		}
		if err := WriteRecord(&buf, s.reg, obj); err != nil {
			return fmt.Errorf("level: save %d: %w", n, err)
		}
	}
	return s.write(n, storage.ModeWrite, buf.Bytes())
}

// Append adds one object record to the end of level n.
func (s *Store) Append(obj *ecs.Object, n int16) error {
	var buf bytes.Buffer
	if err := WriteRecord(&buf, s.reg, obj); err != nil {
		return fmt.Errorf("level: append to %d: %w", n, err)
	}
	return s.write(n, storage.ModeAppend, buf.Bytes())
}

func (s *Store) write(n int16, mode storage.Mode, data []byte) error {
	if err := s.dev.Mkdir(s.Dir()); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	f, err := s.dev.Open(s.Path(n), mode)
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("level: write %d: %w", n, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("level: close %d: %w", n, err)
	}
	return nil
}

// Load restores the persistent objects of level n into the world and
// returns how many were spawned.
//
// A missing file means the level has no saved objects and leaves the world
// untouched. Otherwise the live persistent objects are dropped first. A
// record naming an unknown component ends the read; the objects restored
// before it are kept and the problem is logged.
func (s *Store) Load(w *ecs.World, n int16) (int, error) {
	f, err := s.dev.Open(s.Path(n), storage.ModeRead)
	if storage.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("level: load %d: %w", n, err)
	}
	defer f.Close()

	w.RemoveWhere((*ecs.Object).Persistent)

	objs, err := ReadRecords(f, s.reg)
	if err != nil {
		s.logger.Warn("level file damaged, keeping what was read",
			"path", s.Path(n), "objects", len(objs), "error", err)
	}
	for _, obj := range objs {
		w.Append(obj)
	}
	return len(objs), nil
}

// Flush moves the pending transfer, if any, out of the world and into the
// destination level file. It reports whether a transfer was flushed.
func (s *Store) Flush(w *ecs.World, ctx *ecs.Context) (bool, error) {
	tr, ok := ctx.TakeTransfer()
	if !ok {
		return false, nil
	}
	w.Remove(tr.Object)
	if err := s.Append(tr.Object, tr.Level); err != nil {
		return true, err
	}
	return true, nil
}

// WriteRecord encodes one object.
func WriteRecord(w io.Writer, reg *ecs.Registry, obj *ecs.Object) error {
	comps := obj.Components()
	if len(comps) > 0xFF {
		return fmt.Errorf("object has %d components", len(comps))
	}
	if err := codec.WriteValue(w, obj.Pos.X); err != nil {
		return err
	}
	if err := codec.WriteValue(w, obj.Pos.Y); err != nil {
		return err
	}
	if err := codec.WriteValue(w, uint8(len(comps))); err != nil {
		return err
	}
	for _, c := range comps {
		name, err := reg.TypeToName(c.Type())
		if err != nil {
			return err
		}
		if err := codec.WriteString(w, name); err != nil {
			return err
		}
		if s, ok := c.(ecs.Serializer); ok {
			if err := s.Serialize(w, obj); err != nil {
				return fmt.Errorf("serialize %s: %w", name, err)
			}
		}
	}
	return nil
}

// ReadRecords decodes records until end of input. On error it returns the
// objects decoded before the bad record.
func ReadRecords(r io.Reader, reg *ecs.Registry) ([]*ecs.Object, error) {
	br := bufio.NewReader(r)
	var objs []*ecs.Object
	for {
		obj, err := readRecord(br, reg)
		if errors.Is(err, io.EOF) {
			return objs, nil
		}
		if err != nil {
			return objs, fmt.Errorf("record %d: %w", len(objs), err)
		}
		objs = append(objs, obj)
	}
}

// readRecord returns io.EOF only when the input ends cleanly between records.
func readRecord(r io.Reader, reg *ecs.Registry) (*ecs.Object, error) {
	x, err := codec.ReadValue[float32](r)
	if err != nil {
		return nil, err
	}
	y, err := codec.ReadValue[float32](r)
	if err != nil {
		return nil, truncated(err)
	}
	count, err := codec.ReadValue[uint8](r)
	if err != nil {
		return nil, truncated(err)
	}

	obj := ecs.NewObject(core.V(x, y))
	for range count {
		name, err := codec.ReadString(r)
		if err != nil {
			return nil, truncated(err)
		}
		c, err := reg.CreateNamed(name)
		if err != nil {
			return nil, err
		}
		if d, ok := c.(ecs.Deserializer); ok {
			if err := d.Deserialize(r, obj); err != nil {
				return nil, fmt.Errorf("deserialize %s: %w", name, truncated(err))
			}
		}
		obj.Add(c)
	}
	return obj, nil
}

func truncated(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
