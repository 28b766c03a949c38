package progress

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

// FileName is the progress file inside a save slot.
const FileName = "progress.dat"

// Label prefixes of map entries.
const (
	InventoryPrefix = "inventory."
	DialogsPrefix   = "dialogs."
)

// Encode writes the state as a property stream.
func (s *State) Encode(w io.Writer, format codec.Format) error {
	pw := codec.NewPropertyWriter(w, format)
	pw.Write("nGames", s.NGames)
	pw.Write("money", s.Money)
	pw.Write("mario.level", s.Mario.Level)
	pw.Write("mario.speedBuf", s.Mario.SpeedBuf)
	pw.Write("mario.jumpBuf", s.Mario.JumpBuf)
	pw.Write("mario.flipBuf", s.Mario.FlipBuf)
	for item, n := range s.Inventory.All() {
		pw.Write(InventoryPrefix+item, n)
	}
	for name, node := range s.Dialogs.All() {
		pw.Write(DialogsPrefix+name, node)
	}
	if err := pw.Err(); err != nil {
		return fmt.Errorf("progress: encode: %w", err)
	}
	return nil
}

// Decode reads a property stream into s. Fields missing from the stream
// keep their current value. Reading stops at the first record that cannot
// be understood; what was read before it is kept.
func (s *State) Decode(r io.Reader, format codec.Format) error {
	pr := codec.NewPropertyReader(r, format)
	var errs []error
	// Fatal errors stay in pr.Err; only recoverable ones are collected here.
	scan := func(v any) bool {
		err := pr.Scan(v)
		if err != nil && pr.Err() == nil {
			errs = append(errs, err)
		}
		return err == nil
	}

	for pr.Next() {
		label := pr.Label()
		switch {
		case label == "nGames":
			scan(&s.NGames)
		case label == "money":
			scan(&s.Money)
		case label == "mario.level":
			scan(&s.Mario.Level)
		case label == "mario.speedBuf":
			scan(&s.Mario.SpeedBuf)
		case label == "mario.jumpBuf":
			scan(&s.Mario.JumpBuf)
		case label == "mario.flipBuf":
			scan(&s.Mario.FlipBuf)
		case strings.HasPrefix(label, InventoryPrefix):
			var n uint32
			if scan(&n) {
				s.Inventory.Set(strings.TrimPrefix(label, InventoryPrefix), n)
			}
		case strings.HasPrefix(label, DialogsPrefix):
			var node uint32
			if scan(&node) {
				s.Dialogs.Set(strings.TrimPrefix(label, DialogsPrefix), node)
			}
		default:
			pr.Skip()
		}
	}
	if err := pr.Err(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("progress: decode: %w", err)
	}
	return nil
}

// Store keeps the state of one slot on a device.
type Store struct {
	dev    storage.Device
	slot   string
	format codec.Format
	logger *log.Logger
}

// NewStore creates a store for <slot>/progress.dat.
func NewStore(dev storage.Device, slot string, format codec.Format, logger *log.Logger) *Store {
	return &Store{dev: dev, slot: slot, format: format, logger: logger}
}

// Path returns the progress file path.
func (st *Store) Path() string {
	return storage.Join(st.slot, FileName)
}

// Save writes the state, replacing the file.
func (st *Store) Save(s *State) error {
	if err := st.dev.Mkdir(st.slot); err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	f, err := st.dev.Open(st.Path(), storage.ModeWrite)
	if err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	if err := s.Encode(f, st.format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("progress: close: %w", err)
	}
	return nil
}

// Load reads the slot's state. A slot without a progress file gets the
// default state, which is written out and read back.
// Damaged records are logged and skipped.
func (st *Store) Load() (*State, error) {
	s := Default()
	f, err := st.dev.Open(st.Path(), storage.ModeRead)
	if storage.IsNotExist(err) {
		if err := st.Save(s); err != nil {
			return nil, err
		}
		f, err = st.dev.Open(st.Path(), storage.ModeRead)
	}
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}
	defer f.Close()

	if err := s.Decode(f, st.format); err != nil {
		st.logger.Warn("progress file damaged, keeping what was read", "path", st.Path(), "error", err)
	}
	return s, nil
}
