// Package progress holds the root save record of a slot: money, inventory,
// per-game progress and the dialogs bound to characters.
package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned by Buy when money is short.
	ErrInsufficientFunds = errors.New("progress: insufficient funds")
	// ErrNotEnoughItems is returned when taking more than the inventory holds.
	ErrNotEnoughItems = errors.New("progress: not enough items")
)

// Buf is a timed multiplier. It is active while Timer is positive.
type Buf struct {
	Timer      float32
	Multiplier float32
}

// NoBuf is an expired buff.
var NoBuf = Buf{Timer: 0, Multiplier: 1}

// Value returns the multiplier, or 1 once the buff has run out.
func (b Buf) Value() float32 {
	if b.Timer <= 0 {
		return 1
	}
	return b.Multiplier
}

// Active reports whether time is left.
func (b Buf) Active() bool {
	return b.Timer > 0
}

func (b *Buf) tick(dt float32) {
	if b.Timer <= 0 {
		return
	}
	b.Timer -= dt
	if b.Timer <= 0 {
		*b = NoBuf
	}
}

// Mario is the progress of the platformer.
type Mario struct {
	Level    int16
	SpeedBuf Buf
	JumpBuf  Buf
	FlipBuf  float32
}

// State is the root save record.
type State struct {
	NGames    uint8
	Money     uint32
	Inventory *Map[string, uint32]
	Mario     Mario
	// Dialogs maps a character name to the script node talking to it.
	Dialogs *Map[string, uint32]
}

// Default returns the state of a fresh slot.
func Default() *State {
	return &State{
		NGames:    3,
		Money:     2000,
		Inventory: NewMap[string, uint32](),
		Mario: Mario{
			SpeedBuf: NoBuf,
			JumpBuf:  NoBuf,
		},
		Dialogs: NewMap[string, uint32](),
	}
}

// Count returns how many of item the player holds.
func (s *State) Count(item string) uint32 {
	n, _ := s.Inventory.Get(item)
	return n
}

// Has reports whether the player holds at least one item.
func (s *State) Has(item string) bool {
	return s.Count(item) > 0
}

// Give adds n of item.
func (s *State) Give(item string, n uint32) {
	s.Inventory.Set(item, s.Count(item)+n)
}

// Take removes n of item. The entry disappears at zero.
func (s *State) Take(item string, n uint32) error {
	have := s.Count(item)
	if have < n {
		return fmt.Errorf("%w: have %d %s, need %d", ErrNotEnoughItems, have, item, n)
	}
	if have == n {
		s.Inventory.Delete(item)
		return nil
	}
	s.Inventory.Set(item, have-n)
	return nil
}

// UseOne consumes a single item.
func (s *State) UseOne(item string) error {
	return s.Take(item, 1)
}

// Buy pays price and adds one item.
func (s *State) Buy(item string, price uint32) error {
	if s.Money < price {
		return fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientFunds, item, price, s.Money)
	}
	s.Money -= price
	s.Give(item, 1)
	return nil
}

// Tick runs the buff timers down by dt seconds.
func (s *State) Tick(dt float32) {
	s.Mario.SpeedBuf.tick(dt)
	s.Mario.JumpBuf.tick(dt)
	if s.Mario.FlipBuf > 0 {
		s.Mario.FlipBuf = max(s.Mario.FlipBuf-dt, 0)
	}
}
