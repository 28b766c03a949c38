// Package frame runs the console's frame loop: sample input, update and
// draw into a back buffer, hand the buffer to the display worker, and do
// file I/O while the worker holds it.
package frame

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vovakirdan/tui-handheld/internal/core"
)

// Phase is where the logic side of the loop currently is.
type Phase int32

const (
	// Writing: logic updates state and draws into the back buffer.
	Writing Phase = iota
	// WaitingToSwap: the buffer is offered to the display worker.
	WaitingToSwap
	// Swapping: the worker holds the buffer; file I/O runs now.
	Swapping
	// WaitingToWrite: logic waits for a buffer to draw the next frame into.
	WaitingToWrite
)

func (p Phase) String() string {
	switch p {
	case Writing:
		return "writing"
	case WaitingToSwap:
		return "waiting-to-swap"
	case Swapping:
		return "swapping"
	case WaitingToWrite:
		return "waiting-to-write"
	default:
		return "unknown"
	}
}

// Logic is what the loop drives. All three calls happen on the logic
// goroutine and never overlap.
type Logic interface {
	Update(in *core.Input, dt float32)
	Draw(dst *core.Screen)
	// FileIO runs once per frame while the display worker holds the frame.
	FileIO()
}

// Display shows a finished frame. It is only called from the worker.
type Display interface {
	Present(src *core.Screen)
}

// InputSource reports the current level of every input pin.
type InputSource interface {
	Pins() core.Pins
}

// Scheduler owns the two frame buffers and the display worker.
type Scheduler struct {
	logic   Logic
	display Display
	input   InputSource
	ctrl    *core.Controller

	back  *core.Screen
	front *core.Screen

	handoff chan *core.Screen
	done    chan *core.Screen

	phase    atomic.Int32
	tickRate int
	now      func() time.Time
	last     time.Time

	startOnce sync.Once
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New creates a scheduler for frames of the given size.
func New(cfg core.RuntimeConfig, logic Logic, display Display, input InputSource, opts ...Option) *Scheduler {
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	s := &Scheduler{
		logic:    logic,
		display:  display,
		input:    input,
		ctrl:     core.NewController(),
		back:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		front:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		handoff:  make(chan *core.Screen),
		done:     make(chan *core.Screen),
		tickRate: cfg.TickRate,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current phase. Safe to call from any goroutine.
func (s *Scheduler) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Scheduler) setPhase(p Phase) {
	s.phase.Store(int32(p))
}

// Start launches the display worker. It stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.worker(ctx)
	})
}

func (s *Scheduler) worker(ctx context.Context) {
	for {
		select {
		case buf := <-s.handoff:
			s.display.Present(buf)
			old := s.front
			s.front = buf
			select {
			case s.done <- old:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Step runs one frame. It returns ctx.Err() if cancelled while waiting for
// the worker.
func (s *Scheduler) Step(ctx context.Context) error {
	s.Start(ctx)

	s.setPhase(Writing)
	now := s.now()
	dt := float32(1) / float32(s.tickRate)
	if !s.last.IsZero() {
		dt = float32(now.Sub(s.last).Seconds())
	}
	s.last = now

	in := s.ctrl.Sample(s.input.Pins(), now)
	s.logic.Update(&in, dt)
	s.back.Clear()
	s.logic.Draw(s.back)

	s.setPhase(WaitingToSwap)
	select {
	case s.handoff <- s.back:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.setPhase(Swapping)
	s.logic.FileIO()

	s.setPhase(WaitingToWrite)
	select {
	case s.back = <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.setPhase(Writing)
	return nil
}

// Run steps at the configured tick rate until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	tickDuration := time.Second / time.Duration(s.tickRate)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	for {
		if err := s.Step(ctx); err != nil {
			return err
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
