package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/console"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/frame"
)

// ProgramDisplay implements frame.Display by rendering each presented frame
// and sending it to a Bubble Tea program.
type ProgramDisplay struct {
	painter *Painter

	mu      sync.Mutex
	program *tea.Program
}

// NewProgramDisplay creates a display that paints with p.
func NewProgramDisplay(p *Painter) *ProgramDisplay {
	return &ProgramDisplay{painter: p}
}

// Attach sets the program frames are sent to.
func (d *ProgramDisplay) Attach(p *tea.Program) {
	d.mu.Lock()
	d.program = p
	d.mu.Unlock()
}

// Present renders src and hands it to the program. It blocks until the
// program takes the frame or has exited.
func (d *ProgramDisplay) Present(src *core.Screen) {
	view := d.painter.Render(src)

	d.mu.Lock()
	p := d.program
	d.mu.Unlock()
	if p != nil {
		p.Send(FrameMsg(view))
	}
}

// Session runs one console behind one terminal program.
type Session struct {
	console *console.Console
	sched   *frame.Scheduler
	program *tea.Program
	logger  *log.Logger
}

// NewSession wires a loaded console to a new program. r is the terminal's
// renderer; nil uses standard output.
func NewSession(c *console.Console, rc core.RuntimeConfig, r *lipgloss.Renderer, logger *log.Logger, opts ...tea.ProgramOption) *Session {
	latch := NewLatch(DefaultJoyHold, DefaultButtonHold)
	display := NewProgramDisplay(NewPainter(r))
	model := NewModel(latch, DefaultKeyMap(), "handheld · "+c.Slot(), r)
	program := tea.NewProgram(model, opts...)
	display.Attach(program)

	return &Session{
		console: c,
		sched:   frame.New(rc, c, display, latch),
		program: program,
		logger:  logger,
	}
}

// Program returns the terminal program.
func (s *Session) Program() *tea.Program {
	return s.program
}

// Start runs the frame loop in the background until ctx ends, then closes
// the console. The returned channel yields the loop's error.
func (s *Session) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := s.sched.Run(ctx)
		s.console.Close()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			s.logger.Error("frame loop stopped", "slot", s.console.Slot(), "error", err)
		}
		done <- err
	}()
	return done
}

// Run starts the frame loop and the program and returns when the user
// quits or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := s.Start(ctx)
	go func() {
		<-ctx.Done()
		s.program.Quit()
	}()

	_, err := s.program.Run()
	cancel()
	if loopErr := <-done; err == nil {
		err = loopErr
	}
	return err
}
