package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

// FileName is the thread file inside a save slot.
const FileName = "scripts.dat"

// maxSteps bounds how many nodes one thread may pass in a single tick.
const maxSteps = 64

// Thread is a cursor walking the graph.
type Thread struct {
	Head    NodeID // where the thread (re)starts
	Current NodeID // None until the thread has entered Head

	done bool
}

// Position returns the node a save should resume at.
func (t *Thread) Position() NodeID {
	if t.Current == None {
		return t.Head
	}
	return t.Current
}

// Runner advances every active thread once per tick.
type Runner struct {
	bank    *Bank
	threads []*Thread
	logger  *log.Logger
}

// NewRunner creates a runner over bank.
func NewRunner(bank *Bank, logger *log.Logger) *Runner {
	return &Runner{bank: bank, logger: logger}
}

// Bank returns the node bank the runner walks.
func (r *Runner) Bank() *Bank {
	return r.bank
}

// AddThread starts a thread at head on the next tick.
func (r *Runner) AddThread(head NodeID) error {
	if _, err := r.bank.Node(head); err != nil {
		return err
	}
	r.threads = append(r.threads, &Thread{Head: head, Current: None})
	return nil
}

// Threads returns a copy of the active threads in order.
func (r *Runner) Threads() []Thread {
	out := make([]Thread, 0, len(r.threads))
	for _, t := range r.threads {
		if !t.done {
			out = append(out, *t)
		}
	}
	return out
}

// Reset drops every thread.
func (r *Runner) Reset() {
	r.threads = nil
}

// Tick advances the threads that exist when it starts, each exactly once.
// Threads added by nodes during the tick first run on the next one.
func (r *Runner) Tick(h Host) {
	active := r.threads
	for _, t := range active {
		r.step(t, h)
	}

	n := 0
	for _, t := range r.threads {
		if !t.done {
			r.threads[n] = t
			n++
		}
	}
	clear(r.threads[n:])
	r.threads = r.threads[:n]
}

func (r *Runner) step(t *Thread, h Host) {
	if t.Current == None {
		t.Current = t.Head
		node, err := r.bank.Node(t.Current)
		if err != nil {
			t.done = true
			return
		}
		node.Run(h)
	}

	for range maxSteps {
		node, err := r.bank.Node(t.Current)
		if err != nil {
			t.done = true
			return
		}
		if !node.Update(h) {
			return
		}
		next := node.Next()
		if next == None {
			t.done = true
			return
		}
		nextNode, err := r.bank.Node(next)
		if err != nil {
			r.logger.Warn("script edge leads nowhere", "from", t.Current, "to", next)
			t.done = true
			return
		}
		t.Current = next
		nextNode.Run(h)
	}
}

// Save writes the resume node of every thread as a u32, in thread order.
func (r *Runner) Save(w io.Writer) error {
	for _, t := range r.threads {
		if t.done {
			continue
		}
		if err := codec.WriteValue(w, uint32(t.Position())); err != nil {
			return fmt.Errorf("script: save: %w", err)
		}
	}
	return nil
}

// Load replaces the threads with ones resuming at the ids read from r.
// Ids outside the bank are skipped and reported as ErrUnknownNode once the
// rest has been loaded.
func (r *Runner) Load(rd io.Reader) error {
	r.Reset()
	br := bufio.NewReader(rd)
	var errs []error
	for {
		id, err := codec.ReadValue[uint32](br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("script: load: %w", err))
			break
		}
		if err := r.AddThread(NodeID(id)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveFile writes <slot>/scripts.dat.
func (r *Runner) SaveFile(dev storage.Device, slot string) error {
	if err := dev.Mkdir(slot); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	f, err := dev.Open(storage.Join(slot, FileName), storage.ModeWrite)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	if err := r.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads <slot>/scripts.dat. Without a file the runner starts
// fresh with a single thread at root.
func (r *Runner) LoadFile(dev storage.Device, slot string, root NodeID) error {
	f, err := dev.Open(storage.Join(slot, FileName), storage.ModeRead)
	if storage.IsNotExist(err) {
		r.Reset()
		return r.AddThread(root)
	}
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}
