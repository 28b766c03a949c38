// Package script runs the narrative graph: nodes that open dialogs, call
// actions and wait for conditions, walked by threads that survive reloads.
//
// Nodes live in a Bank and are referred to by their NodeID, the index they
// were given when added. Only ids are ever persisted.
package script

import (
	"errors"
	"fmt"
)

// ErrUnknownNode is returned for an id outside the bank.
var ErrUnknownNode = errors.New("script: unknown node")

// NodeID is the stable handle of a node in a Bank.
type NodeID uint32

// None marks the absence of a next node.
const None NodeID = ^NodeID(0)

// Host is the UI the graph talks to.
type Host interface {
	// OpenDialog shows a prompt and forgets any earlier choice.
	OpenDialog(title string, answers []string)
	// DialogChoice reports the answer picked since the last OpenDialog.
	// There is a single prompt, so every thread waiting on a dialog sees
	// the same choice until the next OpenDialog.
	DialogChoice() (int, bool)
}

// Node is one step of a script.
type Node interface {
	// Run is called once each time a thread enters the node.
	Run(h Host)
	// Update is polled every tick and reports completion.
	Update(h Host) bool
	// Next is the node to continue with once complete, or None.
	Next() NodeID
}

// Link is the single outgoing edge of a linear node.
type Link struct {
	next NodeID
}

// NewLink returns a link pointing nowhere.
func NewLink() Link {
	return Link{next: None}
}

func (l *Link) Next() NodeID { return l.next }

// SetNext points the edge at id.
func (l *Link) SetNext(id NodeID) { l.next = id }

// Chainer is a node with a settable next edge.
type Chainer interface {
	Node
	SetNext(id NodeID)
}

// Linear completes as soon as it is entered.
type Linear struct {
	Link
}

// NewLinear creates an unlinked Linear node.
func NewLinear() *Linear {
	return &Linear{Link: NewLink()}
}

func (*Linear) Run(Host)         {}
func (*Linear) Update(Host) bool { return true }

// Invoke calls Fn on entry and completes immediately.
type Invoke struct {
	Link
	Fn func()
}

// NewInvoke creates an unlinked Invoke node.
func NewInvoke(fn func()) *Invoke {
	return &Invoke{Link: NewLink(), Fn: fn}
}

func (n *Invoke) Run(Host) {
	if n.Fn != nil {
		n.Fn()
	}
}

func (*Invoke) Update(Host) bool { return true }

// WaitUntil completes on the first tick Cond holds.
type WaitUntil struct {
	Link
	Cond func() bool
}

// NewWaitUntil creates an unlinked WaitUntil node.
func NewWaitUntil(cond func() bool) *WaitUntil {
	return &WaitUntil{Link: NewLink(), Cond: cond}
}

func (*WaitUntil) Run(Host) {}

func (n *WaitUntil) Update(Host) bool {
	return n.Cond != nil && n.Cond()
}

// Unimplemented never completes. It parks a thread at a point the story
// has not been written past yet.
type Unimplemented struct{}

func (Unimplemented) Run(Host)         {}
func (Unimplemented) Update(Host) bool { return false }
func (Unimplemented) Next() NodeID     { return None }

// Dialog asks a question and branches on the answer: answer i continues
// with Actions[i].
type Dialog struct {
	Title   string
	Answers []string
	Actions []NodeID

	next NodeID
}

// NewDialog creates a dialog node. Actions is parallel to answers; missing
// entries end the thread.
func NewDialog(title string, answers []string, actions []NodeID) *Dialog {
	return &Dialog{Title: title, Answers: answers, Actions: actions, next: None}
}

func (n *Dialog) Run(h Host) {
	n.next = None
	h.OpenDialog(n.Title, n.Answers)
}

func (n *Dialog) Update(h Host) bool {
	choice, ok := h.DialogChoice()
	if !ok {
		return false
	}
	n.next = None
	if choice >= 0 && choice < len(n.Actions) {
		n.next = n.Actions[choice]
	}
	return true
}

func (n *Dialog) Next() NodeID { return n.next }

// Bank is the append-only arena of nodes.
type Bank struct {
	nodes []Node
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{}
}

// Add stores a node and returns its id.
func (b *Bank) Add(n Node) NodeID {
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

// Node returns the node with the given id.
func (b *Bank) Node(id NodeID) (Node, error) {
	if int64(id) >= int64(len(b.nodes)) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return b.nodes[id], nil
}

// Len returns the number of nodes.
func (b *Bank) Len() int {
	return len(b.nodes)
}

// Then adds n and points from's next edge at it.
func (b *Bank) Then(from NodeID, n Node) (NodeID, error) {
	prev, err := b.Node(from)
	if err != nil {
		return None, err
	}
	c, ok := prev.(Chainer)
	if !ok {
		return None, fmt.Errorf("script: node %d (%T) cannot be chained", from, prev)
	}
	id := b.Add(n)
	c.SetNext(id)
	return id, nil
}

// Chain adds nodes linked one after another and returns the first id.
// Every node but the last must be a Chainer.
func (b *Bank) Chain(nodes ...Node) (NodeID, error) {
	if len(nodes) == 0 {
		return None, errors.New("script: empty chain")
	}
	first := b.Add(nodes[0])
	prev := first
	for _, n := range nodes[1:] {
		id, err := b.Then(prev, n)
		if err != nil {
			return None, err
		}
		prev = id
	}
	return first, nil
}
