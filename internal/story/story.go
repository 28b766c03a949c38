// Package story builds the narrative graph from a YAML description and
// exposes the progress state to its Lua snippets.
//
// Nodes are added to the bank in file order, so a node's id is its index in
// the file. Bindings in the progress state store those ids, which keeps
// saved games valid as long as nodes are only appended.
package story

import (
	_ "embed"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-handheld/internal/progress"
	"github.com/vovakirdan/tui-handheld/internal/script"
	"github.com/vovakirdan/tui-handheld/internal/ui"
)

//go:embed story.yaml
var defaultYAML []byte

// ErrUnknownID is returned for a node reference that is not defined.
var ErrUnknownID = errors.New("story: unknown node id")

// Node kinds understood in the YAML file.
const (
	KindDialog        = "dialog"
	KindInvoke        = "invoke"
	KindWait          = "wait"
	KindWaitLevel     = "wait_level"
	KindLinear        = "linear"
	KindUnimplemented = "unimplemented"
)

// Host is the part of the console the story talks to.
type Host interface {
	State() *progress.State
	UI() *ui.UI
	Lua() *script.Lua
	Scripts() *script.Runner
}

// Shop is a named vendor the player can interact with.
type Shop struct {
	Title string    `yaml:"title"`
	Items []ui.Item `yaml:"items"`
}

type answerDef struct {
	Text string `yaml:"text"`
	Next string `yaml:"next"`
}

type nodeDef struct {
	ID      string      `yaml:"id"`
	Kind    string      `yaml:"kind"`
	Title   string      `yaml:"title"`
	Answers []answerDef `yaml:"answers"`
	Lua     string      `yaml:"lua"`
	Level   int16       `yaml:"level"`
	Next    string      `yaml:"next"`
}

type file struct {
	Root  string          `yaml:"root"`
	Shops map[string]Shop `yaml:"shops"`
	Nodes []nodeDef       `yaml:"nodes"`
}

// Story is the loaded graph plus the vendors.
type Story struct {
	Root  script.NodeID
	Shops map[string]Shop

	ids    map[string]script.NodeID
	host   Host
	logger *log.Logger
}

// LoadDefault loads the built-in story into bank.
func LoadDefault(bank *script.Bank, host Host, logger *log.Logger) (*Story, error) {
	return Load(defaultYAML, bank, host, logger)
}

// Load parses data, adds its nodes to bank and registers the story's Lua
// functions with the host interpreter.
func Load(data []byte, bank *script.Bank, host Host, logger *log.Logger) (*Story, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("story: parse: %w", err)
	}

	s := &Story{
		Shops:  f.Shops,
		ids:    make(map[string]script.NodeID, len(f.Nodes)),
		host:   host,
		logger: logger,
	}
	if s.Shops == nil {
		s.Shops = map[string]Shop{}
	}
	s.registerLua()

	nodes := make([]script.Node, len(f.Nodes))
	for i, def := range f.Nodes {
		if _, dup := s.ids[def.ID]; dup || def.ID == "" {
			return nil, fmt.Errorf("story: node %d: bad or duplicate id %q", i, def.ID)
		}
		n, err := s.build(def)
		if err != nil {
			return nil, fmt.Errorf("story: node %q: %w", def.ID, err)
		}
		nodes[i] = n
		s.ids[def.ID] = bank.Add(n)
	}

	// Second pass: every id is known now.
	for i, def := range f.Nodes {
		if err := s.link(nodes[i], def); err != nil {
			return nil, fmt.Errorf("story: node %q: %w", def.ID, err)
		}
	}

	root, err := s.resolve(f.Root)
	if err != nil {
		return nil, fmt.Errorf("story: root: %w", err)
	}
	if root == script.None {
		return nil, errors.New("story: root is not set")
	}
	s.Root = root
	return s, nil
}

func (s *Story) build(def nodeDef) (script.Node, error) {
	switch def.Kind {
	case KindDialog:
		answers := make([]string, len(def.Answers))
		for i, a := range def.Answers {
			answers[i] = a.Text
		}
		return script.NewDialog(def.Title, answers, nil), nil
	case KindInvoke:
		fn, err := s.host.Lua().Action(def.Lua)
		if err != nil {
			return nil, err
		}
		return script.NewInvoke(fn), nil
	case KindWait:
		cond, err := s.host.Lua().Condition(def.Lua)
		if err != nil {
			return nil, err
		}
		return script.NewWaitUntil(cond), nil
	case KindWaitLevel:
		level := def.Level
		return script.NewWaitUntil(func() bool {
			return s.host.State().Mario.Level == level
		}), nil
	case KindLinear, "":
		return script.NewLinear(), nil
	case KindUnimplemented:
		return script.Unimplemented{}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", def.Kind)
	}
}

func (s *Story) link(n script.Node, def nodeDef) error {
	if d, ok := n.(*script.Dialog); ok {
		d.Actions = make([]script.NodeID, len(def.Answers))
		for i, a := range def.Answers {
			id, err := s.resolve(a.Next)
			if err != nil {
				return fmt.Errorf("answer %d: %w", i, err)
			}
			d.Actions[i] = id
		}
		if def.Next != "" {
			return errors.New("dialogs branch through answers, not next")
		}
		return nil
	}

	id, err := s.resolve(def.Next)
	if err != nil {
		return err
	}
	c, ok := n.(script.Chainer)
	if !ok {
		if id != script.None {
			return fmt.Errorf("%s node cannot have a next", def.Kind)
		}
		return nil
	}
	c.SetNext(id)
	return nil
}

// resolve maps a YAML reference to a node id. The empty reference is None.
func (s *Story) resolve(ref string) (script.NodeID, error) {
	if ref == "" {
		return script.None, nil
	}
	id, ok := s.ids[ref]
	if !ok {
		return script.None, fmt.Errorf("%w: %q", ErrUnknownID, ref)
	}
	return id, nil
}

// Node returns the id of a named node.
func (s *Story) Node(ref string) (script.NodeID, bool) {
	id, ok := s.ids[ref]
	return id, ok
}

// Bind makes interacting with name start a thread at the node ref.
func (s *Story) Bind(name, ref string) error {
	id, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if id == script.None {
		return fmt.Errorf("story: bind %q: empty node reference", name)
	}
	s.host.State().Dialogs.Set(name, uint32(id))
	return nil
}

// Unbind forgets the conversation bound to name.
func (s *Story) Unbind(name string) {
	s.host.State().Dialogs.Delete(name)
}

// Interact starts the conversation bound to name, or opens its shop.
// It reports whether anything happened.
func (s *Story) Interact(name string) bool {
	if id, ok := s.host.State().Dialogs.Get(name); ok {
		if err := s.host.Scripts().AddThread(script.NodeID(id)); err != nil {
			s.logger.Warn("stale dialog binding", "name", name, "node", id, "error", err)
			return false
		}
		return true
	}
	if shop, ok := s.Shops[name]; ok {
		title := shop.Title
		if title == "" {
			title = name
		}
		s.host.UI().OpenShop(title, shop.Items)
		return true
	}
	return false
}

func (s *Story) registerLua() {
	vm := s.host.Lua()

	vm.Register("bind", func(L *lua.LState) int {
		if err := s.Bind(L.CheckString(1), L.CheckString(2)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	})
	vm.Register("unbind", func(L *lua.LState) int {
		s.Unbind(L.CheckString(1))
		return 0
	})
	vm.Register("give", func(L *lua.LState) int {
		s.host.State().Give(L.CheckString(1), amount(L, 2))
		return 0
	})
	vm.Register("take", func(L *lua.LState) int {
		err := s.host.State().Take(L.CheckString(1), amount(L, 2))
		L.Push(lua.LBool(err == nil))
		return 1
	})
	vm.Register("has", func(L *lua.LState) int {
		L.Push(lua.LBool(s.host.State().Has(L.CheckString(1))))
		return 1
	})
	vm.Register("count", func(L *lua.LState) int {
		L.Push(lua.LNumber(s.host.State().Count(L.CheckString(1))))
		return 1
	})
	vm.Register("money", func(L *lua.LState) int {
		L.Push(lua.LNumber(s.host.State().Money))
		return 1
	})
	vm.Register("add_money", func(L *lua.LState) int {
		st := s.host.State()
		v := int64(st.Money) + L.CheckInt64(1)
		st.Money = uint32(min(max(v, 0), math.MaxUint32))
		return 0
	})
	vm.Register("level", func(L *lua.LState) int {
		L.Push(lua.LNumber(s.host.State().Mario.Level))
		return 1
	})
	vm.Register("message", func(L *lua.LState) int {
		s.host.UI().Message(L.CheckString(1), L.CheckString(2))
		return 0
	})
}

// amount reads an optional item count, 1 by default.
func amount(L *lua.LState, n int) uint32 {
	v := L.OptInt64(n, 1)
	if v < 0 || v > math.MaxUint32 {
		L.ArgError(n, "amount out of range")
	}
	return uint32(v)
}
