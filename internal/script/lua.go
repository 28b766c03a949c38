package script

import (
	"fmt"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// Lua wraps the interpreter that runs story actions and conditions.
// Single-goroutine access only (the logic side of the frame loop).
type Lua struct {
	vm     *lua.LState
	logger *log.Logger
}

// NewLua creates an interpreter with the standard libraries open.
func NewLua(logger *log.Logger) *Lua {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	return &Lua{vm: vm, logger: logger}
}

// State exposes the interpreter to host functions.
func (l *Lua) State() *lua.LState {
	return l.vm
}

// Register makes fn callable from scripts as a global.
func (l *Lua) Register(name string, fn lua.LGFunction) {
	l.vm.SetGlobal(name, l.vm.NewFunction(fn))
}

// Do runs a chunk immediately.
func (l *Lua) Do(chunk string) error {
	if err := l.vm.DoString(chunk); err != nil {
		return fmt.Errorf("script: lua: %w", err)
	}
	return nil
}

// Action compiles chunk into a function for an Invoke node. Runtime errors
// are logged, not returned.
func (l *Lua) Action(chunk string) (func(), error) {
	fn, err := l.vm.LoadString(chunk)
	if err != nil {
		return nil, fmt.Errorf("script: compile action: %w", err)
	}
	return func() {
		if err := l.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}); err != nil {
			l.logger.Warn("lua action failed", "error", err)
		}
	}, nil
}

// Condition compiles a boolean expression for a WaitUntil node. A runtime
// error counts as false.
func (l *Lua) Condition(expr string) (func() bool, error) {
	fn, err := l.vm.LoadString("return " + expr)
	if err != nil {
		return nil, fmt.Errorf("script: compile condition: %w", err)
	}
	return func() bool {
		if err := l.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}); err != nil {
			l.logger.Warn("lua condition failed", "error", err)
			return false
		}
		result := l.vm.Get(-1)
		l.vm.Pop(1)
		return lua.LVAsBool(result)
	}, nil
}

// Close releases the interpreter.
func (l *Lua) Close() {
	l.vm.Close()
}
