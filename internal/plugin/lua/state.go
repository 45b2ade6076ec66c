package lua

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds every script execution.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with a sandbox and per-call timeouts.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes calls
// made from Go; a Go function invoked by Lua must not call back into the
// same State.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	sandbox          *Sandbox
	closed           bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the deadline applied to each execution.
// Zero disables the deadline.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L

	openSafeLibraries(L)

	state.sandbox = NewSandbox(L)
	state.sandbox.Install()

	return state
}

// openSafeLibraries opens only the libraries without host access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenCoroutine(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	return s.exec(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk.
func (s *State) DoString(code string) error {
	return s.exec(func() error {
		return s.L.DoString(code)
	})
}

// CallFunction calls fn with args and returns its results. An empty slice
// is returned when fn returns nothing.
func (s *State) CallFunction(fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	return s.CallWith(fn, func(*Bridge) []lua.LValue { return args })
}

// CallWith calls fn with the arguments built by args. args runs under the
// state lock so it may allocate tables on the interpreter.
func (s *State) CallWith(fn lua.LValue, args func(b *Bridge) []lua.LValue) ([]lua.LValue, error) {
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: got %s", ErrNotFunction, fn.Type())
	}

	var results []lua.LValue
	err := s.exec(func() error {
		argv := args(NewBridge(s.L))
		stackTop := s.L.GetTop()
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet, Protect: true}, argv...); err != nil {
			return err
		}
		nRet := s.L.GetTop() - stackTop
		results = make([]lua.LValue, 0, max(nRet, 0))
		for i := 1; i <= nRet; i++ {
			results = append(results, s.L.Get(stackTop+i))
		}
		if nRet > 0 {
			s.L.Pop(nRet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Call calls a global Lua function by name.
func (s *State) Call(name string, args ...lua.LValue) ([]lua.LValue, error) {
	fn := s.GetGlobal(name)
	if fn == lua.LNil {
		return nil, fmt.Errorf("function %q not found", name)
	}
	return s.CallFunction(fn, args...)
}

// exec runs fn under the lock, the execution deadline and panic recovery.
func (s *State) exec(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.executionTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.executionTimeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// RegisterModule builds a module table from funcs, publishes it as a
// global and makes it loadable with require.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) *lua.LTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	s.sandbox.Provide(name, mod)
	return mod
}

// Bridge returns a value converter bound to this state.
func (s *State) Bridge() *Bridge {
	return NewBridge(s.L)
}

// Sandbox returns the state's sandbox.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. Further calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
