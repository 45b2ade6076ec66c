package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// removedGlobals are builtins that load code from outside the sandbox.
var removedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"module",
	"collectgarbage",
}

// safeModules are standard modules require may return.
var safeModules = map[string]bool{
	"string":    true,
	"table":     true,
	"math":      true,
	"coroutine": true,
}

// Sandbox restricts a Lua state to safe operations.
type Sandbox struct {
	L *lua.LState

	modules map[string]*lua.LTable
	printFn func(string)
}

// NewSandbox creates a sandbox for L.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{
		L:       L,
		modules: make(map[string]*lua.LTable),
	}
}

// Install removes unsafe builtins and replaces require and print.
func (s *Sandbox) Install() {
	for _, name := range removedGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installSafePrint()
	s.installSafeRequire()
}

// Provide makes mod loadable with require(name).
func (s *Sandbox) Provide(name string, mod *lua.LTable) {
	s.modules[name] = mod
}

// SetPrint redirects print output. Without a redirect print discards its
// arguments.
func (s *Sandbox) SetPrint(fn func(string)) {
	s.printFn = fn
}

func (s *Sandbox) installSafePrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		if s.printFn == nil {
			return 0
		}
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		s.printFn(strings.Join(parts, "\t"))
		return 0
	}))
}

// installSafeRequire replaces require with a lookup that never touches
// the filesystem.
func (s *Sandbox) installSafeRequire() {
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)

		if mod, ok := s.modules[name]; ok {
			L.Push(mod)
			return 1
		}
		if safeModules[name] {
			L.Push(L.GetGlobal(name))
			return 1
		}

		L.RaiseError("module %q is not available", name)
		return 0
	}))
}
