package lua

import (
	"strings"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts what a chunk can reach.
type Sandbox struct {
	L   *lua.LState
	log zerolog.Logger

	modules map[string]lua.LValue
}

// safeModules are the built-in libraries require may return.
var safeModules = []string{lua.StringLibName, lua.TabLibName, lua.MathLibName}

// NewSandbox creates a sandbox for the Lua state.
func NewSandbox(L *lua.LState, log zerolog.Logger) *Sandbox {
	return &Sandbox{
		L:       L,
		log:     log,
		modules: make(map[string]lua.LValue),
	}
}

// Install removes loaders, replaces print and require, and clears the
// package search paths.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	for _, name := range safeModules {
		s.modules[name] = s.L.GetGlobal(name)
	}
	s.installPrint()
	s.installRequire()

	if pkg, ok := s.L.GetGlobal(lua.LoadLibName).(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}
	s.L.SetGlobal(lua.LoadLibName, lua.LNil)
}

// Allow makes mod loadable through require.
func (s *Sandbox) Allow(name string, mod lua.LValue) {
	s.modules[name] = mod
}

// installPrint sends print output to the log instead of stdout.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		s.log.Info().Str("source", "lua").Msg(strings.Join(parts, "\t"))
		return 0
	}))
}

// installRequire replaces require with a lookup in the allowed modules.
func (s *Sandbox) installRequire() {
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		mod, ok := s.modules[name]
		if !ok {
			L.RaiseError("%s: %q", ErrModuleUnavailable, name)
			return 0
		}
		L.Push(mod)
		return 1
	}))
}
