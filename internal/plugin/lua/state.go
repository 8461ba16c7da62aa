package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one chunk, sleeps included.
const DefaultExecutionTimeout = 30 * time.Second

// State wraps a gopher-lua state with the safe libraries opened and the
// sandbox installed.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes Go callers;
// a State is normally owned by a single macro run.
type State struct {
	L *lua.LState

	mu               sync.Mutex
	executionTimeout time.Duration
	log              zerolog.Logger
	sandbox          *Sandbox
	closed           bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the per-chunk time limit. Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithStateLogger routes print output to logger.
func WithStateLogger(logger zerolog.Logger) StateOption {
	return func(s *State) {
		s.log = logger
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		executionTimeout: DefaultExecutionTimeout,
		log:              zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	s.L = L
	s.sandbox = NewSandbox(L, s.log)
	s.sandbox.Install()
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// io, os, debug and channel stay closed.
}

// DoString executes a chunk. The chunk is interrupted when ctx is done or
// the execution timeout passes.
func (s *State) DoString(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.executionTimeout, ErrExecutionTimeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
	if err != nil && errors.Is(context.Cause(ctx), ErrExecutionTimeout) {
		return ErrExecutionTimeout
	}
	return err
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// RegisterModule makes a module of Go functions available through require
// and as a global of the same name.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	s.sandbox.Allow(name, mod)
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

// Close releases the Lua state. Later calls return ErrStateClosed.
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
