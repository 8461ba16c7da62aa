package mode

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownMode is returned when switching to a mode that was never
// registered.
var ErrUnknownMode = errors.New("unknown mode")

// Manager holds the registered modes and runs the Exit/Enter pair of each
// transition. The engine serializes calls; the lock only guards readers
// such as Engine.Mode.
type Manager struct {
	mu      sync.RWMutex
	modes   map[string]Mode
	current Mode
	context *Context
}

// NewManager creates a mode manager whose transitions receive ctx.
func NewManager(ctx *Context) *Manager {
	if ctx == nil {
		ctx = &Context{}
	}
	return &Manager{
		modes:   make(map[string]Mode),
		context: ctx,
	}
}

// Context returns the context handed to modes.
func (m *Manager) Context() *Context {
	return m.context
}

// Register adds a mode, replacing any mode of the same name.
func (m *Manager) Register(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[mode.Name()] = mode
}

// Current returns the current mode, or nil before SetInitialMode.
func (m *Manager) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentName returns the name of the current mode.
func (m *Manager) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Name()
}

// SetInitialMode enters name without exiting anything.
func (m *Manager) SetInitialMode(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.modes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	m.context.PreviousMode = ""
	m.context.NextMode = ""
	if err := next.Enter(m.context); err != nil {
		return fmt.Errorf("enter %s: %w", name, err)
	}
	m.current = next
	return nil
}

// Switch exits the current mode and enters name. Switching to the current
// mode does nothing. If Exit fails the current mode stays; if Enter fails
// the old mode has already been exited and stays current regardless.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.modes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	prev := m.current
	if next == prev {
		return nil
	}

	ctx := m.context
	ctx.PreviousMode = ""
	if prev != nil {
		ctx.NextMode = name
		if err := prev.Exit(ctx); err != nil {
			return fmt.Errorf("exit %s: %w", prev.Name(), err)
		}
		ctx.PreviousMode = prev.Name()
	}
	ctx.NextMode = ""

	if err := next.Enter(ctx); err != nil {
		return fmt.Errorf("enter %s: %w", name, err)
	}
	m.current = next
	return nil
}
