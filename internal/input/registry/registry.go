// Package registry stores the live input bindings of an applied mapping.
//
// The registry owns, per input id, the down, loop and up handlers of a
// binding, the pressed flag, and the cancel-group state of cancelable skills.
// It also owns the set of active loop handlers that the scheduler drains
// every tick.
//
// A Registry is not safe for concurrent use. Handlers call back into the
// registry (a CancelSkill down cancels every group, a wheel reads pressed
// flags) so it has no lock of its own; the engine's single-writer lock
// guards it.
package registry

import (
	"sort"

	"github.com/dshills/touchmask/internal/input/key"
)

// Handler is a binding callback.
type Handler func()

// Binding is the set of handlers registered for one input id.
type Binding struct {
	Down Handler
	Loop Handler
	Up   Handler

	// Cancelable puts the binding in a cancel group that CancelAll can
	// interrupt.
	Cancelable bool
}

// GroupState is the state of a cancel group.
type GroupState uint8

const (
	// Idle means no gesture is in flight; an up is a no-op.
	Idle GroupState = iota
	// Armed means a down ran and its loop and up are live.
	Armed
)

// String returns the state name.
func (s GroupState) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

type entry struct {
	binding Binding
	group   GroupState
}

type loopSlot struct {
	owner string
	fn    Handler
}

// Registry maps input ids to bindings.
type Registry struct {
	entries map[key.ID]*entry
	pressed map[key.ID]bool
	loops   []loopSlot
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[key.ID]*entry),
		pressed: make(map[key.ID]bool),
	}
}

// Register stores b for id, replacing any previous binding.
func (r *Registry) Register(id key.ID, b Binding) {
	if old, ok := r.entries[id]; ok {
		r.DeactivateLoop(string(id))
		old.group = Idle
	}
	r.entries[id] = &entry{binding: b}
}

// Unregister removes the binding for id. It reports whether one existed.
func (r *Registry) Unregister(id key.ID) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	r.DeactivateLoop(string(id))
	delete(r.entries, id)
	return true
}

// Swap replaces the binding for id and returns the previous one.
func (r *Registry) Swap(id key.ID, b Binding) (Binding, bool) {
	old, ok := r.entries[id]
	r.Register(id, b)
	if !ok {
		return Binding{}, false
	}
	return old.binding, true
}

// Has reports whether id is bound.
func (r *Registry) Has(id key.ID) bool {
	_, ok := r.entries[id]
	return ok
}

// TriggerDown runs the down phase of id's binding. It reports whether a
// binding existed.
func (r *Registry) TriggerDown(id key.ID) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	b := e.binding

	if b.Cancelable {
		e.group = Armed
		if b.Loop != nil {
			r.ActivateLoop(string(id), b.Loop)
		}
		call(b.Down)
		return true
	}

	call(b.Down)
	if b.Loop != nil {
		r.ActivateLoop(string(id), b.Loop)
	}
	return true
}

// TriggerUp runs the up phase of id's binding. For a cancelable binding
// whose group is Idle the up is swallowed. It reports whether a binding
// existed.
func (r *Registry) TriggerUp(id key.ID) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	b := e.binding

	if b.Cancelable {
		if e.group != Armed {
			return true
		}
		r.DeactivateLoop(string(id))
		e.group = Idle
		call(b.Up)
		return true
	}

	r.DeactivateLoop(string(id))
	call(b.Up)
	return true
}

// Group returns the cancel-group state of id.
func (r *Registry) Group(id key.ID) GroupState {
	if e, ok := r.entries[id]; ok {
		return e.group
	}
	return Idle
}

// CancelAll moves every armed cancel group to Idle and evicts its loop, in
// one step. The evicted ids are returned sorted.
func (r *Registry) CancelAll() []key.ID {
	var ids []key.ID
	for id, e := range r.entries {
		if !e.binding.Cancelable || e.group != Armed {
			continue
		}
		e.group = Idle
		r.DeactivateLoop(string(id))
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ActivateLoop installs fn as the loop of owner. Re-activating an owner
// replaces its handler in place.
func (r *Registry) ActivateLoop(owner string, fn Handler) {
	for i := range r.loops {
		if r.loops[i].owner == owner {
			r.loops[i].fn = fn
			return
		}
	}
	r.loops = append(r.loops, loopSlot{owner: owner, fn: fn})
}

// DeactivateLoop removes owner's loop. It reports whether one was active.
func (r *Registry) DeactivateLoop(owner string) bool {
	for i := range r.loops {
		if r.loops[i].owner == owner {
			r.loops = append(r.loops[:i], r.loops[i+1:]...)
			return true
		}
	}
	return false
}

// LoopActive reports whether owner has an active loop.
func (r *Registry) LoopActive(owner string) bool {
	for _, s := range r.loops {
		if s.owner == owner {
			return true
		}
	}
	return false
}

// RunLoops runs every active loop once, in activation order. Loops activated
// or deactivated by a running loop take effect on the next call.
func (r *Registry) RunLoops() int {
	if len(r.loops) == 0 {
		return 0
	}
	snapshot := make([]loopSlot, len(r.loops))
	copy(snapshot, r.loops)
	for _, s := range snapshot {
		s.fn()
	}
	return len(snapshot)
}

// ActiveLoops returns the number of active loops.
func (r *Registry) ActiveLoops() int {
	return len(r.loops)
}

// SetPressed records the pressed state of id.
func (r *Registry) SetPressed(id key.ID, down bool) {
	if down {
		r.pressed[id] = true
		return
	}
	delete(r.pressed, id)
}

// IsPressed reports whether id is held.
func (r *Registry) IsPressed(id key.ID) bool {
	return r.pressed[id]
}

// Pressed returns every held id, sorted.
func (r *Registry) Pressed() []key.ID {
	ids := make([]key.ID, 0, len(r.pressed))
	for id := range r.pressed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clear drops every binding, pressed flag and active loop.
func (r *Registry) Clear() {
	clear(r.entries)
	clear(r.pressed)
	r.loops = nil
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	return len(r.entries)
}

func call(h Handler) {
	if h != nil {
		h()
	}
}
