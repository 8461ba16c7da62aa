// Package state holds the live runtime state shared by the dispatcher and the
// skills.
//
// A Runtime is not safe for concurrent use. The engine guards it with its
// single-writer lock and every skill reads and writes it from inside that
// lock.
package state

import (
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
)

// Runtime is the per-engine mutable state.
type Runtime struct {
	// Pointer is the last known host pointer position in client pixels.
	Pointer coord.Point

	// Screen is the device resolution.
	Screen coord.Size

	// Mask is the rectangle of the mirrored screen inside the client.
	Mask coord.Rect

	// DoublePress holds the armed flag of each double-press skill key.
	DoublePress map[key.ID]bool

	// Axes holds the last reported value of each gamepad axis.
	Axes map[key.Axis]float64
}

// New creates a runtime for the given geometry with the pointer at the mask
// center.
func New(screen coord.Size, mask coord.Rect) *Runtime {
	return &Runtime{
		Pointer:     mask.Center(),
		Screen:      screen,
		Mask:        mask,
		DoublePress: make(map[key.ID]bool),
		Axes:        make(map[key.Axis]float64),
	}
}

// SetGeometry replaces the device size and mask rectangle.
func (r *Runtime) SetGeometry(screen coord.Size, mask coord.Rect) {
	r.Screen = screen
	r.Mask = mask
}

// ToDevice maps a client point into device space.
func (r *Runtime) ToDevice(client coord.Point) coord.Point {
	return coord.ClientToDevice(client, r.Mask, r.Screen)
}

// PointerDevice is the pointer position in device space.
func (r *Runtime) PointerDevice() coord.Point {
	return r.ToDevice(r.Pointer)
}

// ArmedDoublePress returns the double-press keys currently armed.
func (r *Runtime) ArmedDoublePress() []key.ID {
	var ids []key.ID
	for id, armed := range r.DoublePress {
		if armed {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetAxis records an axis value, clamped to [-1, 1].
func (r *Runtime) SetAxis(a key.Axis, v float64) {
	r.Axes[a] = max(-1, min(v, 1))
}

// Axis returns the last value of an axis; unreported axes are centered.
func (r *Runtime) Axis(a key.Axis) float64 {
	return r.Axes[a]
}

// Reset forgets all per-key state. Geometry, pointer and axes are kept.
func (r *Runtime) Reset() {
	clear(r.DoublePress)
}
