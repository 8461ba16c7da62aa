// Package aim implements pointer-driven aiming for Sight and Fire mappings.
//
// While aiming, the host pointer is hidden and held near the center of the
// mask. Its displacement from the center steers one or two touch streams:
// the sight stream, and the fire stream while the fire key is held. When the
// pointer strays outside a box around the center it is moved back, and the
// displacement is folded into each stream's accumulator.
//
// Accumulators are kept in client pixels and only the total is scaled and
// rounded, so any number of recentrings lands on the same device position as
// one continuous motion. A stream that reaches the screen edge margin is
// lifted and pressed again at its anchor.
package aim

import (
	"math"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/state"
)

// DefaultMargin is the distance from the screen edge, in device pixels, at
// which a stream is lifted and re-pressed.
const DefaultMargin = 25

// State is the tracker state.
type State uint8

const (
	Inactive State = iota
	Aiming
	FireNoDrag
	FireDrag
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Aiming:
		return "aiming"
	case FireNoDrag:
		return "fire"
	case FireDrag:
		return "fire-drag"
	default:
		return "unknown"
	}
}

// Output receives the tracker's side effects. It is called under the engine
// lock.
type Output interface {
	Emit(cmd device.Command)
	SetCursorPosition(client coord.Point)
	SetCursorVisible(visible bool)
}

// Stream configures one touch stream.
type Stream struct {
	PointerID int
	// Anchor is the device position the stream starts from.
	Anchor         coord.Point
	ScaleX, ScaleY float64
}

// Config configures a Tracker.
type Config struct {
	Sight Stream
	// Box is the half-size, in client pixels, of the box the pointer may
	// wander in before it is recentred. Zero uses a quarter of the mask.
	Box coord.Size
	// Margin is the edge margin in device pixels. Zero uses DefaultMargin.
	Margin int
}

type stream struct {
	cfg  Stream
	acc  coord.Point
	down bool
	last coord.Point
}

// position is the device position for the current pointer delta.
func (s *stream) position(delta coord.Point, rt *state.Runtime) coord.Point {
	total := s.acc.Add(delta)
	dx, dy := coord.ClientDeltaToDevice(total, rt.Mask, rt.Screen)
	return coord.Point{
		X: s.cfg.Anchor.X + int(math.Round(s.cfg.ScaleX*dx)),
		Y: s.cfg.Anchor.Y + int(math.Round(s.cfg.ScaleY*dy)),
	}
}

// Tracker is the Sight+Fire state machine. It is not safe for concurrent
// use.
type Tracker struct {
	cfg     Config
	out     Output
	state   State
	sight   stream
	fire    stream
	hasFire bool
	// drag lifts the sight stream while firing.
	drag bool
}

// New creates an inactive tracker.
func New(cfg Config, out Output) *Tracker {
	if cfg.Margin <= 0 {
		cfg.Margin = DefaultMargin
	}
	if cfg.Sight.ScaleX == 0 {
		cfg.Sight.ScaleX = 1
	}
	if cfg.Sight.ScaleY == 0 {
		cfg.Sight.ScaleY = 1
	}
	return &Tracker{
		cfg:   cfg,
		out:   out,
		sight: stream{cfg: cfg.Sight},
	}
}

// SetFire installs the fire stream. Without one, fire presses are ignored.
// With drag set, the sight is lifted while the fire key is held.
func (t *Tracker) SetFire(fire Stream, drag bool) {
	if fire.ScaleX == 0 {
		fire.ScaleX = 1
	}
	if fire.ScaleY == 0 {
		fire.ScaleY = 1
	}
	t.drag = drag
	t.fire = stream{cfg: fire}
	t.hasFire = true
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// Active reports whether aiming is on.
func (t *Tracker) Active() bool {
	return t.state != Inactive
}

func (t *Tracker) box(rt *state.Runtime) coord.Size {
	if t.cfg.Box.W > 0 && t.cfg.Box.H > 0 {
		return t.cfg.Box
	}
	return coord.Size{W: rt.Mask.W / 4, H: rt.Mask.H / 4}
}

func (t *Tracker) delta(rt *state.Runtime) coord.Point {
	return rt.Pointer.Sub(rt.Mask.Center())
}

func (t *Tracker) recenter(rt *state.Runtime) {
	center := rt.Mask.Center()
	rt.Pointer = center
	t.out.SetCursorPosition(center)
}

func (t *Tracker) touch(action device.TouchAction, s *stream, pos coord.Point, rt *state.Runtime) {
	pos = coord.Clamp(pos, rt.Screen)
	t.out.Emit(device.Touch{Action: action, PointerID: s.cfg.PointerID, Screen: rt.Screen, Pos: pos})
	s.last = pos
	switch action {
	case device.TouchDown:
		s.down = true
	case device.TouchUp:
		s.down = false
	}
}

// press puts a stream down at its anchor, aligned with the current delta.
func (t *Tracker) press(s *stream, delta coord.Point, rt *state.Runtime) {
	s.acc = coord.Point{X: -delta.X, Y: -delta.Y}
	t.touch(device.TouchDown, s, s.cfg.Anchor, rt)
}

// Activate starts aiming: hide and recentre the pointer, press the sight.
func (t *Tracker) Activate(rt *state.Runtime) {
	if t.state != Inactive {
		return
	}
	t.out.SetCursorVisible(false)
	t.recenter(rt)
	t.press(&t.sight, coord.Point{}, rt)
	t.state = Aiming
}

// Deactivate lifts every stream still down and shows the pointer.
func (t *Tracker) Deactivate(rt *state.Runtime) {
	if t.state == Inactive {
		return
	}
	if t.fire.down {
		t.touch(device.TouchUp, &t.fire, t.fire.last, rt)
	}
	if t.sight.down {
		t.touch(device.TouchUp, &t.sight, t.sight.last, rt)
	}
	t.state = Inactive
	t.out.SetCursorVisible(true)
}

// FireDown starts firing. It reports whether the press was consumed.
func (t *Tracker) FireDown(rt *state.Runtime) bool {
	if t.state != Aiming || !t.hasFire {
		return false
	}
	delta := t.delta(rt)
	if t.drag {
		if t.sight.down {
			t.touch(device.TouchUp, &t.sight, t.sight.last, rt)
		}
		t.press(&t.fire, delta, rt)
		t.state = FireDrag
		return true
	}
	t.press(&t.fire, delta, rt)
	t.state = FireNoDrag
	return true
}

// FireUp stops firing. It reports whether the release was consumed.
func (t *Tracker) FireUp(rt *state.Runtime) bool {
	if t.state != FireDrag && t.state != FireNoDrag {
		return false
	}
	if t.fire.down {
		t.touch(device.TouchUp, &t.fire, t.fire.last, rt)
	}
	if t.state == FireDrag {
		t.press(&t.sight, t.delta(rt), rt)
	}
	t.state = Aiming
	return true
}

// Tick moves the active streams to follow the pointer.
func (t *Tracker) Tick(rt *state.Runtime) {
	if t.state == Inactive {
		return
	}

	delta := t.delta(rt)
	box := t.box(rt)
	if abs(delta.X) > box.W || abs(delta.Y) > box.H {
		t.sight.acc = t.sight.acc.Add(delta)
		t.fire.acc = t.fire.acc.Add(delta)
		t.recenter(rt)
		delta = coord.Point{}
	}

	if t.state != FireDrag && t.sight.down {
		t.follow(&t.sight, delta, rt)
	}
	if (t.state == FireDrag || t.state == FireNoDrag) && t.fire.down {
		t.follow(&t.fire, delta, rt)
	}
}

func (t *Tracker) follow(s *stream, delta coord.Point, rt *state.Runtime) {
	pos := s.position(delta, rt)
	if !coord.InMargin(pos, rt.Screen, t.cfg.Margin) {
		t.touch(device.TouchUp, s, coord.ClampMargin(pos, rt.Screen, t.cfg.Margin), rt)
		t.press(s, delta, rt)
		return
	}
	if pos != s.last {
		t.touch(device.TouchMove, s, pos, rt)
	}
}

// Position returns the device position a stream would be at for the current
// pointer. It is meant for tests and diagnostics.
func (t *Tracker) Position(fire bool, rt *state.Runtime) coord.Point {
	if fire {
		return t.fire.position(t.delta(rt), rt)
	}
	return t.sight.position(t.delta(rt), rt)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
