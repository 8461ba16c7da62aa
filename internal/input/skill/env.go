package skill

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/aim"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/registry"
	"github.com/dshills/touchmask/internal/input/state"
)

// Env is the engine surface skills work against. Its methods must be called
// under the engine lock, except Do, which acquires it.
type Env struct {
	Registry *registry.Registry
	Runtime  *state.Runtime
	Emitter  device.Emitter
	Pointer  host.Pointer
	Runner   *macro.Runner

	// Do runs fn under the engine lock from a runner goroutine. It reports
	// false once the engine is closed.
	Do func(fn func()) bool

	// KeyInput turns key-input passthrough on or off.
	KeyInput func(on bool)

	Now          func() time.Time
	Log          zerolog.Logger
	Scripter     macro.Scripter
	OnMacroAbort func(err *macro.StepError)

	// ClickPointerID drives the default left-click binding.
	ClickPointerID int
	// AimBox and AimMargin tune Sight; zero values use the aim defaults.
	AimBox    coord.Size
	AimMargin int

	relative coord.Size
	interp   *macro.Interpreter

	// per-pointer bookkeeping of what has been emitted
	last map[int]coord.Point
	down map[int]bool

	// pointer of each cancelable and double-press binding
	groupPointer  map[key.ID]int
	doublePointer map[key.ID]int

	sight *sightBinding

	pads        []*directionPad
	padsBlocked bool
	cast        *activeCast
}

// DefaultClickPointerID is the pointer used for plain clicks.
const DefaultClickPointerID = 0

func (e *Env) reset(relative coord.Size) {
	e.relative = relative
	e.last = make(map[int]coord.Point)
	e.down = make(map[int]bool)
	e.groupPointer = make(map[key.ID]int)
	e.doublePointer = make(map[key.ID]int)
	e.sight = nil
	e.pads = nil
	e.padsBlocked = false
	e.cast = nil
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Pointer == nil {
		e.Pointer = host.NopPointer{}
	}
	if e.KeyInput == nil {
		e.KeyInput = func(bool) {}
	}
	opts := []macro.Option{macro.WithLogger(e.Log)}
	if e.Scripter != nil {
		opts = append(opts, macro.WithScripter(e.Scripter))
	}
	if e.OnMacroAbort != nil {
		opts = append(opts, macro.WithAbortHandler(e.OnMacroAbort))
	}
	e.interp = macro.NewInterpreter(macroHost{e}, e.Runner, relative, opts...)
}

// canvas converts an authored position to device pixels.
func (e *Env) canvas(p keymap.Position) coord.Point {
	return coord.Point{
		X: coord.CanvasXToDevice(p.X, e.relative, e.Runtime.Screen),
		Y: coord.CanvasYToDevice(p.Y, e.relative, e.Runtime.Screen),
	}
}

// length converts an authored length (a range or an offset) to device pixels.
func (e *Env) length(v float64) int {
	return coord.ScaleLength(v, e.relative, e.Runtime.Screen)
}

// emit is the single exit for device commands. Touch and swipe positions are
// clamped to the screen here.
func (e *Env) emit(cmd device.Command) {
	screen := e.Runtime.Screen
	switch c := cmd.(type) {
	case device.Touch:
		c.Screen = screen
		c.Pos = coord.Clamp(c.Pos, screen)
		e.last[c.PointerID] = c.Pos
		switch c.Action {
		case device.TouchDown:
			e.down[c.PointerID] = true
		case device.TouchUp:
			delete(e.down, c.PointerID)
		}
		cmd = c
	case device.Swipe:
		c.Screen = screen
		path := make([]coord.Point, len(c.Path))
		for i, p := range c.Path {
			path[i] = coord.Clamp(p, screen)
		}
		c.Path = path
		if n := len(path); n > 0 {
			e.last[c.PointerID] = path[n-1]
		}
		if c.Action == device.SwipeNoUp {
			e.down[c.PointerID] = true
		} else {
			delete(e.down, c.PointerID)
		}
		cmd = c
	}
	e.Emitter.Emit(cmd)
}

func (e *Env) touch(action device.TouchAction, pointerID int, pos coord.Point) {
	e.emit(device.Touch{Action: action, PointerID: pointerID, Pos: pos})
}

func (e *Env) tap(pointerID int, pos coord.Point, hold time.Duration) {
	e.emit(device.Touch{Action: device.TouchDefault, PointerID: pointerID, Pos: pos, Duration: hold})
}

// moveTo emits a move only if the pointer is elsewhere.
func (e *Env) moveTo(pointerID int, pos coord.Point) {
	pos = coord.Clamp(pos, e.Runtime.Screen)
	if last, ok := e.last[pointerID]; ok && last == pos {
		return
	}
	e.touch(device.TouchMove, pointerID, pos)
}

// Last returns the last position emitted for a pointer.
func (e *Env) Last(pointerID int) (coord.Point, bool) {
	p, ok := e.last[pointerID]
	return p, ok
}

// IsDown reports whether a pointer was left down.
func (e *Env) IsDown(pointerID int) bool {
	return e.down[pointerID]
}

// ReleaseAll disarms every gesture and lifts every pointer still down.
func (e *Env) ReleaseAll() {
	if e.sight != nil {
		e.sight.deactivate()
	}
	e.Registry.CancelAll()
	e.UpAllDoublePressed()
	e.dropCast()
	ids := make([]int, 0, len(e.down))
	for id := range e.down {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		e.touch(device.TouchUp, id, e.last[id])
	}
}

// Aim returns the Sight tracker, if the mapping has one.
func (e *Env) Aim() *aim.Tracker {
	if e.sight == nil {
		return nil
	}
	return e.sight.tracker
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// macroHost adapts Env to macro.Host.
type macroHost struct {
	e *Env
}

func (h macroHost) Do(fn func(env macro.Env)) bool {
	return h.e.Do(func() { fn(macroEnv(h)) })
}

type macroEnv struct {
	e *Env
}

func (m macroEnv) Screen() coord.Size         { return m.e.Runtime.Screen }
func (m macroEnv) PointerDevice() coord.Point { return m.e.Runtime.PointerDevice() }
func (m macroEnv) Emit(cmd device.Command)    { m.e.emit(cmd) }
func (m macroEnv) SetKeyInputMode(on bool)    { m.e.KeyInput(on) }
