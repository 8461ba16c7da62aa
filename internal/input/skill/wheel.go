package skill

import (
	"fmt"
	"math"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/registry"
)

// Wheel direction indexes.
const (
	WheelNone = iota - 1
	WheelLeft
	WheelRight
	WheelUp
	WheelDown
	WheelLeftUp
	WheelRightUp
	WheelLeftDown
	WheelRightDown
)

// WheelIndex folds the held keys into a direction. Left beats right and up
// beats down.
func WheelIndex(left, right, up, down bool) int {
	h, v := 0, 0
	switch {
	case left:
		h = -1
	case right:
		h = 1
	}
	switch {
	case up:
		v = -1
	case down:
		v = 1
	}
	switch {
	case h < 0 && v < 0:
		return WheelLeftUp
	case h > 0 && v < 0:
		return WheelRightUp
	case h < 0 && v > 0:
		return WheelLeftDown
	case h > 0 && v > 0:
		return WheelRightDown
	case h < 0:
		return WheelLeft
	case h > 0:
		return WheelRight
	case v < 0:
		return WheelUp
	case v > 0:
		return WheelDown
	}
	return WheelNone
}

// wheelOffset is the displacement from the center for a direction.
func wheelOffset(index, offset int) coord.Point {
	diag := int(math.Round(float64(offset) / 1.414))
	switch index {
	case WheelLeft:
		return coord.Point{X: -offset}
	case WheelRight:
		return coord.Point{X: offset}
	case WheelUp:
		return coord.Point{Y: -offset}
	case WheelDown:
		return coord.Point{Y: offset}
	case WheelLeftUp:
		return coord.Point{X: -diag, Y: -diag}
	case WheelRightUp:
		return coord.Point{X: diag, Y: -diag}
	case WheelLeftDown:
		return coord.Point{X: -diag, Y: diag}
	case WheelRightDown:
		return coord.Point{X: diag, Y: diag}
	}
	return coord.Point{}
}

// wheel aggregates four keys into one touch.
type wheel struct {
	env     *Env
	owner   string
	keys    keymap.WheelKeys
	pointer int
	center  coord.Point
	offset  int

	running bool
	index   int
	pos     coord.Point
}

func bindWheel(env *Env, i int, m *keymap.SteeringWheel) {
	w := &wheel{
		env:     env,
		owner:   fmt.Sprintf("wheel:%d", i),
		keys:    m.Keys,
		pointer: m.PointerID,
		center:  env.canvas(m.Pos),
		offset:  env.length(m.Offset),
		index:   WheelNone,
	}
	b := registry.Binding{Down: w.press, Up: w.release}
	for _, id := range []key.ID{m.Keys.Left, m.Keys.Right, m.Keys.Up, m.Keys.Down} {
		env.Registry.Register(id, b)
	}
}

func (w *wheel) held() (left, right, up, down bool) {
	r := w.env.Registry
	return r.IsPressed(w.keys.Left), r.IsPressed(w.keys.Right), r.IsPressed(w.keys.Up), r.IsPressed(w.keys.Down)
}

func (w *wheel) press() {
	if w.running {
		return
	}
	w.running = true
	w.index = WheelNone
	w.pos = w.center
	w.env.touch(device.TouchDown, w.pointer, w.center)
	w.env.Registry.ActivateLoop(w.owner, w.tick)
}

func (w *wheel) release() {
	if l, r, u, d := w.held(); l || r || u || d {
		return
	}
	w.finish()
}

func (w *wheel) tick() {
	index := WheelIndex(w.held())
	if index == WheelNone {
		w.finish()
		return
	}
	if index == w.index {
		return
	}
	w.index = index
	w.pos = w.center.Add(wheelOffset(index, w.offset))
	w.env.touch(device.TouchMove, w.pointer, w.pos)
}

// finish is the shared up. It runs at most once per gesture.
func (w *wheel) finish() {
	if !w.running {
		return
	}
	w.running = false
	w.env.Registry.DeactivateLoop(w.owner)
	w.env.touch(device.TouchUp, w.pointer, w.pos)
	w.index = WheelNone
}
