//go:build linux

package evdev

import (
	"time"

	goevdev "github.com/holoplot/go-evdev"
	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// Key values.
const (
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// AbsRanges holds the absolute axis ranges one device reports.
type AbsRanges map[goevdev.EvCode]goevdev.AbsInfo

// Ranges assumed for devices that do not report their own.
var (
	defaultStick   = goevdev.AbsInfo{Minimum: -32768, Maximum: 32767}
	defaultTrigger = goevdev.AbsInfo{Minimum: 0, Maximum: 255}
)

// Translator turns events from any number of devices into engine events. It
// is not safe for concurrent use; the Reader serializes it.
type Translator struct {
	sink host.Sink
	mask coord.Rect
	// Sensitivity scales relative motion. Zero means 1.
	Sensitivity float64
	log         zerolog.Logger

	pos     coord.Point
	dx, dy  int32
	mods    key.ModifierState
	keys    map[key.ID]bool
	buttons map[mouse.Button]bool
	axes    map[key.Axis]float64
	hats    map[goevdev.EvCode]key.ID
}

// NewTranslator creates a translator with the pointer at the mask center.
// Axis events reach sink only if it implements host.AxisSink.
func NewTranslator(sink host.Sink, mask coord.Rect) *Translator {
	return &Translator{
		sink:    sink,
		mask:    mask,
		log:     zerolog.Nop(),
		pos:     mask.Center(),
		keys:    make(map[key.ID]bool),
		buttons: make(map[mouse.Button]bool),
		axes:    make(map[key.Axis]float64),
		hats:    make(map[goevdev.EvCode]key.ID),
	}
}

// Warp moves the integrated pointer, as when the host pointer is recentred.
func (t *Translator) Warp(p coord.Point) {
	t.pos = p
}

// Position returns the integrated pointer position.
func (t *Translator) Position() coord.Point {
	return t.pos
}

// Handle consumes one event of a device whose axes span ranges.
func (t *Translator) Handle(ev goevdev.InputEvent, ranges AbsRanges) {
	at := time.Unix(ev.Time.Unix())
	switch ev.Type {
	case goevdev.EV_KEY:
		if b, ok := mouseButtons[ev.Code]; ok {
			t.button(ev.Value, b, at)
			return
		}
		id, ok := keyCodes[ev.Code]
		if !ok {
			id, ok = padButtons[ev.Code]
		}
		if !ok {
			t.log.Debug().Str("code", goevdev.KEYToString[ev.Code]).Msg("unmapped key")
			return
		}
		t.key(id, ev.Value, at)
	case goevdev.EV_REL:
		switch ev.Code {
		case goevdev.REL_X:
			t.dx += ev.Value
		case goevdev.REL_Y:
			t.dy += ev.Value
		case goevdev.REL_WHEEL:
			t.wheel(ev.Value, at)
		}
	case goevdev.EV_ABS:
		t.abs(ev, ranges, at)
	case goevdev.EV_SYN:
		if ev.Code == goevdev.SYN_REPORT {
			t.flushMotion(at)
		}
	}
}

func (t *Translator) key(id key.ID, value int32, at time.Time) {
	out := key.Event{Code: id, Timestamp: at}
	switch value {
	case valuePress:
		out.Action = key.ActionDown
	case valueRepeat:
		out.Action = key.ActionDown
		out.Repeat = true
	case valueRelease:
		out.Action = key.ActionUp
	default:
		return
	}
	if out.Action == key.ActionUp {
		if !t.keys[id] {
			return
		}
		delete(t.keys, id)
	} else {
		t.keys[id] = true
	}
	out.Modifiers = t.mods.Update(id, out.Action == key.ActionDown)
	t.sink.HandleKeyEvent(out)
}

func (t *Translator) abs(ev goevdev.InputEvent, ranges AbsRanges, at time.Time) {
	switch ev.Code {
	case goevdev.ABS_HAT0X:
		t.hat(ev.Code, ev.Value, key.PadDPadLeft, key.PadDPadRight, at)
		return
	case goevdev.ABS_HAT0Y:
		t.hat(ev.Code, ev.Value, key.PadDPadUp, key.PadDPadDown, at)
		return
	}
	if a, ok := stickAxes[ev.Code]; ok {
		t.axis(a, stick(ev.Value, rangeOf(ranges, ev.Code, defaultStick)), at)
		return
	}
	if a, ok := triggerAxes[ev.Code]; ok {
		t.axis(a, trigger(ev.Value, rangeOf(ranges, ev.Code, defaultTrigger)), at)
	}
}

// hat turns a digital pad reported as an axis into button presses.
func (t *Translator) hat(code goevdev.EvCode, value int32, neg, pos key.ID, at time.Time) {
	var next key.ID
	switch {
	case value < 0:
		next = neg
	case value > 0:
		next = pos
	}
	prev := t.hats[code]
	if prev == next {
		return
	}
	if prev != "" {
		t.key(prev, valueRelease, at)
	}
	if next == "" {
		delete(t.hats, code)
		return
	}
	t.hats[code] = next
	t.key(next, valuePress, at)
}

func (t *Translator) axis(a key.Axis, v float64, at time.Time) {
	if t.axes[a] == v {
		return
	}
	if v == 0 {
		delete(t.axes, a)
	} else {
		t.axes[a] = v
	}
	if s, ok := t.sink.(host.AxisSink); ok {
		s.HandleAxisEvent(key.AxisEvent{Axis: a, Value: v, Timestamp: at})
	}
}

func rangeOf(ranges AbsRanges, code goevdev.EvCode, fallback goevdev.AbsInfo) goevdev.AbsInfo {
	if info, ok := ranges[code]; ok && info.Maximum > info.Minimum {
		return info
	}
	return fallback
}

// stick maps a centered axis onto [-1, 1]. Values within Flat of the middle
// read as zero.
func stick(value int32, info goevdev.AbsInfo) float64 {
	mid := (float64(info.Minimum) + float64(info.Maximum)) / 2
	half := (float64(info.Maximum) - float64(info.Minimum)) / 2
	d := float64(value) - mid
	if d >= -float64(info.Flat) && d <= float64(info.Flat) {
		return 0
	}
	return max(-1, min(d/half, 1))
}

// trigger maps a resting-at-minimum axis onto [0, 1].
func trigger(value int32, info goevdev.AbsInfo) float64 {
	d := float64(value - info.Minimum)
	if d <= float64(info.Flat) {
		return 0
	}
	return max(0, min(d/float64(info.Maximum-info.Minimum), 1))
}

// ReleaseAll releases every held key and button and centers every axis, as
// when the devices are lost or ungrabbed.
func (t *Translator) ReleaseAll(at time.Time) {
	clear(t.hats)
	for id := range t.keys {
		delete(t.keys, id)
		mods := t.mods.Update(id, false)
		t.sink.HandleKeyEvent(key.Event{Code: id, Action: key.ActionUp, Modifiers: mods, Timestamp: at})
	}
	for b := range t.buttons {
		t.mouse(mouse.ActionRelease, b, at)
	}
	for a := range t.axes {
		t.axis(a, 0, at)
	}
}

func (t *Translator) button(value int32, b mouse.Button, at time.Time) {
	var action mouse.Action
	switch value {
	case valuePress:
		action = mouse.ActionPress
		t.buttons[b] = true
	case valueRelease:
		if !t.buttons[b] {
			return
		}
		action = mouse.ActionRelease
	default:
		return
	}
	t.mouse(action, b, at)
}

func (t *Translator) wheel(value int32, at time.Time) {
	switch {
	case value > 0:
		t.mouse(mouse.ActionPress, mouse.ButtonScrollUp, at)
	case value < 0:
		t.mouse(mouse.ActionPress, mouse.ButtonScrollDown, at)
	}
}

func (t *Translator) flushMotion(at time.Time) {
	if t.dx == 0 && t.dy == 0 {
		return
	}
	scale := t.Sensitivity
	if scale == 0 {
		scale = 1
	}
	t.pos = coord.Point{
		X: clamp(t.pos.X+int(float64(t.dx)*scale), t.mask.Left, t.mask.Left+t.mask.W-1),
		Y: clamp(t.pos.Y+int(float64(t.dy)*scale), t.mask.Top, t.mask.Top+t.mask.H-1),
	}
	t.dx, t.dy = 0, 0
	t.mouse(mouse.ActionMove, mouse.ButtonNone, at)
}

func (t *Translator) mouse(action mouse.Action, b mouse.Button, at time.Time) {
	if action == mouse.ActionRelease {
		delete(t.buttons, b)
	}
	t.sink.HandleMouseEvent(mouse.Event{
		Position:  mouse.Position{X: t.pos.X, Y: t.pos.Y},
		Button:    b,
		Modifiers: t.mods.Current(),
		Action:    action,
		Timestamp: at,
	})
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
