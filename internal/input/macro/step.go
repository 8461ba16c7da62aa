package macro

import (
	"math"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/keymap"
)

// Step types.
const (
	StepSleep        = "sleep"
	StepTouch        = "touch"
	StepSwipe        = "swipe"
	StepKeyInputMode = "key-input-mode"
	StepLua          = "lua"
)

// Component is one axis of a macro position.
type Component struct {
	// Mouse makes the component relative to the live pointer.
	Mouse bool
	// Value is a canvas position, or an offset when Mouse is set.
	Value float64
}

// Canvas is a component at an absolute canvas position.
func Canvas(v float64) Component { return Component{Value: v} }

// Mouse is a component at the pointer plus a canvas offset.
func Mouse(offset float64) Component { return Component{Mouse: true, Value: offset} }

// Resolve converts the component to a device coordinate on one axis.
func (c Component) Resolve(pointer, screen, relative int) int {
	v := c.Value
	if relative > 0 {
		v = v * float64(screen) / float64(relative)
	}
	if c.Mouse {
		return pointer + int(math.Round(v))
	}
	return int(math.Round(v))
}

type sleepStep struct {
	d time.Duration
}

type touchStep struct {
	action    device.TouchAction
	pointerID int
	x, y      Component
	d         time.Duration
}

type swipeStep struct {
	action    device.SwipeAction
	pointerID int
	path      [][2]Component
	interval  time.Duration
}

type keyInputStep struct {
	on bool
}

type luaStep struct {
	source string
}

// parseStep decodes one raw step. The returned value is one of the *Step
// types above.
func parseStep(s keymap.MacroStep) (any, error) {
	args := gjson.Parse(s.Args)
	if !args.IsArray() {
		return nil, invalidArgs("args must be an array")
	}
	a := args.Array()

	switch s.Type {
	case StepSleep:
		if len(a) < 1 || a[0].Type != gjson.Number || a[0].Float() < 0 {
			return nil, invalidArgs("sleep needs [ms]")
		}
		return &sleepStep{d: millis(a[0].Float())}, nil

	case StepTouch:
		if len(a) < 4 {
			return nil, invalidArgs("touch needs [action, pointerId, x, y, duration?]")
		}
		action, err := device.ParseTouchAction(a[0].String())
		if err != nil || a[0].Type != gjson.String {
			return nil, invalidArgs("touch action %s", a[0].Raw)
		}
		pid, err := pointerID(a[1])
		if err != nil {
			return nil, err
		}
		x, err := component(a[2])
		if err != nil {
			return nil, err
		}
		y, err := component(a[3])
		if err != nil {
			return nil, err
		}
		step := &touchStep{action: action, pointerID: pid, x: x, y: y}
		if len(a) > 4 && a[4].Type != gjson.Null {
			if a[4].Type != gjson.Number {
				return nil, invalidArgs("touch duration %s", a[4].Raw)
			}
			step.d = millis(a[4].Float())
		}
		return step, nil

	case StepSwipe:
		if len(a) < 4 {
			return nil, invalidArgs("swipe needs [action, pointerId, [[x, y]...], interval]")
		}
		action, err := device.ParseSwipeAction(a[0].String())
		if err != nil || a[0].Type != gjson.String {
			return nil, invalidArgs("swipe action %s", a[0].Raw)
		}
		pid, err := pointerID(a[1])
		if err != nil {
			return nil, err
		}
		if !a[2].IsArray() || len(a[2].Array()) == 0 {
			return nil, invalidArgs("swipe path %s", a[2].Raw)
		}
		step := &swipeStep{action: action, pointerID: pid}
		for _, p := range a[2].Array() {
			pair := p.Array()
			if !p.IsArray() || len(pair) != 2 {
				return nil, invalidArgs("swipe point %s", p.Raw)
			}
			x, err := component(pair[0])
			if err != nil {
				return nil, err
			}
			y, err := component(pair[1])
			if err != nil {
				return nil, err
			}
			step.path = append(step.path, [2]Component{x, y})
		}
		if a[3].Type != gjson.Number {
			return nil, invalidArgs("swipe interval %s", a[3].Raw)
		}
		step.interval = millis(a[3].Float())
		return step, nil

	case StepKeyInputMode:
		if len(a) < 1 {
			return nil, invalidArgs("key-input-mode needs [\"on\"|\"off\"]")
		}
		switch {
		case a[0].IsBool():
			return &keyInputStep{on: a[0].Bool()}, nil
		case a[0].Str == "on":
			return &keyInputStep{on: true}, nil
		case a[0].Str == "off":
			return &keyInputStep{on: false}, nil
		}
		return nil, invalidArgs("key-input-mode %s", a[0].Raw)

	case StepLua:
		if len(a) < 1 || a[0].Type != gjson.String {
			return nil, invalidArgs("lua needs [source]")
		}
		return &luaStep{source: a[0].String()}, nil
	}
	return nil, ErrUnknownStep
}

func pointerID(v gjson.Result) (int, error) {
	if v.Type != gjson.Number || v.Float() < 0 || v.Float() != math.Trunc(v.Float()) {
		return 0, invalidArgs("pointer id %s", v.Raw)
	}
	return int(v.Int()), nil
}

func component(v gjson.Result) (Component, error) {
	switch {
	case v.Type == gjson.Number:
		return Canvas(v.Float()), nil
	case v.Type == gjson.String && v.Str == "mouse":
		return Mouse(0), nil
	case v.IsArray():
		pair := v.Array()
		if len(pair) == 2 && pair[0].Str == "mouse" && pair[1].Type == gjson.Number {
			return Mouse(pair[1].Float()), nil
		}
	}
	return Component{}, invalidArgs("position %s", v.Raw)
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
