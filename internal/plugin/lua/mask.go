package lua

import (
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/macro"
)

// maskModule builds the functions of the mask module. A failing action is
// stored in *failed so the caller can return the Go error unchanged.
//
//	mask.touch(action, id, x, y [, ms])
//	mask.swipe(action, id, {{x, y}, ...}, intervalMs)
//	mask.sleep(ms)
//	x, y = mask.pointer()
//	mask.keyinput(on)
//
// Positions are canvas numbers, "mouse", or {"mouse", offset}.
func maskModule(act macro.Actions, failed *error) map[string]lua.LGFunction {
	check := func(L *lua.LState, err error) {
		if err != nil {
			*failed = err
			L.RaiseError("%v", err)
		}
	}
	return map[string]lua.LGFunction{
		"touch": func(L *lua.LState) int {
			action, err := device.ParseTouchAction(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			id := pointerID(L, 2)
			x := component(L, L.Get(3), 3)
			y := component(L, L.Get(4), 4)
			d := time.Duration(L.OptInt64(5, 0)) * time.Millisecond
			check(L, act.Touch(action, id, x, y, d))
			return 0
		},
		"swipe": func(L *lua.LState) int {
			action, err := device.ParseSwipeAction(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			id := pointerID(L, 2)
			points := L.CheckTable(3)
			interval := time.Duration(L.CheckInt64(4)) * time.Millisecond
			if interval < 0 {
				L.ArgError(4, "negative interval")
			}
			var path [][2]macro.Component
			for i := 1; i <= points.Len(); i++ {
				pt, ok := points.RawGetInt(i).(*lua.LTable)
				if !ok || pt.Len() != 2 {
					L.ArgError(3, fmt.Sprintf("point %d is not {x, y}", i))
				}
				path = append(path, [2]macro.Component{
					component(L, pt.RawGetInt(1), 3),
					component(L, pt.RawGetInt(2), 3),
				})
			}
			if len(path) == 0 {
				L.ArgError(3, "empty path")
			}
			check(L, act.Swipe(action, id, path, interval))
			return 0
		},
		"sleep": func(L *lua.LState) int {
			ms := L.CheckInt64(1)
			if ms < 0 {
				L.ArgError(1, "negative duration")
			}
			check(L, act.Sleep(time.Duration(ms)*time.Millisecond))
			return 0
		},
		"pointer": func(L *lua.LState) int {
			p, err := act.Pointer()
			check(L, err)
			L.Push(lua.LNumber(p.X))
			L.Push(lua.LNumber(p.Y))
			return 2
		},
		"keyinput": func(L *lua.LState) int {
			check(L, act.SetKeyInputMode(L.CheckBool(1)))
			return 0
		},
	}
}

func pointerID(L *lua.LState, n int) int {
	id := L.CheckInt(n)
	if id < 0 {
		L.ArgError(n, "negative pointer id")
	}
	return id
}

func component(L *lua.LState, v lua.LValue, n int) macro.Component {
	switch v := v.(type) {
	case lua.LNumber:
		return macro.Canvas(float64(v))
	case lua.LString:
		if v == "mouse" {
			return macro.Mouse(0)
		}
	case *lua.LTable:
		if v.Len() == 2 && v.RawGetInt(1) == lua.LString("mouse") {
			if off, ok := v.RawGetInt(2).(lua.LNumber); ok {
				return macro.Mouse(float64(off))
			}
		}
	}
	L.ArgError(n, "position must be a number, \"mouse\" or {\"mouse\", offset}")
	return macro.Component{}
}
