package skill

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/registry"
)

// Cancel sweep shape: SweepSteps moves, SweepStep pixels apart, SweepDelay
// between them.
const (
	SweepSteps = 21
	SweepStep  = 1
	SweepDelay = 5 * time.Millisecond
)

// aimTarget is the anchor displaced toward the pointer, clamped to rng.
func (e *Env) aimTarget(anchor coord.Point, rng int) coord.Point {
	return anchor.Add(coord.CenterOffset(e.Runtime.PointerDevice(), e.Runtime.Screen, rng))
}

func bindDirectional(env *Env, m *keymap.DirectionalSkill) {
	anchor := env.canvas(m.Pos)
	rng := env.length(m.Range)
	pointer := m.PointerID
	env.groupPointer[m.Key] = pointer
	env.Registry.Register(m.Key, registry.Binding{
		Cancelable: true,
		Down: func() {
			env.emit(device.Swipe{
				Action:    device.SwipeNoUp,
				PointerID: pointer,
				Path:      []coord.Point{anchor, env.aimTarget(anchor, rng)},
			})
		},
		Loop: func() { env.moveTo(pointer, env.aimTarget(anchor, rng)) },
		Up:   func() { env.touch(device.TouchUp, pointer, env.aimTarget(anchor, rng)) },
	})
}

func bindDirectionless(env *Env, m *keymap.DirectionlessSkill) {
	anchor := env.canvas(m.Pos)
	pointer := m.PointerID
	env.groupPointer[m.Key] = pointer
	env.Registry.Register(m.Key, registry.Binding{
		Cancelable: true,
		Down:       func() { env.touch(device.TouchDown, pointer, anchor) },
		Up:         func() { env.touch(device.TouchUp, pointer, anchor) },
	})
}

func bindTriggerWhenPressed(env *Env, m *keymap.TriggerWhenPressedSkill) {
	anchor := env.canvas(m.Pos)
	pointer := m.PointerID
	if !m.Directional {
		hold := holdTime(int(m.RangeOrTime))
		env.Registry.Register(m.Key, registry.Binding{
			Down: func() { env.tap(pointer, anchor, hold) },
		})
		return
	}
	rng := env.length(m.RangeOrTime)
	env.Registry.Register(m.Key, registry.Binding{
		Down: func() {
			env.emit(device.Swipe{
				Action:    device.SwipeDefault,
				PointerID: pointer,
				Path:      []coord.Point{anchor, env.aimTarget(anchor, rng)},
			})
		},
	})
}

func doublePressOwner(id key.ID) string {
	return "double-press:" + string(id)
}

func bindDoublePress(env *Env, m *keymap.TriggerWhenDoublePressedSkill) {
	anchor := env.canvas(m.Pos)
	rng := env.length(m.Range)
	pointer := m.PointerID
	id := m.Key
	env.doublePointer[id] = pointer
	loop := func() { env.moveTo(pointer, env.aimTarget(anchor, rng)) }
	env.Registry.Register(id, registry.Binding{
		Down: func() {
			if env.Runtime.DoublePress[id] {
				env.touch(device.TouchUp, pointer, env.aimTarget(anchor, rng))
				env.Registry.DeactivateLoop(doublePressOwner(id))
				env.Runtime.DoublePress[id] = false
				return
			}
			env.emit(device.Swipe{
				Action:    device.SwipeNoUp,
				PointerID: pointer,
				Path:      []coord.Point{anchor, env.aimTarget(anchor, rng)},
			})
			env.Runtime.DoublePress[id] = true
			env.Registry.ActivateLoop(doublePressOwner(id), loop)
		},
	})
}

// UpAllDoublePressed disarms every armed double-press skill without emitting
// anything and returns the pointers they left down.
func (e *Env) UpAllDoublePressed() []int {
	var pointers []int
	for _, id := range e.Runtime.ArmedDoublePress() {
		e.Registry.DeactivateLoop(doublePressOwner(id))
		e.Runtime.DoublePress[id] = false
		if p, ok := e.doublePointer[id]; ok {
			pointers = append(pointers, p)
		}
	}
	return pointers
}

func bindCancel(env *Env, m *keymap.CancelSkill) {
	anchor := env.canvas(m.Pos)
	pointer := m.PointerID
	name := fmt.Sprintf("cancel %s", m.Key)
	env.Registry.Register(m.Key, registry.Binding{
		Down: func() {
			env.cancelInFlight(pointer)
			if !env.IsDown(pointer) {
				env.touch(device.TouchDown, pointer, anchor)
			}
			env.Runner.Go(name, func(ctx context.Context) error {
				return env.sweep(ctx, pointer, anchor)
			})
		},
	})
}

// cancelInFlight evicts every cancelable gesture and lifts the pointers they
// left down, except skip, which the sweep drags onto the cancel button and
// releases.
func (e *Env) cancelInFlight(skip int) {
	affected := make(map[int]bool)
	for _, id := range e.Registry.CancelAll() {
		if p, ok := e.groupPointer[id]; ok {
			affected[p] = true
		}
	}
	for _, p := range e.UpAllDoublePressed() {
		affected[p] = true
	}
	if p, ok := e.dropCast(); ok {
		affected[p] = true
	}
	delete(affected, skip)

	pointers := make([]int, 0, len(affected))
	for p := range affected {
		pointers = append(pointers, p)
	}
	sort.Ints(pointers)
	for _, p := range pointers {
		e.touch(device.TouchUp, p, e.last[p])
	}
	e.Log.Debug().Ints("pointers", pointers).Int("cancel_pointer", skip).Msg("skills cancelled")
}

func (e *Env) sweep(ctx context.Context, pointer int, anchor coord.Point) error {
	for i := 0; i < SweepSteps; i++ {
		pos := coord.Point{X: anchor.X + i*SweepStep, Y: anchor.Y}
		if !e.Do(func() { e.touch(device.TouchMove, pointer, pos) }) {
			return macro.ErrStopped
		}
		if err := e.Runner.Sleep(ctx, SweepDelay); err != nil {
			e.Do(func() { e.touch(device.TouchUp, pointer, anchor) })
			return err
		}
	}
	if !e.Do(func() { e.touch(device.TouchUp, pointer, anchor) }) {
		return macro.ErrStopped
	}
	return nil
}
