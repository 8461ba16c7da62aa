package skill

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/registry"
)

// holdTime is the tap duration for a configured time in milliseconds.
func holdTime(ms int) time.Duration {
	if ms <= 0 {
		return millis(keymap.DefaultTapTime)
	}
	return millis(ms)
}

func bindTap(env *Env, m *keymap.Tap) {
	anchor := env.canvas(m.Pos)
	hold := holdTime(m.Time)
	env.Registry.Register(m.Key, registry.Binding{
		Down: func() { env.tap(m.PointerID, anchor, hold) },
	})
}

func bindSwipe(env *Env, m *keymap.Swipe) {
	path := make([]coord.Point, len(m.Path))
	for i, p := range m.Path {
		path[i] = env.canvas(p)
	}
	interval := millis(m.Interval)
	env.Registry.Register(m.Key, registry.Binding{
		Down: func() {
			env.emit(device.Swipe{
				Action:    device.SwipeDefault,
				PointerID: m.PointerID,
				Path:      path,
				Interval:  interval,
				Eased:     true,
			})
		},
	})
}

// repeatTap taps once on press, then again every interval while held.
type repeatTap struct {
	env      *Env
	pointer  int
	anchor   coord.Point
	hold     time.Duration
	interval time.Duration
	next     time.Time
}

func bindRepeatTap(env *Env, m *keymap.RepeatTap) {
	r := &repeatTap{
		env:      env,
		pointer:  m.PointerID,
		anchor:   env.canvas(m.Pos),
		hold:     holdTime(m.Time),
		interval: millis(m.Interval),
	}
	env.Registry.Register(m.Key, registry.Binding{
		Down: r.down,
		Loop: r.loop,
	})
}

func (r *repeatTap) down() {
	r.env.tap(r.pointer, r.anchor, r.hold)
	r.next = r.env.Now().Add(r.interval)
}

func (r *repeatTap) loop() {
	now := r.env.Now()
	if now.Before(r.next) {
		return
	}
	r.env.tap(r.pointer, r.anchor, r.hold)
	r.next = r.next.Add(r.interval)
	// a stalled clock must not cause a burst of catch-up taps
	if r.next.Before(now) {
		r.next = now.Add(r.interval)
	}
}

type tapStep struct {
	pos  coord.Point
	hold time.Duration
	wait time.Duration
}

func bindMultipleTap(env *Env, m *keymap.MultipleTap) {
	steps := make([]tapStep, len(m.Items))
	for i, item := range m.Items {
		steps[i] = tapStep{
			pos:  env.canvas(item.Pos),
			hold: holdTime(item.Time),
			wait: millis(item.Wait),
		}
	}
	pointer := m.PointerID
	name := fmt.Sprintf("multiple-tap %s", m.Key)
	env.Registry.Register(m.Key, registry.Binding{
		Down: func() {
			env.Runner.Go(name, func(ctx context.Context) error {
				for _, s := range steps {
					if !env.Do(func() { env.tap(pointer, s.pos, s.hold) }) {
						return macro.ErrStopped
					}
					if s.wait <= 0 {
						continue
					}
					if err := env.Runner.Sleep(ctx, s.wait); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})
}

// bindClick gives M0 a plain click that follows the pointer while held.
func bindClick(env *Env) {
	pointer := env.ClickPointerID
	env.Registry.Register(key.MouseLeft, registry.Binding{
		Down: func() { env.touch(device.TouchDown, pointer, env.Runtime.PointerDevice()) },
		Loop: func() { env.moveTo(pointer, env.Runtime.PointerDevice()) },
		Up:   func() { env.touch(device.TouchUp, pointer, env.Runtime.PointerDevice()) },
	})
}
