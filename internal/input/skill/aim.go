package skill

import (
	"fmt"
	"math"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/aim"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/registry"
)

// aimLoop is the loop slot of the Sight tracker.
const aimLoop = "aim"

type observation struct {
	env     *Env
	pointer int
	anchor  coord.Point
	scale   float64
	origin  coord.Point
}

func bindObservation(env *Env, m *keymap.Observation) {
	o := &observation{
		env:     env,
		pointer: m.PointerID,
		anchor:  env.canvas(m.Pos),
		scale:   m.Scale,
	}
	env.Registry.Register(m.Key, registry.Binding{
		Down: o.down,
		Loop: func() { env.moveTo(o.pointer, o.position()) },
		Up:   func() { env.touch(device.TouchUp, o.pointer, o.position()) },
	})
}

func (o *observation) down() {
	o.origin = o.env.Runtime.PointerDevice()
	o.env.touch(device.TouchDown, o.pointer, o.anchor)
}

func (o *observation) position() coord.Point {
	d := o.env.Runtime.PointerDevice().Sub(o.origin)
	return coord.Point{
		X: o.anchor.X + int(math.Round(o.scale*float64(d.X))),
		Y: o.anchor.Y + int(math.Round(o.scale*float64(d.Y))),
	}
}

// sightBinding owns the aim tracker and the fire key swap.
type sightBinding struct {
	env     *Env
	tracker *aim.Tracker

	hasFire  bool
	fireKey  key.ID
	fire     registry.Binding
	saved    registry.Binding
	hadSaved bool
}

func bindSight(env *Env, i int, m *keymap.Sight) error {
	if env.sight != nil {
		return &keymap.EntryError{
			Index: i,
			Type:  string(keymap.TypeSight),
			Field: "type",
			Err:   fmt.Errorf("%w: more than one Sight entry", keymap.ErrInvalidField),
		}
	}
	s := &sightBinding{env: env}
	s.tracker = aim.New(aim.Config{
		Sight: aim.Stream{
			PointerID: m.PointerID,
			Anchor:    env.canvas(m.Pos),
			ScaleX:    m.ScaleX,
			ScaleY:    m.ScaleY,
		},
		Box:    env.AimBox,
		Margin: env.AimMargin,
	}, aimOutput{env})
	env.sight = s
	env.Registry.Register(m.Key, registry.Binding{Down: s.toggle})
	return nil
}

func (s *sightBinding) setFire(m *keymap.Fire) {
	s.tracker.SetFire(aim.Stream{
		PointerID: m.PointerID,
		Anchor:    s.env.canvas(m.Pos),
		ScaleX:    m.ScaleX,
		ScaleY:    m.ScaleY,
	}, m.Drag)
	s.hasFire = true
	s.fireKey = m.Key
	if s.fireKey == "" {
		s.fireKey = key.MouseLeft
	}
	rt := s.env.Runtime
	s.fire = registry.Binding{
		Down: func() { s.tracker.FireDown(rt) },
		Up:   func() { s.tracker.FireUp(rt) },
	}
}

func (s *sightBinding) toggle() {
	if s.tracker.Active() {
		s.deactivate()
		return
	}
	s.activate()
}

func (s *sightBinding) activate() {
	rt := s.env.Runtime
	reg := s.env.Registry
	s.tracker.Activate(rt)
	reg.ActivateLoop(aimLoop, func() { s.tracker.Tick(rt) })
	if !s.hasFire {
		return
	}
	// finish whatever the fire key was doing before it changes meaning
	if reg.IsPressed(s.fireKey) {
		reg.TriggerUp(s.fireKey)
	}
	s.saved, s.hadSaved = reg.Swap(s.fireKey, s.fire)
}

func (s *sightBinding) deactivate() {
	if !s.tracker.Active() {
		return
	}
	reg := s.env.Registry
	s.tracker.Deactivate(s.env.Runtime)
	reg.DeactivateLoop(aimLoop)
	if !s.hasFire {
		return
	}
	if s.hadSaved {
		reg.Swap(s.fireKey, s.saved)
	} else {
		reg.Unregister(s.fireKey)
	}
	s.saved, s.hadSaved = registry.Binding{}, false
}

type aimOutput struct {
	e *Env
}

func (o aimOutput) Emit(cmd device.Command)         { o.e.emit(cmd) }
func (o aimOutput) SetCursorPosition(p coord.Point) { o.e.Pointer.SetCursorPosition(p) }
func (o aimOutput) SetCursorVisible(visible bool)   { o.e.Pointer.SetCursorVisible(visible) }
