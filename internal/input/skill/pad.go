package skill

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/registry"
)

// Gamepad gesture timing.
const (
	// PadStepInterval is the spacing of eased moves, and the extra hold
	// after InitialDuration before a pad follows its binding.
	PadStepInterval = 25 * time.Millisecond
	// CastDelay is how long a pad cast stays at its anchor before aiming.
	CastDelay = 50 * time.Millisecond
	// CastWiggleSteps small moves follow a pad cast press so the game
	// registers the drag.
	CastWiggleSteps = 5
	// StickDeadZone is the axis magnitude below which a stick counts as
	// centered.
	StickDeadZone = 0.1
)

const castOwner = "pad-cast"

// direction reads a binding as x and y in [-1, 1].
func (e *Env) direction(d keymap.DirectionBinding) (x, y float64) {
	switch d.Kind {
	case keymap.DirectionButton:
		r := e.Registry
		x = held(r, d.Right) - held(r, d.Left)
		y = held(r, d.Down) - held(r, d.Up)
	case keymap.DirectionJoyStick:
		x, y = e.Runtime.Axis(d.X), e.Runtime.Axis(d.Y)
		if math.Hypot(x, y) < StickDeadZone {
			return 0, 0
		}
	}
	return x, y
}

func held(r *registry.Registry, id key.ID) float64 {
	if r.IsPressed(id) {
		return 1
	}
	return 0
}

// ellipseOffset scales a direction by the half axes and keeps the result
// inside their ellipse.
func ellipseOffset(x, y float64, maxX, maxY int) coord.Point {
	if n := math.Hypot(x, y); n > 1 {
		x, y = x/n, y/n
	}
	return coord.Point{
		X: int(math.Round(x * float64(maxX))),
		Y: int(math.Round(y * float64(maxY))),
	}
}

// easeSigmoid maps linear progress t in [0, 1] onto an S curve.
func easeSigmoid(t float64) float64 {
	return 1 / (1 + math.Exp(-12*(t-0.5)))
}

// directionPad holds a touch displaced from its center by a direction
// binding. It polls the binding every tick.
type directionPad struct {
	env     *Env
	name    string
	bind    keymap.DirectionBinding
	pointer int
	center  coord.Point
	maxX    int
	maxY    int
	initial time.Duration

	active bool
	gen    int
	last   coord.Point
	settle time.Time
}

func bindDirectionPad(env *Env, i int, m *keymap.DirectionPad) {
	p := &directionPad{
		env:     env,
		name:    fmt.Sprintf("direction-pad:%d", i),
		bind:    m.Bind,
		pointer: m.PointerID,
		center:  env.canvas(m.Pos),
		maxX:    env.length(m.MaxOffsetX),
		maxY:    env.length(m.MaxOffsetY),
		initial: millis(m.InitialDuration),
	}
	env.pads = append(env.pads, p)
	env.Registry.ActivateLoop(p.name, p.tick)
}

func (p *directionPad) offset() coord.Point {
	x, y := p.env.direction(p.bind)
	return ellipseOffset(x, y, p.maxX, p.maxY)
}

func (p *directionPad) tick() {
	env := p.env
	if p.active && !env.IsDown(p.pointer) {
		// lifted by a cancel or a release-all
		p.active = false
	}
	if env.padsBlocked {
		return
	}
	off := p.offset()
	now := env.Now()
	switch {
	case !p.active:
		if off != (coord.Point{}) {
			p.start(off, now)
		}
	case now.Before(p.settle):
	case off == (coord.Point{}):
		p.lift()
	case off != p.last:
		p.last = off
		env.touch(device.TouchMove, p.pointer, p.center.Add(off))
	}
}

// start touches down at the center and eases toward off over the initial
// duration on the runner. The pad ignores its binding until the ease is over.
func (p *directionPad) start(off coord.Point, now time.Time) {
	env := p.env
	p.active = true
	p.gen++
	p.last = off
	p.settle = now.Add(p.initial + PadStepInterval)
	env.touch(device.TouchDown, p.pointer, p.center)

	gen := p.gen
	steps := max(1, int(p.initial/PadStepInterval))
	env.Runner.Go(p.name, func(ctx context.Context) error {
		for i := 1; i <= steps; i++ {
			t := easeSigmoid(float64(i) / float64(steps))
			pos := p.center.Add(coord.Point{
				X: int(math.Round(float64(off.X) * t)),
				Y: int(math.Round(float64(off.Y) * t)),
			})
			live := false
			ok := env.Do(func() {
				if live = p.active && p.gen == gen; live {
					env.touch(device.TouchMove, p.pointer, pos)
				}
			})
			if !ok {
				return macro.ErrStopped
			}
			if !live {
				return nil
			}
			if err := env.Runner.Sleep(ctx, PadStepInterval); err != nil {
				return err
			}
		}
		return nil
	})
}

// lift ends the gesture where the pad last was.
func (p *directionPad) lift() {
	if !p.active {
		return
	}
	p.active = false
	p.env.touch(device.TouchUp, p.pointer, p.center.Add(p.last))
}

// blockPads lifts every direction pad and keeps them idle until
// unblockPads.
func (e *Env) blockPads() {
	e.padsBlocked = true
	for _, p := range e.pads {
		p.lift()
	}
}

func (e *Env) unblockPads() {
	e.padsBlocked = false
}

// padCast is a skill pressed by a button and aimed with a direction binding.
// At most one pad cast is active per mapping.
type padCast struct {
	env     *Env
	id      key.ID
	pointer int
	anchor  coord.Point
	radius  int
	mode    keymap.CastReleaseMode
	block   bool
	bind    keymap.DirectionBinding
}

// activeCast is the pad cast currently held down.
type activeCast struct {
	cast  *padCast
	last  coord.Point
	ready time.Time
}

func bindPadCast(env *Env, m *keymap.PadCastSpell) {
	c := &padCast{
		env:     env,
		id:      m.Key,
		pointer: m.PointerID,
		anchor:  env.canvas(m.Pos),
		radius:  env.length(m.DragRadius),
		mode:    m.ReleaseMode,
		block:   m.BlockDirectionPad,
		bind:    m.PadBind,
	}
	env.Registry.Register(m.Key, registry.Binding{Down: c.press, Up: c.release})
}

// press ends any active cast. Pressing the key of the active cast only ends
// it; any other key starts a new cast at its anchor.
func (c *padCast) press() {
	env := c.env
	if cur := env.cast; cur != nil {
		env.endCast()
		if cur.cast == c {
			return
		}
	}
	if c.block {
		env.blockPads()
	}
	env.cast = &activeCast{cast: c, ready: env.Now().Add(CastDelay)}
	env.touch(device.TouchDown, c.pointer, c.anchor)
	for i := range CastWiggleSteps {
		env.touch(device.TouchMove, c.pointer, c.anchor.Add(coord.Point{X: i, Y: -i}))
	}
	env.Registry.ActivateLoop(castOwner, env.castTick)
}

func (c *padCast) release() {
	if c.mode != keymap.ReleaseOnRelease {
		return
	}
	if cur := c.env.cast; cur != nil && cur.cast == c {
		c.env.endCast()
	}
}

// castTick aims the active cast once its delay has passed.
func (e *Env) castTick() {
	a := e.cast
	if a == nil {
		e.Registry.DeactivateLoop(castOwner)
		return
	}
	c := a.cast
	if !e.IsDown(c.pointer) {
		e.dropCast()
		return
	}
	if e.Now().Before(a.ready) {
		return
	}
	x, y := e.direction(c.bind)
	off := ellipseOffset(x, y, c.radius, c.radius)
	if off == a.last {
		return
	}
	a.last = off
	e.touch(device.TouchMove, c.pointer, c.anchor.Add(off))
}

// endCast lifts the active cast where it was last aimed.
func (e *Env) endCast() {
	a := e.cast
	if a == nil {
		return
	}
	pointer := a.cast.pointer
	e.dropCast()
	if e.IsDown(pointer) {
		e.touch(device.TouchUp, pointer, e.last[pointer])
	}
}

// dropCast forgets the active cast without emitting. It returns the pointer
// the cast held.
func (e *Env) dropCast() (int, bool) {
	a := e.cast
	if a == nil {
		return 0, false
	}
	e.cast = nil
	e.Registry.DeactivateLoop(castOwner)
	if a.cast.block {
		e.unblockPads()
	}
	return a.cast.pointer, true
}
