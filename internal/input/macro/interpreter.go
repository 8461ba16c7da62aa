package macro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
)

// Env is the engine state visible to a step. It is only valid inside
// Host.Do.
type Env interface {
	Screen() coord.Size
	PointerDevice() coord.Point
	Emit(cmd device.Command)
	SetKeyInputMode(on bool)
}

// Host grants steps exclusive access to engine state.
type Host interface {
	// Do runs fn under the engine lock. It reports false, without running
	// fn, once the engine is closed.
	Do(fn func(env Env)) bool
}

// Actions are the primitive operations shared by macro steps and scripts.
// Positions are canvas components; the pointer and screen are read when the
// action runs.
type Actions interface {
	Touch(action device.TouchAction, pointerID int, x, y Component, d time.Duration) error
	Swipe(action device.SwipeAction, pointerID int, path [][2]Component, interval time.Duration) error
	Sleep(d time.Duration) error
	Pointer() (coord.Point, error)
	SetKeyInputMode(on bool) error
}

// Scripter runs the source of a lua step.
type Scripter interface {
	Run(ctx context.Context, source string, act Actions) error
}

// Interpreter executes macro lists against a Host.
type Interpreter struct {
	host     Host
	runner   *Runner
	relative coord.Size
	scripter Scripter
	log      zerolog.Logger
	onAbort  func(err *StepError)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithScripter enables lua steps.
func WithScripter(s Scripter) Option {
	return func(in *Interpreter) {
		in.scripter = s
	}
}

// WithLogger sets the interpreter logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(in *Interpreter) {
		in.log = logger
	}
}

// WithAbortHandler is called for every list aborted by a malformed step.
func WithAbortHandler(fn func(err *StepError)) Option {
	return func(in *Interpreter) {
		in.onAbort = fn
	}
}

// NewInterpreter creates an interpreter. Positions are scaled from the
// relative canvas to the live screen.
func NewInterpreter(host Host, runner *Runner, relative coord.Size, opts ...Option) *Interpreter {
	in := &Interpreter{
		host:     host,
		runner:   runner,
		relative: relative,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.log = in.log.With().Str("component", "macro").Logger()
	return in
}

// Runner returns the runner macro runs are started on.
func (in *Interpreter) Runner() *Runner {
	return in.runner
}

// Run executes a list on the calling goroutine, which must not hold the
// engine lock.
func (in *Interpreter) Run(ctx context.Context, list string, steps []keymap.MacroStep) error {
	return in.exec(ctx, list, steps)
}

func (in *Interpreter) run(ctx context.Context, runID string, id key.ID, list string, steps []keymap.MacroStep) error {
	log := in.log.With().Str("run", runID).Str("key", string(id)).Str("list", list).Logger()
	log.Debug().Int("steps", len(steps)).Msg("macro started")

	err := in.exec(ctx, list, steps)
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		log.Warn().Err(err).Msg("macro aborted")
		if in.onAbort != nil {
			in.onAbort(stepErr)
		}
		return nil
	}
	if err != nil {
		return err
	}
	log.Debug().Msg("macro finished")
	return nil
}

func (in *Interpreter) exec(ctx context.Context, list string, steps []keymap.MacroStep) error {
	act := &actions{in: in, ctx: ctx}
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		parsed, err := parseStep(s)
		if err != nil {
			return &StepError{List: list, Index: i, Type: s.Type, Err: err}
		}

		switch st := parsed.(type) {
		case *sleepStep:
			err = act.Sleep(st.d)
		case *touchStep:
			err = act.Touch(st.action, st.pointerID, st.x, st.y, st.d)
		case *swipeStep:
			err = act.Swipe(st.action, st.pointerID, st.path, st.interval)
		case *keyInputStep:
			err = act.SetKeyInputMode(st.on)
		case *luaStep:
			if in.scripter == nil {
				return &StepError{List: list, Index: i, Type: s.Type, Err: fmt.Errorf("%w: no lua runtime", ErrUnknownStep)}
			}
			if err = in.scripter.Run(ctx, st.source, act); err != nil && ctx.Err() == nil && !errors.Is(err, ErrStopped) {
				return &StepError{List: list, Index: i, Type: s.Type, Err: fmt.Errorf("%w: %v", ErrScript, err)}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// actions implements Actions for one run.
type actions struct {
	in  *Interpreter
	ctx context.Context
}

func (a *actions) do(fn func(env Env)) error {
	if !a.in.host.Do(fn) {
		return ErrStopped
	}
	return nil
}

func (a *actions) resolve(env Env, x, y Component) coord.Point {
	screen := env.Screen()
	p := env.PointerDevice()
	return coord.Point{
		X: x.Resolve(p.X, screen.W, a.in.relative.W),
		Y: y.Resolve(p.Y, screen.H, a.in.relative.H),
	}
}

func (a *actions) Touch(action device.TouchAction, pointerID int, x, y Component, d time.Duration) error {
	return a.do(func(env Env) {
		env.Emit(device.Touch{
			Action:    action,
			PointerID: pointerID,
			Screen:    env.Screen(),
			Pos:       a.resolve(env, x, y),
			Duration:  d,
		})
	})
}

func (a *actions) Swipe(action device.SwipeAction, pointerID int, path [][2]Component, interval time.Duration) error {
	return a.do(func(env Env) {
		pts := make([]coord.Point, len(path))
		for i, p := range path {
			pts[i] = a.resolve(env, p[0], p[1])
		}
		env.Emit(device.Swipe{
			Action:    action,
			PointerID: pointerID,
			Screen:    env.Screen(),
			Path:      pts,
			Interval:  interval,
		})
	})
}

func (a *actions) Sleep(d time.Duration) error {
	return a.in.runner.Sleep(a.ctx, d)
}

func (a *actions) Pointer() (coord.Point, error) {
	var p coord.Point
	err := a.do(func(env Env) {
		p = env.PointerDevice()
	})
	return p, err
}

func (a *actions) SetKeyInputMode(on bool) error {
	return a.do(func(env Env) {
		env.SetKeyInputMode(on)
	})
}
