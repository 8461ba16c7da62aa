package device

import (
	"context"
	"math"
	"time"

	"github.com/dshills/touchmask/internal/input/coord"
)

const (
	// DefaultTapDuration is the hold time of a Touch{Default} without one.
	DefaultTapDuration = 80 * time.Millisecond

	// SegmentLength is the longest straight move of a linear swipe, in
	// device pixels.
	SegmentLength = 100

	// MinStepInterval is the shortest wait between eased swipe moves.
	MinStepInterval = 25 * time.Millisecond
)

// Step is one primitive contact event followed by a wait.
type Step struct {
	Action TouchAction // TouchDown, TouchMove or TouchUp
	Pos    coord.Point
	Wait   time.Duration
}

// ExpandTouch splits a touch into primitive steps. Only TouchDefault expands
// to more than one step.
func ExpandTouch(t Touch) []Step {
	if t.Action != TouchDefault {
		return []Step{{Action: t.Action, Pos: t.Pos}}
	}
	hold := t.Duration
	if hold <= 0 {
		hold = DefaultTapDuration
	}
	return []Step{
		{Action: TouchDown, Pos: t.Pos, Wait: hold},
		{Action: TouchUp, Pos: t.Pos},
	}
}

// ExpandSwipe splits a swipe into primitive steps. Linear swipes cut every
// segment into pieces of at most SegmentLength pixels spread over the
// interval; eased swipes take interval/MinStepInterval steps along a sigmoid.
func ExpandSwipe(s Swipe) []Step {
	if len(s.Path) == 0 {
		return nil
	}

	var steps []Step
	if s.Action != SwipeNoDown {
		steps = append(steps, Step{Action: TouchDown, Pos: s.Path[0]})
	}

	for i := 1; i < len(s.Path); i++ {
		from, to := s.Path[i-1], s.Path[i]
		if s.Eased {
			steps = append(steps, easedSegment(from, to, s.Interval)...)
		} else {
			steps = append(steps, linearSegment(from, to, s.Interval)...)
		}
	}

	if s.Action != SwipeNoUp {
		steps = append(steps, Step{Action: TouchUp, Pos: s.Path[len(s.Path)-1]})
	}
	return steps
}

func linearSegment(from, to coord.Point, interval time.Duration) []Step {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	n := int(math.Ceil(math.Hypot(dx, dy) / SegmentLength))
	if n < 1 {
		n = 1
	}
	wait := interval / time.Duration(n)

	steps := make([]Step, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		steps = append(steps, Step{
			Action: TouchMove,
			Pos:    lerp(from, dx, dy, t),
			Wait:   wait,
		})
	}
	return steps
}

func easedSegment(from, to coord.Point, interval time.Duration) []Step {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	n := int(interval / MinStepInterval)
	if n < 1 {
		n = 1
	}
	wait := interval / time.Duration(n)

	steps := make([]Step, 0, n)
	for i := 1; i <= n; i++ {
		t := EaseSigmoid(float64(i) / float64(n))
		if i == n {
			t = 1
		}
		steps = append(steps, Step{
			Action: TouchMove,
			Pos:    lerp(from, dx, dy, t),
			Wait:   wait,
		})
	}
	return steps
}

func lerp(from coord.Point, dx, dy, t float64) coord.Point {
	return coord.Point{
		X: from.X + int(math.Round(dx*t)),
		Y: from.Y + int(math.Round(dy*t)),
	}
}

// EaseSigmoid maps linear progress t in [0,1] onto an S-curve that starts
// and ends slowly.
func EaseSigmoid(t float64) float64 {
	return 1 / (1 + math.Exp(-12*(t-0.5)))
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play hands each step to write and then waits out the step's Wait. It stops
// at the first error.
func Play(ctx context.Context, steps []Step, sleep SleepFunc, write func(Step) error) error {
	for _, s := range steps {
		if err := write(s); err != nil {
			return err
		}
		if s.Wait <= 0 {
			continue
		}
		if err := sleep(ctx, s.Wait); err != nil {
			return err
		}
	}
	return nil
}
