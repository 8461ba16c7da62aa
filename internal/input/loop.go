package input

import (
	"context"
	"time"
)

// Scheduler drives Engine.Tick from a ticker. It stands in for a display
// frame callback: loop handlers run once per frame.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
}

// NewScheduler creates a scheduler ticking at the engine's TickInterval.
func NewScheduler(e *Engine) *Scheduler {
	return &Scheduler{engine: e, interval: e.Config().TickInterval}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks until ctx is done or the engine is closed. A tick that takes
// longer than the interval delays the next one; missed ticks are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if !s.engine.Tick(now) {
				return ErrClosed
			}
		}
	}
}
