package macro

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
)

// Runner runs cooperative tasks: macro lists, scripted gestures and any
// other work that sleeps between emissions. Tasks never hold the engine lock
// while sleeping.
type Runner struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	sleep   device.SleepFunc
	log     zerolog.Logger
	onError func(name string, err error)
	active  atomic.Int64
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSleeper replaces the wait used by Sleep.
func WithSleeper(fn device.SleepFunc) RunnerOption {
	return func(r *Runner) {
		r.sleep = fn
	}
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = logger
	}
}

// WithErrorHandler is called with every task error other than
// cancellation.
func WithErrorHandler(fn func(name string, err error)) RunnerOption {
	return func(r *Runner) {
		r.onError = fn
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		sleep: device.SleepContext,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r
}

// Go starts fn on its own goroutine. It reports false if the runner is
// closed.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	r.active.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.active.Add(-1)
		defer func() {
			if p := recover(); p != nil {
				r.report(name, fmt.Errorf("task panicked: %v", p))
			}
		}()
		if err := fn(r.ctx); err != nil {
			r.report(name, err)
		}
	}()
	return true
}

func (r *Runner) report(name string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrStopped) {
		r.log.Debug().Str("task", name).Err(err).Msg("task stopped")
		return
	}
	r.log.Warn().Str("task", name).Err(err).Msg("task failed")
	if r.onError != nil {
		r.onError(name, err)
	}
}

// Sleep waits for d or until ctx is done.
func (r *Runner) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return r.sleep(ctx, d)
}

// Active returns the number of running tasks.
func (r *Runner) Active() int {
	return int(r.active.Load())
}

// Wait blocks until every task started so far, and any task they start,
// has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels outstanding sleeps, waits for tasks to return and refuses
// new ones.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
