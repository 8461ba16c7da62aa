// Package app wires configuration, the device transport, the input engine
// and a host input source into a running touchmask session, and manages its
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/config"
	"github.com/dshills/touchmask/internal/config/watcher"
	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// Source is a host input source. It feeds a host.Sink and follows the
// pointer requests of the engine.
type Source interface {
	host.Pointer
	Run(ctx context.Context) error
}

// SourceFactory builds the input source delivering to sink.
type SourceFactory func(sink host.Sink, mask coord.Rect) (Source, error)

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty uses defaults and
	// the environment only.
	ConfigPath string

	// MappingPath overrides mapping.file.
	MappingPath string

	// Debug forces debug logging.
	Debug bool

	// Settings are applied over the loaded configuration, keyed by dotted
	// path (e.g. "transport.kind").
	Settings map[string]any

	// LogOutput receives the log when logging.file is empty.
	LogOutput io.Writer

	// Transport replaces the configured transport.
	Transport device.Transport

	// Source replaces the configured input source.
	Source SourceFactory

	// Clipboard replaces the system clipboard.
	Clipboard host.Clipboard
}

// Application is one mapping session.
type Application struct {
	opts    Options
	session string

	config    *config.Config
	log       zerolog.Logger
	logCloser io.Closer

	metrics   *input.Metrics
	registry  *prometheus.Registry
	transport device.Transport
	queue     *device.Queue
	engine    *input.Engine
	scheduler *input.Scheduler
	source    Source
	watcher   *watcher.Watcher
	server    *metricsServer

	mu       sync.Mutex
	cancel   context.CancelCauseFunc
	done     chan struct{}
	running  atomic.Bool
	shutdown bool
	boot     *bootstrapper
}

// New creates an Application and initializes every component. Dialing the
// transport is bounded by ctx.
func New(ctx context.Context, opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		session: uuid.NewString(),
		log:     zerolog.Nop(),
	}
	b := newBootstrapper(app, opts)
	if err := b.bootstrap(ctx); err != nil {
		return nil, err
	}
	app.boot = b
	app.log.Info().
		Str("transport", app.config.Transport().Kind).
		Str("source", app.config.Input().Source).
		Msg("session ready")
	return app, nil
}

// Session returns the session id attached to every log line.
func (app *Application) Session() string {
	return app.session
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Engine returns the input engine.
func (app *Application) Engine() *input.Engine {
	return app.engine
}

// Registry returns the Prometheus registry of the session.
func (app *Application) Registry() *prometheus.Registry {
	return app.registry
}

// HandleKeyEvent implements host.Sink for the input source.
func (app *Application) HandleKeyEvent(ev key.Event) {
	app.engine.HandleKeyEvent(ev)
}

// HandleMouseEvent implements host.Sink for the input source.
func (app *Application) HandleMouseEvent(ev mouse.Event) {
	app.engine.HandleMouseEvent(ev)
}

// HandleAxisEvent implements host.AxisSink for gamepad sources.
func (app *Application) HandleAxisEvent(ev key.AxisEvent) {
	app.engine.HandleAxisEvent(ev)
}

// Run drives the session until ctx is done, the source quits or a component
// fails. A quit or a cancelled ctx returns nil.
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return ErrShutdown
	}
	if !app.running.CompareAndSwap(false, true) {
		app.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancelCause(ctx)
	app.cancel = cancel
	app.done = make(chan struct{})
	app.mu.Unlock()
	defer close(app.done)
	defer cancel(nil)

	var wg sync.WaitGroup
	start := func(name string, run func(context.Context) error, stopOnNil bool) {
		wg.Go(func() {
			err := app.guard(ctx, name, run)
			switch {
			case err == nil && stopOnNil:
				cancel(ErrQuit)
			case err == nil, errors.Is(err, context.Canceled):
			default:
				cancel(&ComponentError{Component: name, Action: "run", Err: err})
			}
		})
	}

	start("scheduler", app.scheduler.Run, false)
	start("source", app.source.Run, true)
	if app.watcher != nil {
		start("watcher", app.watcher.Run, false)
	}
	if app.server != nil {
		start("metrics", app.server.Run, false)
	}

	<-ctx.Done()
	wg.Wait()

	err := context.Cause(ctx)
	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) || errors.Is(err, ErrShutdown) {
		app.log.Info().Msg("session ended")
		return nil
	}
	app.log.Error().Err(err).Msg("session failed")
	return err
}

// guard runs a component and turns a panic into an error.
func (app *Application) guard(ctx context.Context, name string, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			app.log.Error().Str("component", name).Interface("panic", r).Msg("component panicked")
		}
	}()
	return run(ctx)
}

// Shutdown stops a running session and releases every component. Queued
// commands are flushed to the transport first. It is safe to call more than
// once.
func (app *Application) Shutdown() error {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return nil
	}
	app.shutdown = true
	done := app.done
	if app.cancel != nil {
		app.cancel(ErrShutdown)
	}
	app.mu.Unlock()

	if done != nil {
		<-done
	}
	return app.boot.cleanup()
}

// ReloadMapping loads path and applies it to the engine. A file that does not
// decode leaves the current mapping in place.
func (app *Application) ReloadMapping(path string) error {
	cfg, err := keymap.Load(path)
	if err != nil {
		app.log.Error().Err(err).Str("path", path).Msg("mapping not reloaded")
		return err
	}
	if err := app.engine.Apply(cfg); err != nil {
		app.log.Error().Err(err).Str("path", path).Msg("mapping rejected")
		return fmt.Errorf("apply %s: %w", path, err)
	}
	app.log.Info().Str("path", path).Str("title", cfg.Title).Int("entries", len(cfg.List)).Msg("mapping applied")
	return nil
}
