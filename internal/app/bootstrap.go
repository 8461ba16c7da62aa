package app

import (
	"context"
	"fmt"

	"github.com/dshills/touchmask/internal/config"
	"github.com/dshills/touchmask/internal/config/watcher"
	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/device/scrcpy"
	"github.com/dshills/touchmask/internal/device/wsbridge"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/host/evdev"
	"github.com/dshills/touchmask/internal/host/terminal"
	"github.com/dshills/touchmask/internal/input"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/plugin/lua"
)

// Transport kinds and input sources accepted in the configuration.
const (
	transportScrcpy    = "scrcpy"
	transportWebsocket = "websocket"
	transportLog       = "log"

	sourceTerminal = "terminal"
	sourceEvdev    = "evdev"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 9),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap(ctx context.Context) error {
	steps := []func(context.Context) error{
		b.initConfig,
		b.initLogger,
		b.initTransport,
		b.initQueue,
		b.initEngine,
		b.initSource,
		b.initMapping,
		b.initWatcher,
		b.initMetrics,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			b.app.log.Error().Err(err).Msg("bootstrap failed")
			_ = b.cleanup()
			return err
		}
	}
	return nil
}

// initConfig loads the file, the environment and the caller's settings.
func (b *bootstrapper) initConfig(context.Context) error {
	cfg := config.New(config.WithFile(b.opts.ConfigPath))
	if err := cfg.Load(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	for path, value := range b.opts.Settings {
		if err := cfg.Set(path, value); err != nil {
			return &InitError{Component: "config", Err: fmt.Errorf("%s: %w", path, err)}
		}
	}
	if b.opts.MappingPath != "" {
		if err := cfg.Set("mapping.file", b.opts.MappingPath); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	if len(b.opts.Settings) > 0 {
		if err := cfg.Validate(); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger builds the root logger tagged with the session id.
func (b *bootstrapper) initLogger(context.Context) error {
	logger, closer, err := NewLogger(loggerConfig(b.app.config, b.opts))
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.log = logger.With().Str("session", b.app.session).Logger()
	b.app.logCloser = closer
	b.app.metrics = input.NewMetrics()
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

// initTransport connects to the device.
func (b *bootstrapper) initTransport(ctx context.Context) error {
	if b.opts.Transport != nil {
		b.app.transport = b.opts.Transport
		b.initOrder = append(b.initOrder, "transport")
		return nil
	}

	tc := b.app.config.Transport()
	log := b.app.log
	var (
		t   device.Transport
		err error
	)
	switch tc.Kind {
	case transportScrcpy:
		t, err = scrcpy.Dial(ctx, tc.Addr, scrcpy.WithLogger(log))
	case transportWebsocket:
		t, err = wsbridge.Dial(ctx, tc.URL, wsbridge.WithLogger(log))
	case transportLog:
		t = device.NewLogTransport(log)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownTransport, tc.Kind)
	}
	if err != nil {
		return &InitError{Component: "transport", Err: err}
	}
	b.app.transport = t
	b.initOrder = append(b.initOrder, "transport")
	return nil
}

// initQueue starts the per-pointer delivery lanes.
func (b *bootstrapper) initQueue(context.Context) error {
	m := b.app.metrics
	log := b.app.log
	b.app.queue = device.NewQueue(b.app.transport,
		device.WithLaneSize(b.app.config.Engine().QueueSize),
		device.WithLogger(log),
		device.WithErrorHandler(func(cmd device.Command, err error) {
			m.RecordTransportError()
			log.Error().Err(err).Stringer("kind", cmd.Kind()).Msg("send failed")
		}),
		device.WithDropHandler(func(device.Command) {
			m.RecordDroppedCommand()
		}),
	)
	b.initOrder = append(b.initOrder, "queue")
	return nil
}

// initEngine creates the input engine.
func (b *bootstrapper) initEngine(context.Context) error {
	ec := b.app.config.Engine()
	cfg := input.Config{
		Screen:         b.app.config.Device().Screen,
		Mask:           b.app.config.Mask(),
		TickInterval:   ec.TickInterval,
		WheelInterval:  ec.WheelInterval,
		ClickPointerID: ec.ClickPointerID,
		AimBox:         ec.AimBox,
		AimMargin:      ec.AimMargin,
	}

	var clip host.Clipboard = &host.SystemClipboard{}
	if b.opts.Clipboard != nil {
		clip = b.opts.Clipboard
	}

	// The source is created after the engine, so the pointer is bound
	// through a forwarder.
	b.app.engine = input.New(b.app.queue, cfg,
		input.WithLogger(b.app.log),
		input.WithPointer(sourcePointer{b.app}),
		input.WithClipboard(clip),
		input.WithScripter(lua.NewScripter(ec.ScriptTimeout, b.app.log)),
		input.WithMetrics(b.app.metrics),
	)
	b.app.scheduler = input.NewScheduler(b.app.engine)
	b.initOrder = append(b.initOrder, "engine")
	return nil
}

// initSource opens the host input source.
func (b *bootstrapper) initSource(context.Context) error {
	mask := b.app.engine.Config().Mask
	if b.opts.Source != nil {
		src, err := b.opts.Source(b.app, mask)
		if err != nil {
			return &InitError{Component: "source", Err: err}
		}
		b.app.source = src
		b.initOrder = append(b.initOrder, "source")
		return nil
	}

	ic := b.app.config.Input()
	switch ic.Source {
	case sourceTerminal:
		src, err := terminal.Open(b.app, mask, terminal.WithLogger(b.app.log))
		if err != nil {
			return &InitError{Component: "source", Err: err}
		}
		b.app.source = src
	case sourceEvdev:
		b.app.source = evdev.New(ic.Devices, b.app, mask,
			evdev.WithLogger(b.app.log),
			evdev.WithGrab(ic.Grab),
			evdev.WithSensitivity(ic.Sensitivity),
		)
	default:
		return &InitError{Component: "source", Err: fmt.Errorf("%w: %q", ErrUnknownSource, ic.Source)}
	}
	b.initOrder = append(b.initOrder, "source")
	return nil
}

// initMapping applies the mapping file. Without one only the default left
// click is bound.
func (b *bootstrapper) initMapping(context.Context) error {
	path := b.app.config.Mapping().File
	if path == "" {
		b.app.log.Warn().Msg("no mapping file configured")
		return nil
	}
	if err := b.app.ReloadMapping(path); err != nil {
		return &InitError{Component: "mapping", Err: err}
	}
	return nil
}

// initWatcher reloads the mapping file when it changes.
func (b *bootstrapper) initWatcher(context.Context) error {
	mc := b.app.config.Mapping()
	if mc.File == "" || !mc.Watch {
		return nil
	}
	w, err := watcher.New(mc.File, func(path string) { _ = b.app.ReloadMapping(path) },
		watcher.WithDebounce(mc.Debounce),
		watcher.WithLogger(b.app.log),
	)
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

// initMetrics builds the registry and, when enabled, the HTTP endpoint.
func (b *bootstrapper) initMetrics(context.Context) error {
	b.app.registry = newRegistry(b.app.metrics, b.app.queue)
	if mc := b.app.config.Metrics(); mc.Enabled {
		b.app.server = newMetricsServer(mc.Addr, b.app.registry, b.app.metrics, b.app.log)
	}
	b.initOrder = append(b.initOrder, "metrics")
	return nil
}

// cleanup releases components in reverse initialization order. The engine
// is closed before the queue so held touches are lifted, and the queue before
// the transport so they are delivered.
func (b *bootstrapper) cleanup() error {
	var errs ErrorList
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		errs.Add(b.cleanupComponent(b.initOrder[i]))
	}
	b.initOrder = b.initOrder[:0]
	return errs.AsError()
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(component string) error {
	switch component {
	case "metrics":
		b.app.server = nil
	case "watcher":
		b.app.watcher.Close()
	case "source":
		// the source releases its device when Run returns
	case "engine":
		b.app.engine.Close()
	case "queue":
		b.app.queue.Close()
		stats := b.app.queue.Stats()
		b.app.log.Info().
			Uint64("sent", stats.Sent).
			Uint64("failed", stats.Failed).
			Uint64("dropped", stats.Dropped).
			Msg("queue closed")
	case "transport":
		if err := b.app.transport.Close(); err != nil {
			return &ComponentError{Component: "transport", Action: "close", Err: err}
		}
	case "logger":
		if err := b.app.logCloser.Close(); err != nil {
			return &ComponentError{Component: "logger", Action: "close", Err: err}
		}
	case "config":
	}
	return nil
}

// sourcePointer forwards pointer requests to the source once it exists.
type sourcePointer struct {
	app *Application
}

func (p sourcePointer) SetCursorPosition(pt coord.Point) {
	if src := p.app.source; src != nil {
		src.SetCursorPosition(pt)
	}
}

func (p sourcePointer) SetCursorVisible(visible bool) {
	if src := p.app.source; src != nil {
		src.SetCursorVisible(visible)
	}
}
