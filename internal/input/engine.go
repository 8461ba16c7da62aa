package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/aim"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/mode"
	"github.com/dshills/touchmask/internal/input/mouse"
	"github.com/dshills/touchmask/internal/input/registry"
	"github.com/dshills/touchmask/internal/input/skill"
	"github.com/dshills/touchmask/internal/input/state"
)

// Config configures the engine.
type Config struct {
	// Screen is the device resolution.
	Screen coord.Size

	// Mask is the rectangle of the mirrored screen inside the client.
	Mask coord.Rect

	// TickInterval is the loop scheduler period.
	// Default: 16ms
	TickInterval time.Duration

	// WheelInterval is the minimum time between two same-direction wheel
	// triggers.
	// Default: 50ms
	WheelInterval time.Duration

	// ClickPointerID is the pointer of the default left click.
	ClickPointerID int

	// AimBox and AimMargin tune Sight recentring. Zero values use the aim
	// defaults.
	AimBox    coord.Size
	AimMargin int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Screen:         coord.Size{W: 1280, H: 720},
		Mask:           coord.Rect{Left: 70, Top: 30, W: 1280, H: 720},
		TickInterval:   16 * time.Millisecond,
		WheelInterval:  mouse.DefaultWheelInterval,
		ClickPointerID: skill.DefaultClickPointerID,
		AimMargin:      aim.DefaultMargin,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// WithPointer sets the host pointer driven by Sight.
func WithPointer(p host.Pointer) Option {
	return func(e *Engine) {
		e.pointer = p
	}
}

// WithClipboard sets the clipboard read on key-input paste.
func WithClipboard(c host.Clipboard) Option {
	return func(e *Engine) {
		e.clipboard = c
	}
}

// WithScripter enables lua macro steps and Script mappings.
func WithScripter(s macro.Scripter) Option {
	return func(e *Engine) {
		e.scripter = s
	}
}

// WithRunner replaces the runner cooperative tasks run on. The engine closes
// it on Close.
func WithRunner(r *macro.Runner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithClock replaces the clock used for repeat timing and wheel events
// without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics shares a metrics tracker.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine turns host input into device commands. Every exported method is
// safe for concurrent use; all state is guarded by one lock.
type Engine struct {
	mu sync.Mutex

	config Config
	log    zerolog.Logger

	emitter  device.Emitter
	registry *registry.Registry
	runtime  *state.Runtime
	env      *skill.Env
	modes    *mode.Manager
	wheel    *mouse.WheelLimiter
	metrics  *Metrics

	pointer   host.Pointer
	clipboard host.Clipboard
	scripter  macro.Scripter
	runner    *macro.Runner
	now       func() time.Time

	// mapping is the last successfully applied config.
	mapping *keymap.Config

	closed bool
}

// New creates an engine emitting to emitter. It starts in mapping mode with
// only the default left click bound.
func New(emitter device.Emitter, config Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = def.TickInterval
	}
	if config.WheelInterval <= 0 {
		config.WheelInterval = def.WheelInterval
	}
	if config.Screen.W <= 0 || config.Screen.H <= 0 {
		config.Screen = def.Screen
	}
	if config.Mask.W <= 0 || config.Mask.H <= 0 {
		config.Mask = coord.Rect{W: config.Screen.W, H: config.Screen.H}
	}

	e := &Engine{
		config:    config,
		log:       zerolog.Nop(),
		pointer:   host.NopPointer{},
		clipboard: host.StaticClipboard(""),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "engine").Logger()
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}
	if e.runner == nil {
		log := e.log
		e.runner = macro.NewRunner(
			macro.WithRunnerLogger(log),
			macro.WithErrorHandler(func(name string, err error) {
				log.Warn().Err(err).Str("task", name).Msg("task failed")
			}),
		)
	}

	e.emitter = countingEmitter{next: emitter, metrics: e.metrics}
	e.registry = registry.New()
	e.runtime = state.New(config.Screen, config.Mask)
	e.wheel = mouse.NewWheelLimiter(config.WheelInterval)

	e.modes = mode.NewManager(&mode.Context{
		Emitter:   e.emitter,
		Clipboard: e.clipboard,
		Log:       e.log,
	})
	e.modes.Register(mode.NewMappingMode())
	e.modes.Register(mode.NewKeyInputMode())
	_ = e.modes.SetInitialMode(mode.ModeMapping)

	e.env = &skill.Env{
		Registry:       e.registry,
		Runtime:        e.runtime,
		Emitter:        e.emitter,
		Pointer:        e.pointer,
		Runner:         e.runner,
		Do:             e.Do,
		KeyInput:       e.setKeyInput,
		Now:            e.now,
		Log:            e.log,
		Scripter:       e.scripter,
		OnMacroAbort:   func(*macro.StepError) { e.metrics.RecordMacroAbort() },
		ClickPointerID: config.ClickPointerID,
		AimBox:         config.AimBox,
		AimMargin:      config.AimMargin,
	}
	// an empty mapping cannot fail
	_ = skill.Bind(e.env, e.emptyMapping())
	return e
}

func (e *Engine) emptyMapping() *keymap.Config {
	return &keymap.Config{RelativeSize: e.runtime.Screen}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Metrics returns the engine metrics.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// HandleKeyEvent processes a keyboard event.
func (e *Engine) HandleKeyEvent(ev key.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || ev.Code == key.None {
		return
	}
	timer := StartTimer()
	defer func() { e.metrics.RecordKeyEvent(timer.Elapsed()) }()

	res := e.modes.Current().HandleKey(ev, e.modes.Context())
	e.applyResult(res)
	if res.Consumed {
		return
	}
	e.dispatch(ev.Code, ev.IsDown(), ev.Repeat)
}

// HandleMouseEvent processes a mouse event. The pointer position is recorded
// before any handler runs.
func (e *Engine) HandleMouseEvent(ev mouse.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	timer := StartTimer()
	defer func() { e.metrics.RecordMouseEvent(ev.Button.IsScroll(), timer.Elapsed()) }()

	e.runtime.Pointer = coord.Point{X: ev.Position.X, Y: ev.Position.Y}

	res := e.modes.Current().HandleMouse(ev, e.modes.Context())
	e.applyResult(res)
	if res.Consumed {
		return
	}

	switch ev.Action {
	case mouse.ActionPress:
		if ev.Button.IsScroll() {
			e.wheelDown(ev)
			return
		}
		e.dispatch(ev.Button.ID(), true, false)
	case mouse.ActionRelease:
		if !ev.Button.IsScroll() {
			e.dispatch(ev.Button.ID(), false, false)
		}
	case mouse.ActionLeave:
		for _, id := range e.registry.Pressed() {
			if id.IsMouse() {
				e.dispatch(id, false, false)
			}
		}
	}
}

// HandleAxisEvent records a gamepad axis. Direction pads and pad casts read
// it on the next tick.
func (e *Engine) HandleAxisEvent(ev key.AxisEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || ev.Axis == "" {
		return
	}
	timer := StartTimer()
	e.runtime.SetAxis(ev.Axis, ev.Value)
	e.metrics.RecordAxisEvent(timer.Elapsed())
}

// wheelDown fires the down phase of a wheel binding. Wheels have no pressed
// state and no up.
func (e *Engine) wheelDown(ev mouse.Event) {
	at := ev.Timestamp
	if at.IsZero() {
		at = e.now()
	}
	if !e.wheel.Allow(ev.Button, at) {
		e.metrics.RecordWheelDrop()
		return
	}
	if !e.registry.TriggerDown(ev.Button.ID()) {
		e.metrics.RecordUnbound()
	}
}

// dispatch routes a press or release to the registry. Auto-repeat downs and
// releases without a press are dropped.
func (e *Engine) dispatch(id key.ID, down, repeat bool) {
	if id == key.None {
		return
	}
	if down {
		if repeat || e.registry.IsPressed(id) {
			e.metrics.RecordSuppressedRepeat()
			return
		}
		e.registry.SetPressed(id, true)
		if !e.registry.TriggerDown(id) {
			e.metrics.RecordUnbound()
		}
		return
	}
	if !e.registry.IsPressed(id) {
		return
	}
	e.registry.SetPressed(id, false)
	e.registry.TriggerUp(id)
}

// Tick runs one scheduler frame. In mapping mode every active loop runs
// once; in other modes only the mode's own timer runs. It reports false once
// the engine is closed.
func (e *Engine) Tick(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	timer := StartTimer()

	cur := e.modes.Current()
	if cur.Name() != mode.ModeMapping {
		e.applyResult(cur.Tick(now, e.modes.Context()))
		e.metrics.RecordTick(0, e.registry.ActiveLoops(), 0)
		return true
	}
	n := e.registry.RunLoops()
	e.metrics.RecordTick(n, e.registry.ActiveLoops(), timer.Elapsed())
	return true
}

func (e *Engine) applyResult(res mode.Result) {
	if res.Switch != "" {
		e.switchMode(res.Switch)
	}
}

// switchMode changes mode. Entering key-input first releases every held
// binding and lifts every pointer.
func (e *Engine) switchMode(name string) {
	if e.modes.CurrentName() == name {
		return
	}
	if name == mode.ModeKeyInput {
		e.releaseAll()
	}
	if err := e.modes.Switch(name); err != nil {
		e.log.Warn().Err(err).Str("mode", name).Msg("mode switch failed")
		return
	}
	e.metrics.RecordModeSwitch()
	e.log.Debug().Str("mode", name).Msg("mode switched")
}

func (e *Engine) setKeyInput(on bool) {
	if on {
		e.switchMode(mode.ModeKeyInput)
		return
	}
	e.switchMode(mode.ModeMapping)
}

// releaseAll runs the up phase of every held input, then lifts whatever is
// still down.
func (e *Engine) releaseAll() {
	for _, id := range e.registry.Pressed() {
		e.registry.SetPressed(id, false)
		e.registry.TriggerUp(id)
	}
	e.env.ReleaseAll()
}

// CloseKeyInput leaves key-input passthrough. It is a no-op in mapping mode.
func (e *Engine) CloseKeyInput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.setKeyInput(false)
}

// Mode returns the name of the current mode.
func (e *Engine) Mode() string {
	return e.modes.CurrentName()
}

// Apply replaces the active mapping. Held inputs are released first. On
// error the registry is left empty until the next successful Apply.
func (e *Engine) Apply(cfg *keymap.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if cfg == nil {
		cfg = e.emptyMapping()
	}

	e.releaseAll()
	e.wheel.Reset()
	if err := skill.Bind(e.env, cfg); err != nil {
		e.mapping = nil
		e.metrics.RecordBindFailure()
		e.log.Error().Err(err).Str("title", cfg.Title).Msg("mapping rejected")
		return fmt.Errorf("apply mapping %q: %w", cfg.Title, err)
	}
	e.mapping = cfg
	e.log.Info().
		Str("title", cfg.Title).
		Int("entries", len(cfg.List)).
		Int("bindings", e.registry.Len()).
		Msg("mapping applied")
	return nil
}

// Mapping returns the active mapping, or nil if none was applied.
func (e *Engine) Mapping() *keymap.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapping
}

// SetGeometry changes the device resolution and mask rectangle. Held inputs
// are released and the active mapping is bound again for the new geometry.
func (e *Engine) SetGeometry(screen coord.Size, mask coord.Rect) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if screen.W <= 0 || screen.H <= 0 || mask.W <= 0 || mask.H <= 0 {
		return fmt.Errorf("%w: screen %dx%d, mask %dx%d", ErrInvalidGeometry, screen.W, screen.H, mask.W, mask.H)
	}

	e.releaseAll()
	e.runtime.SetGeometry(screen, mask)
	cfg := e.mapping
	if cfg == nil {
		cfg = e.emptyMapping()
	}
	if err := skill.Bind(e.env, cfg); err != nil {
		e.mapping = nil
		return fmt.Errorf("rebind mapping %q: %w", cfg.Title, err)
	}
	e.log.Info().
		Int("screen_w", screen.W).
		Int("screen_h", screen.H).
		Msg("geometry changed")
	return nil
}

// Pointer returns the host pointer position in client pixels.
func (e *Engine) Pointer() coord.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runtime.Pointer
}

// Do runs fn under the engine lock. Runner goroutines use it to re-enter the
// engine between sleeps. It reports false, without running fn, once the
// engine is closed. It must not be called while holding the lock.
func (e *Engine) Do(fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	fn()
	return true
}

// Close releases every held input, lifts every pointer and stops all
// cooperative tasks. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.switchMode(mode.ModeMapping)
	e.releaseAll()
	e.closed = true
	e.mu.Unlock()

	// Runner tasks re-enter through Do, so the lock must be free here.
	e.runner.Close()
	e.log.Debug().Msg("engine closed")
}

// countingEmitter counts commands on their way out.
type countingEmitter struct {
	next    device.Emitter
	metrics *Metrics
}

func (c countingEmitter) Emit(cmd device.Command) {
	c.metrics.RecordCommand(cmd.Kind())
	c.next.Emit(cmd)
}
