//go:build linux

package evdev

import (
	"context"
	"fmt"
	"sync"
	"time"

	goevdev "github.com/holoplot/go-evdev"

	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// Reader feeds one or more event devices to a Sink.
//
// Translated events are handed to the sink after the translator lock is
// released, so the sink may call back into SetCursorPosition.
type Reader struct {
	settings
	paths []string
	sink  host.Sink

	// sinkMu keeps deliveries in read order across devices.
	sinkMu sync.Mutex

	mu      sync.Mutex
	tr      *Translator
	pending batch
}

// New creates a reader for the device paths.
func New(paths []string, sink host.Sink, mask coord.Rect, opts ...Option) *Reader {
	r := &Reader{settings: newSettings(opts), paths: paths, sink: sink}
	r.tr = NewTranslator(&r.pending, mask)
	r.tr.Sensitivity = r.sensitivity
	r.tr.log = r.log
	return r
}

// SetCursorPosition implements host.Pointer. Relative devices have no
// absolute position, so the integrated pointer is moved instead.
func (r *Reader) SetCursorPosition(p coord.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tr.Warp(p)
}

// SetCursorVisible implements host.Pointer. There is no cursor to hide.
func (r *Reader) SetCursorVisible(bool) {}

func (r *Reader) handle(ev goevdev.InputEvent, ranges AbsRanges) {
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	r.mu.Lock()
	r.tr.Handle(ev, ranges)
	out := r.pending.take()
	r.mu.Unlock()
	out.deliver(r.sink)
}

func (r *Reader) releaseAll() {
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	r.mu.Lock()
	r.tr.ReleaseAll(time.Now())
	out := r.pending.take()
	r.mu.Unlock()
	out.deliver(r.sink)
}

type eventDevice struct {
	path   string
	dev    *goevdev.InputDevice
	ranges AbsRanges
}

// Run opens every device and forwards events until ctx is done or a device
// fails. Held inputs are released before it returns.
func (r *Reader) Run(ctx context.Context) error {
	if len(r.paths) == 0 {
		return ErrNoDevices
	}
	devices := make([]eventDevice, 0, len(r.paths))
	var once sync.Once
	closeAll := func() {
		once.Do(func() {
			for _, d := range devices {
				if r.grab {
					_ = d.dev.Ungrab()
				}
				_ = d.dev.Close()
			}
		})
	}
	for _, path := range r.paths {
		d, err := r.open(path)
		if err != nil {
			closeAll()
			return err
		}
		devices = append(devices, d)
	}
	defer r.releaseAll()

	ctx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(ctx, closeAll)
	defer stop()

	r.log.Info().Strs("devices", r.paths).Bool("grab", r.grab).Msg("evdev input started")
	var wg sync.WaitGroup
	for _, d := range devices {
		wg.Go(func() {
			if err := r.read(d); err != nil && ctx.Err() == nil {
				cancel(fmt.Errorf("evdev: read %s: %w", d.path, err))
			}
		})
	}
	<-ctx.Done()
	closeAll()
	wg.Wait()
	return context.Cause(ctx)
}

func (r *Reader) open(path string) (eventDevice, error) {
	dev, err := goevdev.Open(path)
	if err != nil {
		return eventDevice{}, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	if r.grab {
		if err := dev.Grab(); err != nil {
			_ = dev.Close()
			return eventDevice{}, fmt.Errorf("evdev: grab %s: %w", path, err)
		}
	}
	name, _ := dev.Name()
	ranges, err := dev.AbsInfos()
	if err != nil {
		r.log.Debug().Err(err).Str("device", path).Msg("no absolute axes")
	}
	r.log.Debug().Str("device", path).Str("name", name).Int("axes", len(ranges)).Msg("device opened")
	return eventDevice{path: path, dev: dev, ranges: ranges}, nil
}

func (r *Reader) read(d eventDevice) error {
	for {
		ev, err := d.dev.ReadOne()
		if err != nil {
			return err
		}
		r.handle(*ev, d.ranges)
	}
}

// batch collects translated events for delivery outside the reader lock.
type batch []func(host.Sink)

func (b *batch) HandleKeyEvent(ev key.Event) {
	*b = append(*b, func(s host.Sink) { s.HandleKeyEvent(ev) })
}

func (b *batch) HandleMouseEvent(ev mouse.Event) {
	*b = append(*b, func(s host.Sink) { s.HandleMouseEvent(ev) })
}

func (b *batch) HandleAxisEvent(ev key.AxisEvent) {
	*b = append(*b, func(s host.Sink) {
		if a, ok := s.(host.AxisSink); ok {
			a.HandleAxisEvent(ev)
		}
	})
}

func (b *batch) take() batch {
	out := *b
	*b = nil
	return out
}

func (b batch) deliver(s host.Sink) {
	for _, fn := range b {
		fn(s)
	}
}
