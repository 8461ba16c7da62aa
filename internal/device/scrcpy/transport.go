package scrcpy

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
)

// Transport writes scrcpy control messages to a connection. It is safe for
// concurrent use: each message is written atomically, and waits between the
// steps of a gesture happen outside the write lock.
type Transport struct {
	mu     sync.Mutex
	w      io.WriteCloser
	closed bool

	log      zerolog.Logger
	pressure uint16
	sleep    device.SleepFunc
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.log = logger
	}
}

// WithPressure sets the pressure reported for down and move events.
func WithPressure(p float64) Option {
	return func(t *Transport) {
		t.pressure = PressureFixed(p)
	}
}

// WithSleeper replaces the wait used between gesture steps.
func WithSleeper(fn device.SleepFunc) Option {
	return func(t *Transport) {
		t.sleep = fn
	}
}

// New wraps an established control connection.
func New(w io.WriteCloser, opts ...Option) *Transport {
	t := &Transport{
		w:        w,
		log:      zerolog.Nop(),
		pressure: DefaultPressure,
		sleep:    device.SleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("component", "transport").Str("transport", "scrcpy").Logger()
	return t
}

// Dial connects to a scrcpy control socket, usually forwarded by adb.
func Dial(ctx context.Context, addr string, opts ...Option) (*Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing scrcpy control socket %s: %w", addr, err)
	}
	return New(conn, opts...), nil
}

// Send implements device.Transport.
func (t *Transport) Send(ctx context.Context, cmd device.Command) error {
	var err error
	switch c := cmd.(type) {
	case device.Touch:
		err = t.play(ctx, c.PointerID, c.Screen, device.ExpandTouch(c))
	case device.Swipe:
		err = t.play(ctx, c.PointerID, c.Screen, device.ExpandSwipe(c))
	case device.SendKey:
		action := byte(0)
		if c.Action == device.KeyUp {
			action = 1
		}
		err = t.write(EncodeKeycode(action, uint32(c.Keycode), uint32(c.Repeat), uint32(c.Metastate)))
	case device.SetClipboard:
		err = t.write(EncodeSetClipboard(c.Sequence, c.Text, c.Paste))
	default:
		err = device.ErrUnsupported
	}
	if err != nil {
		return &device.SendError{Transport: "scrcpy", Command: cmd, Err: err}
	}
	return nil
}

// play writes a gesture step by step, waiting between steps.
func (t *Transport) play(ctx context.Context, pointerID int, screen coord.Size, steps []device.Step) error {
	return device.Play(ctx, steps, t.sleep, func(s device.Step) error {
		pressure := t.pressure
		if s.Action == device.TouchUp {
			pressure = 0
		}
		return t.write(EncodeTouch(motionAction(s.Action), uint64(pointerID), s.Pos, screen, pressure))
	})
}

func (t *Transport) write(msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return device.ErrClosed
	}
	_, err := t.w.Write(msg)
	return err
}

// Close closes the control connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.log.Debug().Msg("closing control connection")
	return t.w.Close()
}

func motionAction(a device.TouchAction) byte {
	switch a {
	case device.TouchUp:
		return MotionUp
	case device.TouchMove:
		return MotionMove
	default:
		return MotionDown
	}
}
