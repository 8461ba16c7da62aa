package wsbridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
)

// DefaultWriteTimeout bounds a single frame write.
const DefaultWriteTimeout = 2 * time.Second

// Transport sends commands to a websocket bridge.
type Transport struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	log          zerolog.Logger
	writeTimeout time.Duration
	sleep        device.SleepFunc
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.log = logger
	}
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.writeTimeout = d
		}
	}
}

// WithSleeper replaces the wait used between gesture steps.
func WithSleeper(fn device.SleepFunc) Option {
	return func(t *Transport) {
		t.sleep = fn
	}
}

// Dial opens a websocket to the bridge at url.
func Dial(ctx context.Context, url string, opts ...Option) (*Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing bridge %s: %w", url, err)
	}
	return New(conn, opts...), nil
}

// New wraps an established websocket connection.
func New(conn *websocket.Conn, opts ...Option) *Transport {
	t := &Transport{
		conn:         conn,
		log:          zerolog.Nop(),
		writeTimeout: DefaultWriteTimeout,
		sleep:        device.SleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("component", "transport").Str("transport", "websocket").Logger()
	return t
}

// Send implements device.Transport.
func (t *Transport) Send(ctx context.Context, cmd device.Command) error {
	var err error
	switch c := cmd.(type) {
	case device.Touch:
		err = device.Play(ctx, device.ExpandTouch(c), t.sleep, func(s device.Step) error {
			return t.write(ctx, touchMessage(s, c.PointerID, c.Screen))
		})
	case device.Swipe:
		err = device.Play(ctx, device.ExpandSwipe(c), t.sleep, func(s device.Step) error {
			return t.write(ctx, touchMessage(s, c.PointerID, c.Screen))
		})
	case device.SendKey:
		err = t.write(ctx, keyMessage(c))
	case device.SetClipboard:
		err = t.write(ctx, clipboardMessage(c))
	default:
		err = device.ErrUnsupported
	}
	if err != nil {
		return &device.SendError{Transport: "websocket", Command: cmd, Err: err}
	}
	return nil
}

func (t *Transport) write(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return device.ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, t.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, t.conn, msg)
}

// Close sends a normal closure to the bridge.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.log.Debug().Msg("closing bridge connection")
	return t.conn.Close(websocket.StatusNormalClosure, "")
}
