package device

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultLaneSize is the buffer size of each queue lane.
	DefaultLaneSize = 256

	// DefaultDrainTimeout bounds how long Close waits for the lanes.
	DefaultDrainTimeout = 2 * time.Second
)

// Queue is an asynchronous Emitter. Commands sharing a lane are delivered in
// emission order by that lane's goroutine; distinct lanes run independently.
type Queue struct {
	transport Transport
	log       zerolog.Logger
	laneSize  int
	drainWait time.Duration

	onError func(cmd Command, err error)
	onDrop  func(cmd Command)

	mu     sync.Mutex
	lanes  map[int]chan Command
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLaneSize sets the buffer size of each lane.
func WithLaneSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.laneSize = n
		}
	}
}

// WithDrainTimeout bounds how long Close lets the lanes deliver before
// cancelling the sends still in flight.
func WithDrainTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.drainWait = d
		}
	}
}

// WithLogger sets the queue logger.
func WithLogger(logger zerolog.Logger) QueueOption {
	return func(q *Queue) {
		q.log = logger
	}
}

// WithErrorHandler registers a callback for failed sends. It runs on the
// lane goroutine after the failure has been logged.
func WithErrorHandler(fn func(cmd Command, err error)) QueueOption {
	return func(q *Queue) {
		q.onError = fn
	}
}

// WithDropHandler registers a callback for commands dropped on a full lane.
func WithDropHandler(fn func(cmd Command)) QueueOption {
	return func(q *Queue) {
		q.onDrop = fn
	}
}

// NewQueue creates a queue delivering to transport.
func NewQueue(transport Transport, opts ...QueueOption) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		transport: transport,
		log:       zerolog.Nop(),
		laneSize:  DefaultLaneSize,
		drainWait: DefaultDrainTimeout,
		lanes:     make(map[int]chan Command),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.log = q.log.With().Str("component", "queue").Logger()
	return q
}

// Emit implements Emitter. It never blocks: when the lane is full the command
// is dropped and logged.
func (q *Queue) Emit(cmd Command) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	lane := q.laneLocked(cmd.Lane())

	// The send never blocks, so holding the lock keeps Close from closing
	// the lane underneath it.
	var full bool
	select {
	case lane <- cmd:
	default:
		full = true
	}
	q.mu.Unlock()

	if full {
		q.dropped.Add(1)
		q.log.Warn().Int("lane", cmd.Lane()).Stringer("cmd", cmd).Msg("lane full, dropping command")
		if q.onDrop != nil {
			q.onDrop(cmd)
		}
	}
}

// laneLocked returns the lane channel, starting its worker on first use.
func (q *Queue) laneLocked(id int) chan Command {
	if ch, ok := q.lanes[id]; ok {
		return ch
	}
	ch := make(chan Command, q.laneSize)
	q.lanes[id] = ch
	q.wg.Add(1)
	go q.drain(id, ch)
	return ch
}

// drain delivers one lane's commands in order until the lane is closed.
func (q *Queue) drain(id int, ch <-chan Command) {
	defer q.wg.Done()
	for cmd := range ch {
		if err := q.transport.Send(q.ctx, cmd); err != nil {
			q.failed.Add(1)
			q.log.Error().Err(err).Int("lane", id).Stringer("cmd", cmd).Msg("send failed")
			if q.onError != nil {
				q.onError(cmd, err)
			}
			continue
		}
		q.sent.Add(1)
	}
}

// Close stops accepting commands and lets every lane deliver what it holds.
// Sends still running after the drain timeout are cancelled.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, ch := range q.lanes {
		close(ch)
	}
	q.mu.Unlock()
	defer q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(q.drainWait)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		q.log.Warn().Dur("timeout", q.drainWait).Msg("lanes did not drain, cancelling sends")
		q.cancel()
		<-done
	}
}

// QueueStats is a snapshot of delivery counters.
type QueueStats struct {
	Sent    uint64
	Failed  uint64
	Dropped uint64
}

// Stats returns the delivery counters.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Sent:    q.sent.Load(),
		Failed:  q.failed.Load(),
		Dropped: q.dropped.Load(),
	}
}
