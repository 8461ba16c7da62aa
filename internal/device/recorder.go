package device

import (
	"context"
	"sync"
	"time"
)

// Recorder captures commands in memory. It implements both Emitter and
// Transport and is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
	err      error
	notify   chan struct{}
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// Emit implements Emitter.
func (r *Recorder) Emit(cmd Command) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Send implements Transport. It records the command and returns the error set
// with FailWith.
func (r *Recorder) Send(_ context.Context, cmd Command) error {
	r.Emit(cmd)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close implements Transport.
func (r *Recorder) Close() error { return nil }

// FailWith makes subsequent Sends return err after recording.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Commands returns a copy of everything recorded so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

// Touches returns the recorded Touch commands, optionally filtered to one
// action.
func (r *Recorder) Touches(actions ...TouchAction) []Touch {
	var out []Touch
	for _, cmd := range r.Commands() {
		t, ok := cmd.(Touch)
		if !ok {
			continue
		}
		if len(actions) == 0 {
			out = append(out, t)
			continue
		}
		for _, a := range actions {
			if t.Action == a {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Swipes returns the recorded Swipe commands.
func (r *Recorder) Swipes() []Swipe {
	var out []Swipe
	for _, cmd := range r.Commands() {
		if s, ok := cmd.(Swipe); ok {
			out = append(out, s)
		}
	}
	return out
}

// Reset forgets every recorded command.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.commands = nil
	r.mu.Unlock()
}

// WaitLen blocks until at least n commands are recorded or the timeout
// expires. It reports whether n was reached.
func (r *Recorder) WaitLen(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if r.Len() >= n {
			return true
		}
		select {
		case <-r.notify:
		case <-deadline.C:
			return r.Len() >= n
		}
	}
}
