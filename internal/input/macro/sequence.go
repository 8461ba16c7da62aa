package macro

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
)

// Sequence runs the lists of one binding on the runner, one at a time and in
// the order they were started. An up list queued during a press therefore
// starts only after the down list has returned.
type Sequence struct {
	in *Interpreter
	id key.ID

	mu      sync.Mutex
	pending []queuedRun
	running bool
}

type queuedRun struct {
	runID string
	list  string
	steps []keymap.MacroStep
	done  func()
}

// Sequence creates the run queue of the binding for id.
func (in *Interpreter) Sequence(id key.ID) *Sequence {
	return &Sequence{in: in, id: id}
}

// Start queues a list and returns at once. The returned run id tags the
// run's log lines; it is empty if nothing was queued.
func (s *Sequence) Start(list string, steps []keymap.MacroStep) string {
	if len(steps) == 0 {
		return ""
	}
	r := queuedRun{runID: uuid.NewString(), list: list, steps: steps}
	if !s.enqueue(r) {
		return ""
	}
	return r.runID
}

// StartLoop is Start for a loop list: it does nothing while the previous
// run guarded by inFlight is still queued or running.
func (s *Sequence) StartLoop(steps []keymap.MacroStep, inFlight *atomic.Bool) {
	if len(steps) == 0 || !inFlight.CompareAndSwap(false, true) {
		return
	}
	r := queuedRun{
		runID: uuid.NewString(),
		list:  "loop",
		steps: steps,
		done:  func() { inFlight.Store(false) },
	}
	if !s.enqueue(r) {
		inFlight.Store(false)
	}
}

func (s *Sequence) enqueue(r queuedRun) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, r)
	if s.running {
		return true
	}
	if !s.in.runner.Go("macro "+string(s.id), s.drain) {
		s.pending = s.pending[:len(s.pending)-1]
		return false
	}
	s.running = true
	return true
}

// drain runs queued lists until none is left. A cancelled run drops the rest
// of the queue.
func (s *Sequence) drain(ctx context.Context) error {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.running = false
			s.mu.Unlock()
			return nil
		}
		r := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		err := s.in.run(ctx, r.runID, s.id, r.list, r.steps)
		if r.done != nil {
			r.done()
		}
		if err != nil {
			s.mu.Lock()
			dropped := s.pending
			s.pending = nil
			s.running = false
			s.mu.Unlock()
			for _, p := range dropped {
				if p.done != nil {
					p.done()
				}
			}
			return err
		}
	}
}
