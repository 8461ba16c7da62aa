package macro

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/keymap"
)

type fakeHost struct {
	mu       sync.Mutex
	screen   coord.Size
	pointer  coord.Point
	rec      *device.Recorder
	keyInput bool
	closed   bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		screen:  coord.Size{W: 2560, H: 1440},
		pointer: coord.Point{X: 1000, Y: 500},
		rec:     device.NewRecorder(),
	}
}

func (h *fakeHost) Do(fn func(env Env)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	fn(h)
	return true
}

func (h *fakeHost) Screen() coord.Size         { return h.screen }
func (h *fakeHost) PointerDevice() coord.Point { return h.pointer }
func (h *fakeHost) Emit(cmd device.Command)    { h.rec.Emit(cmd) }
func (h *fakeHost) SetKeyInputMode(on bool)    { h.keyInput = on }

func instant(context.Context, time.Duration) error { return nil }

func steps(pairs ...string) []keymap.MacroStep {
	var out []keymap.MacroStep
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, keymap.MacroStep{Type: pairs[i], Args: pairs[i+1]})
	}
	return out
}

func newInterp(h *fakeHost, opts ...Option) *Interpreter {
	return NewInterpreter(h, NewRunner(WithSleeper(instant)), coord.Size{W: 1280, H: 720}, opts...)
}

func TestRunTouchScalesCanvas(t *testing.T) {
	h := newFakeHost()
	in := newInterp(h)

	err := in.Run(context.Background(), "down", steps(
		"touch", `["default", 2, 100, 200, 30]`,
		"touch", `["move", 2, "mouse", ["mouse", -10]]`,
	))
	require.NoError(t, err)

	touches := h.rec.Touches()
	require.Len(t, touches, 2)
	assert.Equal(t, device.Touch{
		Action:    device.TouchDefault,
		PointerID: 2,
		Screen:    h.screen,
		Pos:       coord.Point{X: 200, Y: 400},
		Duration:  30 * time.Millisecond,
	}, touches[0])
	assert.Equal(t, coord.Point{X: 1000, Y: 480}, touches[1].Pos)
}

func TestRunSwipe(t *testing.T) {
	h := newFakeHost()
	in := newInterp(h)

	err := in.Run(context.Background(), "down", steps(
		"swipe", `["noUp", 4, [[10, 10], [["mouse", 5], "mouse"]], 250]`,
	))
	require.NoError(t, err)

	swipes := h.rec.Swipes()
	require.Len(t, swipes, 1)
	assert.Equal(t, device.SwipeNoUp, swipes[0].Action)
	assert.Equal(t, []coord.Point{{X: 20, Y: 20}, {X: 1010, Y: 500}}, swipes[0].Path)
	assert.Equal(t, 250*time.Millisecond, swipes[0].Interval)
}

func TestRunKeyInputMode(t *testing.T) {
	h := newFakeHost()
	in := newInterp(h)

	require.NoError(t, in.Run(context.Background(), "down", steps("key-input-mode", `["on"]`)))
	assert.True(t, h.keyInput)
	require.NoError(t, in.Run(context.Background(), "down", steps("key-input-mode", `[false]`)))
	assert.False(t, h.keyInput)
}

func TestInvalidStepAbortsList(t *testing.T) {
	tests := []struct {
		name string
		step keymap.MacroStep
		is   error
	}{
		{"unknown", keymap.MacroStep{Type: "jump", Args: `[]`}, ErrUnknownStep},
		{"bad action", keymap.MacroStep{Type: "touch", Args: `["hover", 1, 2, 3]`}, ErrInvalidArgs},
		{"short touch", keymap.MacroStep{Type: "touch", Args: `["down", 1, 2]`}, ErrInvalidArgs},
		{"bad position", keymap.MacroStep{Type: "touch", Args: `["down", 1, ["cursor", 1], 3]`}, ErrInvalidArgs},
		{"bad sleep", keymap.MacroStep{Type: "sleep", Args: `["long"]`}, ErrInvalidArgs},
		{"args not array", keymap.MacroStep{Type: "sleep", Args: `{"ms": 5}`}, ErrInvalidArgs},
		{"lua without runtime", keymap.MacroStep{Type: "lua", Args: `["x = 1"]`}, ErrUnknownStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFakeHost()
			in := newInterp(h)

			list := []keymap.MacroStep{
				{Type: "touch", Args: `["down", 1, 0, 0]`},
				tt.step,
				{Type: "touch", Args: `["up", 1, 0, 0]`},
			}
			err := in.Run(context.Background(), "up", list)

			var se *StepError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "up", se.List)
			assert.Equal(t, 1, se.Index)
			assert.ErrorIs(t, err, tt.is)
			assert.Len(t, h.rec.Touches(), 1, "steps after the bad one are skipped")
		})
	}
}

func TestStartReportsAbort(t *testing.T) {
	h := newFakeHost()
	var aborted atomic.Int32
	in := newInterp(h, WithAbortHandler(func(*StepError) { aborted.Add(1) }))

	id := in.Sequence("KeyM").Start("down", steps("bogus", `[]`))
	assert.NotEmpty(t, id)
	in.Runner().Wait()
	assert.Equal(t, int32(1), aborted.Load())

	assert.Empty(t, in.Sequence("KeyM").Start("down", nil))
}

func TestSleepDoesNotHoldHost(t *testing.T) {
	h := newFakeHost()
	release := make(chan struct{})
	sleeping := make(chan struct{})
	runner := NewRunner(WithSleeper(func(ctx context.Context, d time.Duration) error {
		close(sleeping)
		<-release
		return nil
	}))
	in := NewInterpreter(h, runner, coord.Size{W: 1280, H: 720})

	in.Sequence("KeyM").Start("down", steps(
		"sleep", `[1000]`,
		"touch", `["down", 1, 0, 0]`,
	))
	<-sleeping

	// The host lock is free while the macro sleeps.
	ok := h.Do(func(env Env) {
		env.Emit(device.Touch{Action: device.TouchDefault, PointerID: 9})
	})
	require.True(t, ok)

	close(release)
	runner.Wait()

	touches := h.rec.Touches()
	require.Len(t, touches, 2)
	assert.Equal(t, 9, touches[0].PointerID)
	assert.Equal(t, 1, touches[1].PointerID)
}

func TestStartLoopSkipsWhileInFlight(t *testing.T) {
	h := newFakeHost()
	release := make(chan struct{})
	runner := NewRunner(WithSleeper(func(ctx context.Context, d time.Duration) error {
		<-release
		return nil
	}))
	in := NewInterpreter(h, runner, coord.Size{W: 1280, H: 720})

	seq := in.Sequence("KeyL")
	var inFlight atomic.Bool
	loop := steps("touch", `["move", 1, 0, 0]`, "sleep", `[16]`)
	seq.StartLoop(loop, &inFlight)
	seq.StartLoop(loop, &inFlight)
	seq.StartLoop(loop, &inFlight)

	close(release)
	runner.Wait()
	assert.Len(t, h.rec.Touches(), 1)
	assert.False(t, inFlight.Load())
}

func TestSequenceKeepsStartOrder(t *testing.T) {
	h := newFakeHost()
	in := NewInterpreter(h, NewRunner(), coord.Size{W: 1280, H: 720})
	down := steps("touch", `["down", 5, 10, 10]`)
	up := steps("touch", `["up", 5, 10, 10]`)

	seq := in.Sequence("KeyM")
	for i := 0; i < 200; i++ {
		seq.Start("down", down)
		seq.Start("up", up)
	}
	in.Runner().Wait()

	touches := h.rec.Touches()
	require.Len(t, touches, 400)
	for i := 0; i < len(touches); i += 2 {
		require.Equal(t, device.TouchDown, touches[i].Action, "touch %d", i)
		require.Equal(t, device.TouchUp, touches[i+1].Action, "touch %d", i+1)
	}
}

func TestSequenceWaitsOutSleepingRun(t *testing.T) {
	h := newFakeHost()
	release := make(chan struct{})
	sleeping := make(chan struct{})
	runner := NewRunner(WithSleeper(func(ctx context.Context, d time.Duration) error {
		close(sleeping)
		<-release
		return nil
	}))
	in := NewInterpreter(h, runner, coord.Size{W: 1280, H: 720})

	seq := in.Sequence("KeyM")
	seq.Start("down", steps("touch", `["down", 5, 0, 0]`, "sleep", `[100]`, "touch", `["move", 5, 9, 9]`))
	<-sleeping
	seq.Start("up", steps("touch", `["up", 5, 9, 9]`))
	assert.Len(t, h.rec.Touches(), 1, "the up list waits for the down list")

	close(release)
	runner.Wait()
	var got []device.TouchAction
	for _, tc := range h.rec.Touches() {
		got = append(got, tc.Action)
	}
	assert.Equal(t, []device.TouchAction{device.TouchDown, device.TouchMove, device.TouchUp}, got)
}

func TestRunnerCloseCancelsSleep(t *testing.T) {
	h := newFakeHost()
	runner := NewRunner()
	in := NewInterpreter(h, runner, coord.Size{W: 1280, H: 720})

	in.Sequence("KeyM").Start("down", steps("sleep", `[60000]`, "touch", `["down", 1, 0, 0]`))

	done := make(chan struct{})
	go func() {
		runner.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the sleep")
	}
	assert.Zero(t, h.rec.Len())
	assert.False(t, runner.Go("late", func(context.Context) error { return nil }))
}

func TestClosedHostStopsRun(t *testing.T) {
	h := newFakeHost()
	h.closed = true
	in := newInterp(h)

	err := in.Run(context.Background(), "down", steps("touch", `["down", 1, 0, 0]`))
	assert.ErrorIs(t, err, ErrStopped)
}

type stubScripter struct {
	err error
}

func (s stubScripter) Run(_ context.Context, _ string, act Actions) error {
	if s.err != nil {
		return s.err
	}
	return act.Touch(device.TouchDown, 7, Canvas(640), Canvas(360), 0)
}

func TestLuaStep(t *testing.T) {
	h := newFakeHost()
	in := newInterp(h, WithScripter(stubScripter{}))
	require.NoError(t, in.Run(context.Background(), "down", steps("lua", `["mask.touch('down', 7, 640, 360)"]`)))
	require.Len(t, h.rec.Touches(), 1)
	assert.Equal(t, coord.Point{X: 1280, Y: 720}, h.rec.Touches()[0].Pos)

	in = newInterp(h, WithScripter(stubScripter{err: errors.New("boom")}))
	err := in.Run(context.Background(), "down", steps("lua", `["error('boom')"]`))
	assert.ErrorIs(t, err, ErrScript)
}

func TestComponentResolve(t *testing.T) {
	assert.Equal(t, 200, Canvas(100).Resolve(0, 2560, 1280))
	assert.Equal(t, 990, Mouse(-5).Resolve(1000, 2560, 1280))
	assert.Equal(t, 42, Canvas(42).Resolve(0, 2560, 0))
}
