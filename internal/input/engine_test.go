package input

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/mode"
	"github.com/dshills/touchmask/internal/input/mouse"
)

var screen = coord.Size{W: 1280, H: 720}

func instant(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func mapping(t *testing.T, entries ...string) *keymap.Config {
	t.Helper()
	doc := `{"title": "test", "relativeSize": {"w": 1280, "h": 720}, "list": [` + strings.Join(entries, ",") + `]}`
	cfg, err := keymap.Decode([]byte(doc))
	require.NoError(t, err)
	return cfg
}

// newEngine builds an engine whose mask, canvas and screen coincide.
func newEngine(t *testing.T, runner *macro.Runner, entries ...string) (*Engine, *device.Recorder) {
	t.Helper()
	if runner == nil {
		runner = macro.NewRunner(macro.WithSleeper(instant))
	}
	rec := device.NewRecorder()
	e := New(rec, Config{Screen: screen, Mask: coord.Rect{W: 1280, H: 720}},
		WithRunner(runner),
		WithClipboard(host.StaticClipboard("pasted")),
	)
	t.Cleanup(e.Close)
	if len(entries) > 0 {
		require.NoError(t, e.Apply(mapping(t, entries...)))
	}
	return e, rec
}

func repeatDown(code key.ID) key.Event {
	ev := key.Down(code, key.ModNone)
	ev.Repeat = true
	return ev
}

func mouseAt(action mouse.Action, button mouse.Button, x, y int, at time.Time) mouse.Event {
	ev := mouse.NewEvent(action, button, x, y)
	ev.Timestamp = at
	return ev
}

func TestEndToEndTap(t *testing.T) {
	e, rec := newEngine(t, nil, `{"type": "Tap", "key": "KeyQ", "pointerId": 3, "posX": 100, "posY": 200, "time": 50}`)

	e.HandleKeyEvent(key.Down("KeyQ", key.ModNone))
	e.HandleKeyEvent(repeatDown("KeyQ"))
	e.HandleKeyEvent(key.Down("KeyQ", key.ModNone))
	e.HandleKeyEvent(key.Up("KeyQ", key.ModNone))

	require.Equal(t, 1, rec.Len())
	assert.Equal(t, device.Touch{
		Action:    device.TouchDefault,
		PointerID: 3,
		Screen:    screen,
		Pos:       coord.Point{X: 100, Y: 200},
		Duration:  50 * time.Millisecond,
	}, rec.Commands()[0])

	snap := e.Metrics().Snapshot()
	assert.Equal(t, uint64(4), snap.KeyEvents)
	assert.Equal(t, uint64(2), snap.SuppressedRepeats)
	assert.Equal(t, uint64(1), snap.Commands["touch"])
}

func TestUnboundAndUnpairedKeys(t *testing.T) {
	e, rec := newEngine(t, nil)

	e.HandleKeyEvent(key.Up("KeyZ", key.ModNone))
	e.HandleKeyEvent(key.Down("KeyZ", key.ModNone))

	assert.Zero(t, rec.Len())
	assert.Equal(t, uint64(1), e.Metrics().Snapshot().Unbound)
}

func TestMacroSleepDoesNotBlockTap(t *testing.T) {
	release := make(chan struct{})
	sleeping := make(chan struct{}, 1)
	runner := macro.NewRunner(macro.WithSleeper(func(ctx context.Context, _ time.Duration) error {
		sleeping <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))
	e, rec := newEngine(t, runner,
		`{"type": "Macro", "key": "KeyM", "macro": {"down": [{"type": "sleep", "args": [1000]}, {"type": "touch", "args": ["down", 1, 10, 10]}]}}`,
		`{"type": "Tap", "key": "KeyQ", "pointerId": 3, "posX": 100, "posY": 200}`,
	)

	e.HandleKeyEvent(key.Down("KeyM", key.ModNone))
	<-sleeping

	e.HandleKeyEvent(key.Down("KeyQ", key.ModNone))
	require.Equal(t, 1, rec.Len(), "the tap is emitted while the macro sleeps")

	close(release)
	runner.Wait()

	touches := rec.Touches()
	require.Len(t, touches, 2)
	assert.Equal(t, 3, touches[0].PointerID)
	assert.Equal(t, 1, touches[1].PointerID)
	assert.Equal(t, device.TouchDown, touches[1].Action)
}

func TestWheelRateLimit(t *testing.T) {
	e, rec := newEngine(t, nil,
		`{"type": "Tap", "key": "WheelUp", "pointerId": 4, "posX": 10, "posY": 10}`,
		`{"type": "Tap", "key": "WheelDown", "pointerId": 5, "posX": 20, "posY": 20}`,
	)
	base := time.Unix(5000, 0)

	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonScrollUp, 0, 0, base))
	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonScrollUp, 0, 0, base.Add(20*time.Millisecond)))
	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonScrollDown, 0, 0, base.Add(20*time.Millisecond)))
	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonScrollUp, 0, 0, base.Add(60*time.Millisecond)))
	e.HandleMouseEvent(mouseAt(mouse.ActionRelease, mouse.ButtonScrollUp, 0, 0, base.Add(70*time.Millisecond)))

	touches := rec.Touches()
	require.Len(t, touches, 3)
	assert.Equal(t, []int{4, 5, 4}, []int{touches[0].PointerID, touches[1].PointerID, touches[2].PointerID})

	snap := e.Metrics().Snapshot()
	assert.Equal(t, uint64(1), snap.WheelDrops)
	assert.Equal(t, uint64(5), snap.WheelEvents)
}

func TestClickFollowsPointerOnTick(t *testing.T) {
	e, rec := newEngine(t, nil)
	now := time.Unix(100, 0)

	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonLeft, 100, 100, now))
	e.HandleMouseEvent(mouseAt(mouse.ActionMove, mouse.ButtonNone, 150, 120, now))
	require.True(t, e.Tick(now))
	require.True(t, e.Tick(now))
	e.HandleMouseEvent(mouseAt(mouse.ActionRelease, mouse.ButtonLeft, 150, 120, now))

	touches := rec.Touches()
	require.Len(t, touches, 3)
	assert.Equal(t, device.TouchDown, touches[0].Action)
	assert.Equal(t, coord.Point{X: 100, Y: 100}, touches[0].Pos)
	assert.Equal(t, device.TouchMove, touches[1].Action)
	assert.Equal(t, coord.Point{X: 150, Y: 120}, touches[1].Pos)
	assert.Equal(t, device.TouchUp, touches[2].Action)
	assert.Equal(t, uint64(2), e.Metrics().Snapshot().LoopRuns)
}

func TestLeaveReleasesMouseButtons(t *testing.T) {
	e, rec := newEngine(t, nil)
	now := time.Unix(100, 0)

	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonLeft, 300, 300, now))
	e.HandleMouseEvent(mouseAt(mouse.ActionLeave, mouse.ButtonNone, 300, 300, now))
	e.HandleMouseEvent(mouseAt(mouse.ActionRelease, mouse.ButtonLeft, 300, 300, now))

	require.Len(t, rec.Touches(device.TouchUp), 1)
	assert.Empty(t, e.registry.Pressed())
}

func TestKeyInputPassthrough(t *testing.T) {
	e, rec := newEngine(t, nil, `{"type": "KeyInput", "key": "KeyI"}`)
	now := time.Unix(100, 0)

	// a held click is lifted on the way in
	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonLeft, 50, 50, now))
	e.HandleKeyEvent(key.Down("KeyI", key.ModNone))
	require.Equal(t, mode.ModeKeyInput, e.Mode())
	require.Len(t, rec.Touches(device.TouchUp), 1)
	rec.Reset()

	e.HandleKeyEvent(key.Up("KeyI", key.ModNone))
	e.HandleKeyEvent(key.Down("KeyA", key.ModNone))
	e.HandleKeyEvent(repeatDown("KeyA"))
	e.HandleKeyEvent(key.Up("KeyA", key.ModNone))

	cmds := rec.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, device.SendKey{Action: device.KeyDown, Keycode: device.KeycodeA, Metastate: device.MetaNone, Repeat: 0}, cmds[0])
	assert.Equal(t, 1, cmds[1].(device.SendKey).Repeat)
	assert.Equal(t, device.KeyUp, cmds[2].(device.SendKey).Action)

	// loops do not run and mouse input is swallowed
	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonLeft, 50, 50, now))
	e.Tick(now)
	assert.Len(t, rec.Commands(), 3)

	// holding the right button for a second leaves the mode
	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonRight, 50, 50, now))
	e.Tick(now.Add(500 * time.Millisecond))
	assert.Equal(t, mode.ModeKeyInput, e.Mode())
	e.Tick(now.Add(mode.ExitHold + time.Millisecond))
	assert.Equal(t, mode.ModeMapping, e.Mode())
}

func TestCloseKeyInput(t *testing.T) {
	e, _ := newEngine(t, nil, `{"type": "KeyInput", "key": "KeyI"}`)

	e.HandleKeyEvent(key.Down("KeyI", key.ModNone))
	require.Equal(t, mode.ModeKeyInput, e.Mode())
	e.CloseKeyInput()
	assert.Equal(t, mode.ModeMapping, e.Mode())
	assert.Equal(t, uint64(2), e.Metrics().Snapshot().ModeSwitches)
}

func TestApplyFailureClearsRegistry(t *testing.T) {
	e, _ := newEngine(t, nil, `{"type": "Tap", "key": "KeyQ", "pointerId": 1, "posX": 1, "posY": 1}`)

	err := e.Apply(mapping(t,
		`{"type": "Sight", "key": "KeyS", "pointerId": 2, "posX": 640, "posY": 360}`,
		`{"type": "Sight", "key": "KeyT", "pointerId": 3, "posX": 640, "posY": 360}`,
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, keymap.ErrInvalidField))
	var entryErr *keymap.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, 1, entryErr.Index)
	assert.Equal(t, "Sight", entryErr.Type)
	assert.Nil(t, e.Mapping())
	assert.Zero(t, e.registry.Len())
	assert.Equal(t, uint64(1), e.Metrics().Snapshot().BindFailures)
}

func TestApplyReleasesHeldInputs(t *testing.T) {
	e, rec := newEngine(t, nil,
		`{"type": "DirectionlessSkill", "key": "KeyE", "pointerId": 6, "posX": 900, "posY": 500}`)

	e.HandleKeyEvent(key.Down("KeyE", key.ModNone))
	require.NoError(t, e.Apply(mapping(t)))

	ups := rec.Touches(device.TouchUp)
	require.Len(t, ups, 1)
	assert.Equal(t, 6, ups[0].PointerID)
	assert.Empty(t, e.registry.Pressed())

	// the release of the old key finds nothing to do
	e.HandleKeyEvent(key.Up("KeyE", key.ModNone))
	assert.Len(t, rec.Touches(device.TouchUp), 1)
}

func TestSetGeometryRebinds(t *testing.T) {
	e, rec := newEngine(t, nil, `{"type": "Tap", "key": "KeyQ", "pointerId": 1, "posX": 640, "posY": 360}`)

	require.NoError(t, e.SetGeometry(coord.Size{W: 2560, H: 1440}, coord.Rect{W: 1280, H: 720}))
	e.HandleKeyEvent(key.Down("KeyQ", key.ModNone))

	touches := rec.Touches()
	require.Len(t, touches, 1)
	assert.Equal(t, coord.Point{X: 1280, Y: 720}, touches[0].Pos)

	assert.ErrorIs(t, e.SetGeometry(coord.Size{}, coord.Rect{W: 1, H: 1}), ErrInvalidGeometry)
}

func TestClose(t *testing.T) {
	e, rec := newEngine(t, nil, `{"type": "Tap", "key": "KeyQ", "pointerId": 1, "posX": 1, "posY": 1}`)

	e.HandleMouseEvent(mouseAt(mouse.ActionPress, mouse.ButtonLeft, 10, 10, time.Now()))
	e.Close()
	require.Len(t, rec.Touches(device.TouchUp), 1)

	e.HandleKeyEvent(key.Down("KeyQ", key.ModNone))
	assert.Len(t, rec.Touches(), 2)
	assert.False(t, e.Tick(time.Now()))
	assert.False(t, e.Do(func() {}))
	assert.ErrorIs(t, e.Apply(nil), ErrClosed)
	e.Close()
}

func TestSchedulerStops(t *testing.T) {
	e, _ := newEngine(t, nil)
	s := NewScheduler(e)
	assert.Equal(t, 16*time.Millisecond, s.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	go func() { done <- s.Run(context.Background()) }()
	e.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not notice close")
	}
}

func TestMetricsCollector(t *testing.T) {
	e, _ := newEngine(t, nil, `{"type": "Tap", "key": "KeyQ", "pointerId": 1, "posX": 1, "posY": 1}`)
	e.HandleKeyEvent(key.Down("KeyQ", key.ModNone))

	assert.Equal(t, 4, testutil.CollectAndCount(e.Metrics(), "touchmask_input_events_total"))
	assert.Equal(t, 4, testutil.CollectAndCount(e.Metrics(), "touchmask_commands_total"))

	e.Metrics().RecordTransportError()
	health := e.Metrics().HealthCheck(time.Hour)
	assert.False(t, health.Healthy)
	assert.Equal(t, "transport errors detected", health.Message)

	e.Metrics().Reset()
	assert.True(t, e.Metrics().HealthCheck(time.Hour).Healthy)
}

func TestCalculateLatencyStats(t *testing.T) {
	avg, maxLat, p99 := calculateLatencyStats([]time.Duration{0, 3, 1, 2, 0})
	assert.Equal(t, time.Duration(2), avg)
	assert.Equal(t, time.Duration(3), maxLat)
	assert.Equal(t, time.Duration(3), p99)

	avg, maxLat, p99 = calculateLatencyStats(make([]time.Duration, 4))
	assert.Zero(t, avg+maxLat+p99)
}

func TestAxisEventsDriveDirectionPad(t *testing.T) {
	runner := macro.NewRunner(macro.WithSleeper(instant))
	now := time.Unix(100, 0)
	rec := device.NewRecorder()
	e := New(rec, Config{Screen: screen, Mask: coord.Rect{W: 1280, H: 720}},
		WithRunner(runner),
		WithClock(func() time.Time { return now }),
	)
	t.Cleanup(e.Close)
	require.NoError(t, e.Apply(mapping(t, `{"type": "DirectionPad", "pointerId": 4, "posX": 200, "posY": 500,
		"maxOffsetX": 100, "maxOffsetY": 100,
		"bind": {"type": "JoyStick", "x": "LeftStickX", "y": "LeftStickY"}}`)))

	e.HandleAxisEvent(key.AxisEvent{Value: 1})
	e.HandleAxisEvent(key.AxisEvent{Axis: key.LeftStickX, Value: 1})
	require.True(t, e.Tick(now))
	runner.Wait()

	now = now.Add(time.Second)
	e.HandleAxisEvent(key.AxisEvent{Axis: key.LeftStickX, Value: 0})
	require.True(t, e.Tick(now))

	touches := rec.Touches()
	require.Len(t, touches, 3)
	assert.Equal(t, device.TouchDown, touches[0].Action)
	assert.Equal(t, coord.Point{X: 200, Y: 500}, touches[0].Pos)
	assert.Equal(t, coord.Point{X: 300, Y: 500}, touches[1].Pos)
	assert.Equal(t, device.TouchUp, touches[2].Action)
	assert.Equal(t, 4, touches[2].PointerID)
	assert.Equal(t, uint64(2), e.Metrics().Snapshot().AxisEvents, "events without an axis are ignored")
}
