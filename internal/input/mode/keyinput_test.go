package mode

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

type failingClipboard struct{}

func (failingClipboard) ReadText() (string, error) { return "", errors.New("no clipboard") }

func newKeyInput(t *testing.T, clip host.Clipboard) (*KeyInputMode, *Context, *device.Recorder) {
	t.Helper()
	rec := device.NewRecorder()
	ctx := &Context{Emitter: rec, Clipboard: clip}
	m := NewKeyInputMode()
	require.NoError(t, m.Enter(ctx))
	return m, ctx, rec
}

func sentKeys(rec *device.Recorder) []device.SendKey {
	var out []device.SendKey
	for _, cmd := range rec.Commands() {
		if k, ok := cmd.(device.SendKey); ok {
			out = append(out, k)
		}
	}
	return out
}

func TestKeyInputRepeatCounter(t *testing.T) {
	m, ctx, rec := newKeyInput(t, nil)

	down := key.Down("KeyA", key.ModShift)
	assert.True(t, m.HandleKey(down, ctx).Consumed)
	repeat := down
	repeat.Repeat = true
	m.HandleKey(repeat, ctx)
	m.HandleKey(repeat, ctx)
	m.HandleKey(key.Up("KeyA", key.ModShift), ctx)
	m.HandleKey(key.Down("KeyA", key.ModNone), ctx)

	keys := sentKeys(rec)
	require.Len(t, keys, 5)
	for i, want := range []int{0, 1, 2} {
		assert.Equal(t, device.KeyDown, keys[i].Action)
		assert.Equal(t, want, keys[i].Repeat)
		assert.Equal(t, device.KeycodeA, keys[i].Keycode)
		assert.Equal(t, device.MetaShiftOn, keys[i].Metastate)
	}
	assert.Equal(t, device.KeyUp, keys[3].Action)
	assert.Equal(t, 0, keys[4].Repeat, "counter resets after release")
	assert.Equal(t, device.MetaNone, keys[4].Metastate)
}

func TestKeyInputUnknownKeyIsSwallowed(t *testing.T) {
	m, ctx, rec := newKeyInput(t, nil)

	res := m.HandleKey(key.Down("NoSuchKey", key.ModNone), ctx)

	assert.True(t, res.Consumed)
	assert.Zero(t, rec.Len())
}

func TestKeyInputCtrlVPastes(t *testing.T) {
	m, ctx, rec := newKeyInput(t, host.StaticClipboard("hello"))

	m.HandleKey(key.Down("ControlLeft", key.ModCtrl), ctx)
	m.HandleKey(key.Down("KeyV", key.ModCtrl), ctx)
	repeat := key.Down("KeyV", key.ModCtrl)
	repeat.Repeat = true
	m.HandleKey(repeat, ctx)
	m.HandleKey(key.Up("KeyV", key.ModCtrl), ctx)
	m.HandleKey(key.Up("ControlLeft", key.ModNone), ctx)
	m.HandleKey(key.Down("KeyV", key.ModCtrl), ctx)

	var clips []device.SetClipboard
	for _, cmd := range rec.Commands() {
		if c, ok := cmd.(device.SetClipboard); ok {
			clips = append(clips, c)
		}
	}
	require.Len(t, clips, 2)
	assert.Equal(t, "hello", clips[0].Text)
	assert.True(t, clips[0].Paste)
	assert.Equal(t, uint64(1), clips[0].Sequence)
	assert.Equal(t, uint64(2), clips[1].Sequence)

	// only the ctrl key itself reaches the device
	keys := sentKeys(rec)
	require.Len(t, keys, 2)
	assert.Equal(t, device.KeyDown, keys[0].Action)
	assert.Equal(t, device.KeyUp, keys[1].Action)
}

func TestKeyInputPlainVIsForwarded(t *testing.T) {
	m, ctx, rec := newKeyInput(t, host.StaticClipboard("x"))

	m.HandleKey(key.Down("KeyV", key.ModNone), ctx)
	m.HandleKey(key.Up("KeyV", key.ModNone), ctx)

	assert.Len(t, sentKeys(rec), 2)
}

func TestKeyInputPasteReadError(t *testing.T) {
	m, ctx, rec := newKeyInput(t, failingClipboard{})

	res := m.HandleKey(key.Down("KeyV", key.ModCtrl), ctx)

	assert.True(t, res.Consumed)
	assert.Zero(t, rec.Len())
}

func TestKeyInputExitReleasesHeldKeys(t *testing.T) {
	m, ctx, rec := newKeyInput(t, nil)

	m.HandleKey(key.Down("KeyB", key.ModNone), ctx)
	m.HandleKey(key.Down("KeyA", key.ModNone), ctx)
	require.Equal(t, 2, m.Held())
	rec.Reset()

	require.NoError(t, m.Exit(ctx))

	keys := sentKeys(rec)
	require.Len(t, keys, 2)
	assert.Equal(t, device.KeycodeA, keys[0].Keycode)
	assert.Equal(t, device.KeycodeA+1, keys[1].Keycode)
	assert.Equal(t, device.KeyUp, keys[1].Action)
	assert.Zero(t, m.Held())
}

func TestKeyInputRightHoldExits(t *testing.T) {
	m, ctx, _ := newKeyInput(t, nil)
	t0 := time.Unix(100, 0)

	press := mouse.Event{Action: mouse.ActionPress, Button: mouse.ButtonRight, Timestamp: t0}
	release := mouse.Event{Action: mouse.ActionRelease, Button: mouse.ButtonRight, Timestamp: t0.Add(300 * time.Millisecond)}

	assert.Equal(t, Result{Consumed: true}, m.HandleMouse(press, ctx))
	assert.Equal(t, Result{Consumed: true}, m.HandleMouse(release, ctx), "short click stays")

	m.HandleMouse(press, ctx)
	assert.Equal(t, Result{}, m.Tick(t0.Add(500*time.Millisecond), ctx))
	assert.Equal(t, Result{Switch: ModeMapping}, m.Tick(t0.Add(ExitHold), ctx))
	assert.Equal(t, Result{}, m.Tick(t0.Add(2*ExitHold), ctx), "fires once")

	m.HandleMouse(press, ctx)
	release.Timestamp = t0.Add(ExitHold + time.Millisecond)
	assert.Equal(t, Result{Consumed: true, Switch: ModeMapping}, m.HandleMouse(release, ctx))
}

func TestKeyInputSwallowsOtherMouseInput(t *testing.T) {
	m, ctx, rec := newKeyInput(t, nil)

	res := m.HandleMouse(mouse.NewEvent(mouse.ActionPress, mouse.ButtonLeft, 10, 10), ctx)

	assert.True(t, res.Consumed)
	assert.Empty(t, res.Switch)
	assert.Zero(t, rec.Len())
}

func TestMappingModePassesEverything(t *testing.T) {
	m := NewMappingMode()
	ctx := &Context{}

	assert.Equal(t, Result{}, m.HandleKey(key.Down("KeyA", key.ModNone), ctx))
	assert.Equal(t, Result{}, m.HandleMouse(mouse.Move(1, 1), ctx))
	assert.Equal(t, Result{}, m.Tick(time.Now(), ctx))
}

func TestKeyInputSwallowsUnpairedRelease(t *testing.T) {
	m, ctx, rec := newKeyInput(t, nil)

	res := m.HandleKey(key.Up("Enter", key.ModNone), ctx)

	assert.True(t, res.Consumed)
	assert.Zero(t, rec.Len())
}
