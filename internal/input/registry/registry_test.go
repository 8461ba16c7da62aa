package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/touchmask/internal/input/key"
)

type trace struct {
	calls []string
}

func (tr *trace) h(name string) Handler {
	return func() { tr.calls = append(tr.calls, name) }
}

func TestTriggerUnbound(t *testing.T) {
	r := New()
	assert.False(t, r.TriggerDown("KeyA"))
	assert.False(t, r.TriggerUp("KeyA"))
}

func TestNonCancelableOrder(t *testing.T) {
	r := New()
	tr := &trace{}
	r.Register("KeyA", Binding{Down: tr.h("down"), Loop: tr.h("loop"), Up: tr.h("up")})

	require.True(t, r.TriggerDown("KeyA"))
	assert.True(t, r.LoopActive("KeyA"))
	r.RunLoops()
	require.True(t, r.TriggerUp("KeyA"))
	assert.False(t, r.LoopActive("KeyA"))
	r.RunLoops()

	assert.Equal(t, []string{"down", "loop", "up"}, tr.calls)
}

func TestCancelableUpWhileIdleIsNoop(t *testing.T) {
	r := New()
	tr := &trace{}
	r.Register("KeyQ", Binding{Down: tr.h("down"), Up: tr.h("up"), Cancelable: true})

	r.TriggerUp("KeyQ")
	assert.Empty(t, tr.calls)

	r.TriggerDown("KeyQ")
	assert.Equal(t, Armed, r.Group("KeyQ"))
	r.TriggerUp("KeyQ")
	assert.Equal(t, Idle, r.Group("KeyQ"))
	r.TriggerUp("KeyQ")

	assert.Equal(t, []string{"down", "up"}, tr.calls)
}

func TestCancelableLoopActiveBeforeDown(t *testing.T) {
	r := New()
	var activeDuringDown bool
	r.Register("KeyQ", Binding{
		Down:       func() { activeDuringDown = r.LoopActive("KeyQ") },
		Loop:       func() {},
		Cancelable: true,
	})
	r.TriggerDown("KeyQ")
	assert.True(t, activeDuringDown)
}

func TestCancelAll(t *testing.T) {
	r := New()
	tr := &trace{}
	r.Register("KeyQ", Binding{Down: tr.h("q down"), Loop: tr.h("q loop"), Up: tr.h("q up"), Cancelable: true})
	r.Register("KeyE", Binding{Down: tr.h("e down"), Up: tr.h("e up"), Cancelable: true})
	r.Register("KeyW", Binding{Down: tr.h("w down"), Loop: tr.h("w loop"), Up: tr.h("w up")})
	r.Register("KeyR", Binding{Down: tr.h("r down"), Up: tr.h("r up"), Cancelable: true})

	r.TriggerDown("KeyQ")
	r.TriggerDown("KeyE")
	r.TriggerDown("KeyW")

	ids := r.CancelAll()
	assert.Equal(t, []key.ID{"KeyE", "KeyQ"}, ids)
	assert.Equal(t, 1, r.ActiveLoops(), "only the non-cancelable loop survives")

	tr.calls = nil
	r.RunLoops()
	r.TriggerUp("KeyQ")
	r.TriggerUp("KeyE")
	assert.Equal(t, []string{"w loop"}, tr.calls)
}

func TestCancelFromInsideDown(t *testing.T) {
	r := New()
	tr := &trace{}
	r.Register("KeyQ", Binding{Down: tr.h("q down"), Loop: tr.h("q loop"), Up: tr.h("q up"), Cancelable: true})
	r.Register("Space", Binding{Down: func() { r.CancelAll() }})

	r.TriggerDown("KeyQ")
	r.TriggerDown("Space")
	r.RunLoops()
	r.TriggerUp("KeyQ")
	assert.Equal(t, []string{"q down"}, tr.calls)
}

func TestRunLoopsSnapshot(t *testing.T) {
	r := New()
	var calls []string
	r.ActivateLoop("a", func() {
		calls = append(calls, "a")
		r.DeactivateLoop("b")
		r.ActivateLoop("c", func() { calls = append(calls, "c") })
	})
	r.ActivateLoop("b", func() { calls = append(calls, "b") })

	assert.Equal(t, 2, r.RunLoops())
	assert.Equal(t, []string{"a", "b"}, calls)

	calls = nil
	r.RunLoops()
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestActivateLoopReplacesInPlace(t *testing.T) {
	r := New()
	var calls []string
	r.ActivateLoop("a", func() { calls = append(calls, "a1") })
	r.ActivateLoop("b", func() { calls = append(calls, "b") })
	r.ActivateLoop("a", func() { calls = append(calls, "a2") })

	r.RunLoops()
	assert.Equal(t, []string{"a2", "b"}, calls)
}

func TestSwap(t *testing.T) {
	r := New()
	tr := &trace{}
	r.Register(key.MouseLeft, Binding{Down: tr.h("click")})

	old, ok := r.Swap(key.MouseLeft, Binding{Down: tr.h("fire")})
	require.True(t, ok)
	r.TriggerDown(key.MouseLeft)

	r.Swap(key.MouseLeft, old)
	r.TriggerDown(key.MouseLeft)

	assert.Equal(t, []string{"fire", "click"}, tr.calls)

	_, ok = r.Swap("KeyZ", Binding{})
	assert.False(t, ok)
}

func TestPressedAndClear(t *testing.T) {
	r := New()
	r.Register("KeyA", Binding{Loop: func() {}})
	r.TriggerDown("KeyA")
	r.SetPressed("KeyB", true)
	r.SetPressed("KeyA", true)

	assert.True(t, r.IsPressed("KeyA"))
	assert.Equal(t, []key.ID{"KeyA", "KeyB"}, r.Pressed())
	r.SetPressed("KeyA", false)
	assert.False(t, r.IsPressed("KeyA"))

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Zero(t, r.ActiveLoops())
	assert.Empty(t, r.Pressed())
}
