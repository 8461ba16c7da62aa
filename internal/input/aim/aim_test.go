package aim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/state"
)

type output struct {
	*device.Recorder
	cursor  coord.Point
	visible bool
	moves   int
}

func (o *output) SetCursorPosition(p coord.Point) {
	o.cursor = p
	o.moves++
}

func (o *output) SetCursorVisible(v bool) { o.visible = v }

// The mask is half the device size, so one client pixel is two device pixels.
func setup(cfg Config) (*Tracker, *output, *state.Runtime) {
	rt := state.New(coord.Size{W: 1280, H: 720}, coord.Rect{Left: 100, Top: 50, W: 640, H: 360})
	out := &output{Recorder: device.NewRecorder(), visible: true}
	if cfg.Sight.Anchor == (coord.Point{}) {
		cfg.Sight = Stream{PointerID: 1, Anchor: coord.Point{X: 640, Y: 360}}
	}
	return New(cfg, out), out, rt
}

func movePointer(rt *state.Runtime, dx, dy int) {
	rt.Pointer = rt.Pointer.Add(coord.Point{X: dx, Y: dy})
}

func TestActivateAndDeactivate(t *testing.T) {
	tr, out, rt := setup(Config{})
	rt.Pointer = coord.Point{X: 300, Y: 300}

	tr.Activate(rt)
	assert.Equal(t, Aiming, tr.State())
	assert.False(t, out.visible)
	assert.Equal(t, coord.Point{X: 420, Y: 230}, rt.Pointer)
	assert.Equal(t, rt.Pointer, out.cursor)

	downs := out.Touches(device.TouchDown)
	require.Len(t, downs, 1)
	assert.Equal(t, coord.Point{X: 640, Y: 360}, downs[0].Pos)

	movePointer(rt, 10, -5)
	tr.Tick(rt)
	moves := out.Touches(device.TouchMove)
	require.Len(t, moves, 1)
	assert.Equal(t, coord.Point{X: 660, Y: 350}, moves[0].Pos)

	tr.Deactivate(rt)
	assert.False(t, tr.Active())
	ups := out.Touches(device.TouchUp)
	require.Len(t, ups, 1)
	assert.Equal(t, coord.Point{X: 660, Y: 350}, ups[0].Pos)
	assert.True(t, out.visible)
	assert.Equal(t, Inactive, tr.State())
}

func TestTickWithoutMotionEmitsNothing(t *testing.T) {
	tr, out, rt := setup(Config{})
	tr.Activate(rt)
	tr.Tick(rt)
	tr.Tick(rt)
	assert.Equal(t, 1, out.Len())
}

func TestAccumulationExactAcrossRecentring(t *testing.T) {
	sight := Stream{PointerID: 1, Anchor: coord.Point{X: 640, Y: 360}, ScaleX: 0.3, ScaleY: 0.3}

	// Three recentrings of 161 client pixels each.
	stepped, _, rt := setup(Config{Sight: sight})
	stepped.Activate(rt)
	for i := 0; i < 3; i++ {
		movePointer(rt, 161, 0)
		stepped.Tick(rt)
		assert.Equal(t, rt.Mask.Center(), rt.Pointer, "pointer recentred")
	}

	// One continuous motion with a box large enough to never recentre.
	continuous, _, rt2 := setup(Config{Sight: sight, Box: coord.Size{W: 1000, H: 1000}})
	continuous.Activate(rt2)
	movePointer(rt2, 483, 0)
	continuous.Tick(rt2)

	want := coord.Point{X: 640 + 290, Y: 360} // round(0.3 * 2 * 483)
	assert.Equal(t, want, stepped.Position(false, rt))
	assert.Equal(t, want, continuous.Position(false, rt2))
	assert.Equal(t, want, stepped.sight.last)
	assert.Equal(t, want, continuous.sight.last)
}

func TestEdgeMarginRepress(t *testing.T) {
	sight := Stream{PointerID: 1, Anchor: coord.Point{X: 1200, Y: 360}}
	tr, out, rt := setup(Config{Sight: sight})
	tr.Activate(rt)

	movePointer(rt, 20, 0)
	tr.Tick(rt)
	require.Len(t, out.Touches(device.TouchMove), 1)
	assert.Equal(t, coord.Point{X: 1240, Y: 360}, out.Touches(device.TouchMove)[0].Pos)

	movePointer(rt, 20, 0)
	tr.Tick(rt)
	ups := out.Touches(device.TouchUp)
	require.Len(t, ups, 1)
	assert.Equal(t, coord.Point{X: 1280 - DefaultMargin, Y: 360}, ups[0].Pos)
	downs := out.Touches(device.TouchDown)
	require.Len(t, downs, 2)
	assert.Equal(t, sight.Anchor, downs[1].Pos)

	// Holding still after the re-press stays at the anchor.
	tr.Tick(rt)
	assert.Len(t, out.Touches(device.TouchMove), 1)

	movePointer(rt, -10, 0)
	tr.Tick(rt)
	moves := out.Touches(device.TouchMove)
	require.Len(t, moves, 2)
	assert.Equal(t, coord.Point{X: 1180, Y: 360}, moves[1].Pos)
}

func TestFireWithoutDrag(t *testing.T) {
	tr, out, rt := setup(Config{})
	tr.SetFire(Stream{PointerID: 2, Anchor: coord.Point{X: 1000, Y: 500}}, false)
	tr.Activate(rt)

	movePointer(rt, 10, 0)
	tr.Tick(rt)
	require.True(t, tr.FireDown(rt))
	assert.Equal(t, FireNoDrag, tr.State())

	movePointer(rt, 10, 0)
	tr.Tick(rt)

	var sightMoves, fireMoves []coord.Point
	for _, m := range out.Touches(device.TouchMove) {
		if m.PointerID == 1 {
			sightMoves = append(sightMoves, m.Pos)
		} else {
			fireMoves = append(fireMoves, m.Pos)
		}
	}
	assert.Equal(t, []coord.Point{{X: 660, Y: 360}, {X: 680, Y: 360}}, sightMoves)
	assert.Equal(t, []coord.Point{{X: 1020, Y: 500}}, fireMoves)

	require.True(t, tr.FireUp(rt))
	assert.Equal(t, Aiming, tr.State())
	ups := out.Touches(device.TouchUp)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].PointerID)
	assert.False(t, tr.FireUp(rt))
}

func TestFireWithDrag(t *testing.T) {
	tr, out, rt := setup(Config{})
	tr.SetFire(Stream{PointerID: 2, Anchor: coord.Point{X: 1000, Y: 500}}, true)
	tr.Activate(rt)

	require.True(t, tr.FireDown(rt))
	assert.Equal(t, FireDrag, tr.State())

	movePointer(rt, 5, 5)
	tr.Tick(rt)
	for _, m := range out.Touches(device.TouchMove) {
		assert.Equal(t, 2, m.PointerID, "only the fire stream moves")
	}

	require.True(t, tr.FireUp(rt))
	cmds := out.Touches()
	require.GreaterOrEqual(t, len(cmds), 2)
	last := cmds[len(cmds)-1]
	assert.Equal(t, device.TouchDown, last.Action)
	assert.Equal(t, 1, last.PointerID)
	assert.Equal(t, coord.Point{X: 640, Y: 360}, last.Pos)

	// The re-pressed sight starts at its anchor for the current delta.
	assert.Equal(t, coord.Point{X: 640, Y: 360}, tr.Position(false, rt))
}

func TestFireIgnoredWhenInactive(t *testing.T) {
	tr, out, rt := setup(Config{})
	tr.SetFire(Stream{PointerID: 2}, false)
	assert.False(t, tr.FireDown(rt))
	assert.Zero(t, out.Len())
}
