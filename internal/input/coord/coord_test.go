package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	testMask   = Rect{Left: 70, Top: 30, W: 1280, H: 720}
	testScreen = Size{W: 2400, H: 1080}
)

func TestClientToDeviceOneToOne(t *testing.T) {
	got := ClientToDevice(Point{X: 720, Y: 680}, testMask, Size{W: 1280, H: 720})
	assert.Equal(t, Point{X: 650, Y: 650}, got)
}

func TestClientToDeviceFloors(t *testing.T) {
	// 1 mask px = 1.875 device px horizontally, 1.5 vertically.
	got := ClientToDevice(Point{X: 71, Y: 31}, testMask, testScreen)
	assert.Equal(t, Point{X: 1, Y: 1}, got)
}

func TestClientToDeviceClamps(t *testing.T) {
	tests := []struct {
		name   string
		client Point
		want   Point
	}{
		{"left of mask", Point{X: 0, Y: 100}, Point{X: 0, Y: 105}},
		{"above mask", Point{X: 100, Y: -50}, Point{X: 56, Y: 0}},
		{"beyond right", Point{X: 5000, Y: 30}, Point{X: 2400, Y: 0}},
		{"beyond bottom", Point{X: 70, Y: 5000}, Point{X: 0, Y: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientToDevice(tt.client, testMask, testScreen))
		})
	}
}

func TestClientDeviceRoundTrip(t *testing.T) {
	for x := testMask.Left; x < testMask.Left+testMask.W; x += 37 {
		for y := testMask.Top; y < testMask.Top+testMask.H; y += 23 {
			client := Point{X: x, Y: y}
			back := DeviceToClient(ClientToDevice(client, testMask, testScreen), testMask, testScreen)
			assert.InDelta(t, client.X, back.X, 1, "x for %v", client)
			assert.InDelta(t, client.Y, back.Y, 1, "y for %v", client)
		}
	}
}

func TestScaleOffset(t *testing.T) {
	assert.Equal(t, 50, ScaleOffset(100, 0.5, 200))
	assert.Equal(t, 200, ScaleOffset(1000, 0.5, 200))
	assert.Equal(t, -200, ScaleOffset(-1000, 0.5, 200))
	assert.Equal(t, -3, ScaleOffset(-5, 0.5, -10))
}

func TestCanvasToDevice(t *testing.T) {
	rel := Size{W: 1280, H: 720}
	assert.Equal(t, Point{X: 650, Y: 650}, CanvasToDevice(Point{X: 650, Y: 650}, rel, Size{W: 1280, H: 720}))
	assert.Equal(t, Point{X: 1219, Y: 975}, CanvasToDevice(Point{X: 650, Y: 650}, rel, testScreen))
	assert.Equal(t, 150, ScaleLength(100, rel, testScreen))
}

func TestCenterOffset(t *testing.T) {
	screen := Size{W: 1280, H: 720}
	// Skill center is (640, 396).
	assert.Equal(t, Point{X: 50, Y: -48}, CenterOffset(Point{X: 740, Y: 300}, screen, 200))
	assert.Equal(t, Point{X: -200, Y: 162}, CenterOffset(Point{X: 0, Y: 720}, screen, 200))
}

func TestClamp(t *testing.T) {
	screen := Size{W: 100, H: 50}
	assert.Equal(t, Point{X: 0, Y: 49}, Clamp(Point{X: -3, Y: 50}, screen))
	assert.Equal(t, Point{X: 99, Y: 10}, Clamp(Point{X: 100, Y: 10}, screen))
}

func TestMargin(t *testing.T) {
	screen := Size{W: 100, H: 100}
	assert.True(t, InMargin(Point{X: 25, Y: 75}, screen, 25))
	assert.False(t, InMargin(Point{X: 24, Y: 50}, screen, 25))
	assert.Equal(t, Point{X: 25, Y: 75}, ClampMargin(Point{X: 0, Y: 99}, screen, 25))
}
