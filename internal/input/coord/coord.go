// Package coord converts positions between the three coordinate spaces of
// the engine.
//
// Client space is the raw pointer position reported by the host. Mask space
// is the on-screen rectangle showing the mirrored device. Device space is the
// device's own pixel grid, in which every command is emitted.
package coord

import "math"

// Point is an integer position.
type Point struct {
	X int
	Y int
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height.
type Size struct {
	W int
	H int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0
}

// Rect is the mask area on the host screen.
type Rect struct {
	Left int
	Top  int
	W    int
	H    int
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Center returns the client-space center of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.W/2, Y: r.Top + r.H/2}
}

// Contains reports whether a client point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.W && p.Y >= r.Top && p.Y < r.Top+r.H
}

// ClientToDevice maps a client position into device space: subtract the mask
// origin, clamp to the mask extent, scale by screen/mask and floor.
func ClientToDevice(client Point, mask Rect, screen Size) Point {
	if mask.W <= 0 || mask.H <= 0 {
		return Point{}
	}
	x := clampInt(client.X-mask.Left, 0, mask.W)
	y := clampInt(client.Y-mask.Top, 0, mask.H)
	return Point{
		X: int(math.Floor(float64(x) * float64(screen.W) / float64(mask.W))),
		Y: int(math.Floor(float64(y) * float64(screen.H) / float64(mask.H))),
	}
}

// DeviceToClient is the inverse of ClientToDevice for points inside the mask.
func DeviceToClient(device Point, mask Rect, screen Size) Point {
	if screen.W <= 0 || screen.H <= 0 {
		return Point{X: mask.Left, Y: mask.Top}
	}
	return Point{
		X: mask.Left + int(math.Round(float64(device.X)*float64(mask.W)/float64(screen.W))),
		Y: mask.Top + int(math.Round(float64(device.Y)*float64(mask.H)/float64(screen.H))),
	}
}

// ClientDeltaToDevice scales a client-space displacement into device space
// without flooring, so callers can accumulate before rounding.
func ClientDeltaToDevice(delta Point, mask Rect, screen Size) (float64, float64) {
	if mask.W <= 0 || mask.H <= 0 {
		return 0, 0
	}
	return float64(delta.X) * float64(screen.W) / float64(mask.W),
		float64(delta.Y) * float64(screen.H) / float64(mask.H)
}

// ScaleOffset multiplies a displacement, rounds it and clamps it to
// [-clampRange, clampRange].
func ScaleOffset(delta int, scale float64, clampRange int) int {
	v := int(math.Round(float64(delta) * scale))
	if clampRange < 0 {
		clampRange = -clampRange
	}
	return clampInt(v, -clampRange, clampRange)
}

// CanvasToDevice scales a position authored on the relativeSize canvas into
// device space.
func CanvasToDevice(pos Point, relativeSize, screen Size) Point {
	if !relativeSize.Valid() {
		return pos
	}
	return Point{
		X: int(math.Round(float64(pos.X) * float64(screen.W) / float64(relativeSize.W))),
		Y: int(math.Round(float64(pos.Y) * float64(screen.H) / float64(relativeSize.H))),
	}
}

// CanvasXToDevice scales a single horizontal canvas value.
func CanvasXToDevice(x float64, relativeSize, screen Size) int {
	if relativeSize.W <= 0 {
		return int(math.Round(x))
	}
	return int(math.Round(x * float64(screen.W) / float64(relativeSize.W)))
}

// CanvasYToDevice scales a single vertical canvas value.
func CanvasYToDevice(y float64, relativeSize, screen Size) int {
	if relativeSize.H <= 0 {
		return int(math.Round(y))
	}
	return int(math.Round(y * float64(screen.H) / float64(relativeSize.H)))
}

// ScaleLength scales a canvas length (a range or an offset) into device
// pixels using the vertical ratio.
func ScaleLength(length float64, relativeSize, screen Size) int {
	return CanvasYToDevice(length, relativeSize, screen)
}

// SkillCenterScale is the pointer-to-aim ratio applied by directional skills.
const SkillCenterScale = 0.5

// SkillCenter is the device-space reference point for directional aim,
// slightly below the screen center where the controlled character sits.
func SkillCenter(screen Size) Point {
	return Point{X: screen.W / 2, Y: int(float64(screen.H) * 0.55)}
}

// CenterOffset returns the aim offset of a device pointer position relative to
// SkillCenter, halved and clamped to ±clampRange on each axis.
func CenterOffset(pointer Point, screen Size, clampRange int) Point {
	c := SkillCenter(screen)
	return Point{
		X: ScaleOffset(pointer.X-c.X, SkillCenterScale, clampRange),
		Y: ScaleOffset(pointer.Y-c.Y, SkillCenterScale, clampRange),
	}
}

// Clamp limits a device point to [0, screen.W) x [0, screen.H).
func Clamp(p Point, screen Size) Point {
	if !screen.Valid() {
		return p
	}
	return Point{
		X: clampInt(p.X, 0, screen.W-1),
		Y: clampInt(p.Y, 0, screen.H-1),
	}
}

// InMargin reports whether a device point lies at least margin pixels inside
// every screen edge.
func InMargin(p Point, screen Size, margin int) bool {
	return p.X >= margin && p.X <= screen.W-margin &&
		p.Y >= margin && p.Y <= screen.H-margin
}

// ClampMargin limits a device point to the screen shrunk by margin.
func ClampMargin(p Point, screen Size, margin int) Point {
	return Point{
		X: clampInt(p.X, margin, screen.W-margin),
		Y: clampInt(p.Y, margin, screen.H-margin),
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
