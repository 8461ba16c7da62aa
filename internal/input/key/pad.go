package key

import (
	"fmt"
	"strings"
	"time"
)

// PadPrefix starts every gamepad button id.
const PadPrefix = "G-"

// Gamepad buttons.
const (
	PadSouth         ID = "G-South"
	PadEast          ID = "G-East"
	PadNorth         ID = "G-North"
	PadWest          ID = "G-West"
	PadC             ID = "G-C"
	PadZ             ID = "G-Z"
	PadLeftTrigger   ID = "G-LeftTrigger"
	PadLeftTrigger2  ID = "G-LeftTrigger2"
	PadRightTrigger  ID = "G-RightTrigger"
	PadRightTrigger2 ID = "G-RightTrigger2"
	PadSelect        ID = "G-Select"
	PadStart         ID = "G-Start"
	PadMode          ID = "G-Mode"
	PadLeftThumb     ID = "G-LeftThumb"
	PadRightThumb    ID = "G-RightThumb"
	PadDPadUp        ID = "G-DPadUp"
	PadDPadDown      ID = "G-DPadDown"
	PadDPadLeft      ID = "G-DPadLeft"
	PadDPadRight     ID = "G-DPadRight"
)

// IsGamepad reports whether the id names a gamepad button.
func (id ID) IsGamepad() bool {
	return strings.HasPrefix(string(id), PadPrefix)
}

// Axis names an analog gamepad axis. Values run from -1 to 1; positive is
// right on X axes and down on Y axes.
type Axis string

// Gamepad axes.
const (
	LeftStickX  Axis = "LeftStickX"
	LeftStickY  Axis = "LeftStickY"
	RightStickX Axis = "RightStickX"
	RightStickY Axis = "RightStickY"
	LeftZ       Axis = "LeftZ"
	RightZ      Axis = "RightZ"
)

var axes = map[string]Axis{
	"leftstickx":  LeftStickX,
	"leftsticky":  LeftStickY,
	"rightstickx": RightStickX,
	"rightsticky": RightStickY,
	"leftz":       LeftZ,
	"rightz":      RightZ,
}

// ParseAxis resolves an axis name, ignoring case.
func ParseAxis(name string) (Axis, bool) {
	a, ok := axes[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// String returns the axis name.
func (a Axis) String() string {
	return string(a)
}

// AxisEvent reports the new position of an analog axis.
type AxisEvent struct {
	Axis      Axis
	Value     float64
	Timestamp time.Time
}

// String returns a readable form of the event.
func (e AxisEvent) String() string {
	return fmt.Sprintf("%s=%.3f", e.Axis, e.Value)
}
