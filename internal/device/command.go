package device

import (
	"fmt"
	"time"

	"github.com/dshills/touchmask/internal/input/coord"
)

// Kind identifies the command variant.
type Kind uint8

const (
	KindTouch Kind = iota
	KindSwipe
	KindSendKey
	KindSetClipboard
)

// String returns the command type name.
func (k Kind) String() string {
	switch k {
	case KindTouch:
		return "touch"
	case KindSwipe:
		return "swipe"
	case KindSendKey:
		return "sendKey"
	case KindSetClipboard:
		return "setClipboard"
	default:
		return "unknown"
	}
}

// Command is a device-control message.
type Command interface {
	fmt.Stringer
	Kind() Kind
	// Lane returns the ordering lane: the pointer id for touch and swipe,
	// KeyLane otherwise.
	Lane() int
}

// KeyLane is the ordering lane shared by key and clipboard commands.
const KeyLane = -1

// TouchAction is the phase of a touch command.
type TouchAction uint8

const (
	// TouchDefault is a complete tap: down, hold for Duration, up.
	TouchDefault TouchAction = iota
	TouchDown
	TouchUp
	TouchMove
)

// String returns the action name as written in macros.
func (a TouchAction) String() string {
	switch a {
	case TouchDefault:
		return "default"
	case TouchDown:
		return "down"
	case TouchUp:
		return "up"
	case TouchMove:
		return "move"
	default:
		return "unknown"
	}
}

// ParseTouchAction parses a macro action name.
func ParseTouchAction(s string) (TouchAction, error) {
	switch s {
	case "default":
		return TouchDefault, nil
	case "down":
		return TouchDown, nil
	case "up":
		return TouchUp, nil
	case "move":
		return TouchMove, nil
	}
	return 0, fmt.Errorf("unknown touch action %q", s)
}

// Touch drives a single contact.
type Touch struct {
	Action    TouchAction
	PointerID int
	Screen    coord.Size
	Pos       coord.Point
	// Duration is the hold time of a TouchDefault. Zero uses the transport
	// default.
	Duration time.Duration
}

// Kind implements Command.
func (Touch) Kind() Kind { return KindTouch }

// Lane implements Command.
func (t Touch) Lane() int { return t.PointerID }

func (t Touch) String() string {
	if t.Action == TouchDefault {
		return fmt.Sprintf("touch %s #%d (%d,%d) %s", t.Action, t.PointerID, t.Pos.X, t.Pos.Y, t.Duration)
	}
	return fmt.Sprintf("touch %s #%d (%d,%d)", t.Action, t.PointerID, t.Pos.X, t.Pos.Y)
}

// SwipeAction selects which ends of a swipe are emitted.
type SwipeAction uint8

const (
	// SwipeDefault presses at the first point and releases at the last.
	SwipeDefault SwipeAction = iota
	// SwipeNoUp leaves the contact down at the last point.
	SwipeNoUp
	// SwipeNoDown assumes the contact is already down at the first point.
	SwipeNoDown
)

// String returns the action name as written in macros.
func (a SwipeAction) String() string {
	switch a {
	case SwipeDefault:
		return "default"
	case SwipeNoUp:
		return "noUp"
	case SwipeNoDown:
		return "noDown"
	default:
		return "unknown"
	}
}

// ParseSwipeAction parses a macro action name.
func ParseSwipeAction(s string) (SwipeAction, error) {
	switch s {
	case "default":
		return SwipeDefault, nil
	case "noUp":
		return SwipeNoUp, nil
	case "noDown":
		return SwipeNoDown, nil
	}
	return 0, fmt.Errorf("unknown swipe action %q", s)
}

// Swipe moves one contact along a path.
type Swipe struct {
	Action    SwipeAction
	PointerID int
	Screen    coord.Size
	Path      []coord.Point
	// Interval is the time between consecutive path points.
	Interval time.Duration
	// Eased moves along each segment with a sigmoid curve instead of
	// constant speed.
	Eased bool
}

// Kind implements Command.
func (Swipe) Kind() Kind { return KindSwipe }

// Lane implements Command.
func (s Swipe) Lane() int { return s.PointerID }

func (s Swipe) String() string {
	return fmt.Sprintf("swipe %s #%d %v every %s", s.Action, s.PointerID, s.Path, s.Interval)
}

// KeyAction is the phase of a key injection.
type KeyAction uint8

const (
	KeyDown KeyAction = iota
	KeyUp
)

// String returns the action name.
func (a KeyAction) String() string {
	if a == KeyUp {
		return "up"
	}
	return "down"
}

// SendKey injects an Android key event.
type SendKey struct {
	Action    KeyAction
	Keycode   Keycode
	Metastate Metastate
	// Repeat counts presses of a held key; 0 for the first.
	Repeat int
}

// Kind implements Command.
func (SendKey) Kind() Kind { return KindSendKey }

// Lane implements Command.
func (SendKey) Lane() int { return KeyLane }

func (k SendKey) String() string {
	return fmt.Sprintf("key %s %d meta=%#x repeat=%d", k.Action, k.Keycode, uint32(k.Metastate), k.Repeat)
}

// SetClipboard replaces the device clipboard and optionally pastes it.
type SetClipboard struct {
	Sequence uint64
	Text     string
	Paste    bool
}

// Kind implements Command.
func (SetClipboard) Kind() Kind { return KindSetClipboard }

// Lane implements Command.
func (SetClipboard) Lane() int { return KeyLane }

func (c SetClipboard) String() string {
	return fmt.Sprintf("clipboard seq=%d paste=%v len=%d", c.Sequence, c.Paste, len(c.Text))
}
