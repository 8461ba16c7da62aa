package mouse

import (
	"time"

	"github.com/dshills/touchmask/internal/input/key"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonBack is the back navigation button (mouse button 4).
	ButtonBack
	// ButtonForward is the forward navigation button (mouse button 5).
	ButtonForward
	// ButtonScrollUp indicates scroll wheel up.
	ButtonScrollUp
	// ButtonScrollDown indicates scroll wheel down.
	ButtonScrollDown
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonBack:
		return "back"
	case ButtonForward:
		return "forward"
	case ButtonScrollUp:
		return "scroll-up"
	case ButtonScrollDown:
		return "scroll-down"
	default:
		return "none"
	}
}

// IsScroll returns true if this is a scroll button.
func (b Button) IsScroll() bool {
	return b == ButtonScrollUp || b == ButtonScrollDown
}

// Index returns the host button index (0 left, 1 middle, 2 right, 3 back,
// 4 forward), or -1 for scroll and none.
func (b Button) Index() int {
	switch b {
	case ButtonLeft:
		return 0
	case ButtonMiddle:
		return 1
	case ButtonRight:
		return 2
	case ButtonBack:
		return 3
	case ButtonForward:
		return 4
	default:
		return -1
	}
}

// ID returns the input id for the button.
func (b Button) ID() key.ID {
	switch b {
	case ButtonScrollUp:
		return key.WheelUp
	case ButtonScrollDown:
		return key.WheelDown
	default:
		return key.MouseButton(b.Index())
	}
}

// Action represents the type of mouse action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press or a wheel detent.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
	// ActionMove indicates pointer movement.
	ActionMove
	// ActionLeave indicates the pointer left the input surface.
	ActionLeave
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	case ActionLeave:
		return "leave"
	default:
		return "none"
	}
}

// Position is a point in client space.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Event represents a mouse input event.
type Event struct {
	// Position is the client-space pointer position.
	Position Position

	// Button is the mouse button involved.
	Button Button

	// Modifiers are any keyboard modifiers held during the event.
	Modifiers key.Modifier

	// Action is the type of mouse action.
	Action Action

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a mouse event with the current timestamp.
func NewEvent(action Action, button Button, x, y int) Event {
	return Event{
		Position:  Position{X: x, Y: y},
		Button:    button,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// Move creates a pointer movement event.
func Move(x, y int) Event {
	return NewEvent(ActionMove, ButtonNone, x, y)
}
