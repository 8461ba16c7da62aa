package key

import (
	"fmt"
	"time"
)

// Action is the transition reported by a key event.
type Action uint8

const (
	// ActionDown is a key press. OS auto-repeat presses set Event.Repeat.
	ActionDown Action = iota
	// ActionUp is a key release.
	ActionUp
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionUp:
		return "up"
	default:
		return "unknown"
	}
}

// Event is a single keyboard transition.
type Event struct {
	// Code identifies the physical key.
	Code ID

	// Action is down or up.
	Action Action

	// Repeat is set for auto-repeat downs generated while the key is held.
	Repeat bool

	// Modifiers holds the modifier keys held when the event occurred.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(code ID, action Action, mods Modifier) Event {
	return Event{
		Code:      code,
		Action:    action,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// Down creates a key-down event.
func Down(code ID, mods Modifier) Event {
	return NewEvent(code, ActionDown, mods)
}

// Up creates a key-up event.
func Up(code ID, mods Modifier) Event {
	return NewEvent(code, ActionUp, mods)
}

// IsDown reports whether the event is a press.
func (e Event) IsDown() bool {
	return e.Action == ActionDown
}

// String returns a compact representation like "Ctrl+KeyV down".
func (e Event) String() string {
	name := string(e.Code)
	if mods := e.Modifiers.String(); mods != "" {
		name = mods + "+" + name
	}
	if e.Repeat {
		return fmt.Sprintf("%s %s (repeat)", name, e.Action)
	}
	return fmt.Sprintf("%s %s", name, e.Action)
}
