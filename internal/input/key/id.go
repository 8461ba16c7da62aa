package key

import (
	"strconv"
	"strings"
)

// ID identifies a physical input: a key code, a mouse button or a wheel
// direction.
type ID string

// Synthetic ids.
const (
	None      ID = ""
	WheelUp   ID = "WheelUp"
	WheelDown ID = "WheelDown"

	MouseLeft   ID = "M0"
	MouseMiddle ID = "M1"
	MouseRight  ID = "M2"
	MouseBack   ID = "M3"
	MouseFwd    ID = "M4"
)

// MaxMouseButton is the highest mouse button index with a synthetic id.
const MaxMouseButton = 4

// MouseButton returns the synthetic id for a mouse button index.
// Indices outside 0..MaxMouseButton return None.
func MouseButton(index int) ID {
	if index < 0 || index > MaxMouseButton {
		return None
	}
	return ID("M" + strconv.Itoa(index))
}

// IsMouse reports whether the id names a mouse button.
func (id ID) IsMouse() bool {
	if len(id) != 2 || id[0] != 'M' {
		return false
	}
	return id[1] >= '0' && id[1] <= '0'+MaxMouseButton
}

// IsWheel reports whether the id names a wheel direction.
func (id ID) IsWheel() bool {
	return id == WheelUp || id == WheelDown
}

// IsKeyboard reports whether the id names a keyboard key.
func (id ID) IsKeyboard() bool {
	return id != None && !id.IsMouse() && !id.IsWheel() && !id.IsGamepad()
}

// String returns the id as written in mapping files.
func (id ID) String() string {
	return string(id)
}

// aliases maps shorthand names accepted in mapping files to canonical codes.
var aliases = map[string]ID{
	"space":  "Space",
	"enter":  "Enter",
	"return": "Enter",
	"esc":    "Escape",
	"escape": "Escape",
	"tab":    "Tab",
	"up":     "ArrowUp",
	"down":   "ArrowDown",
	"left":   "ArrowLeft",
	"right":  "ArrowRight",
	"lmb":    MouseLeft,
	"mmb":    MouseMiddle,
	"rmb":    MouseRight,
}

// Normalize converts a user-written key name into a canonical ID.
// Single letters and digits become "KeyX" and "DigitN"; known aliases are
// expanded; everything else is returned unchanged.
func Normalize(name string) ID {
	name = strings.TrimSpace(name)
	if name == "" {
		return None
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return ID("Key" + strings.ToUpper(name))
		case c >= 'A' && c <= 'Z':
			return ID("Key" + name)
		case c >= '0' && c <= '9':
			return ID("Digit" + name)
		}
	}
	if id, ok := aliases[strings.ToLower(name)]; ok {
		return id
	}
	return ID(name)
}
