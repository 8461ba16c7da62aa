package key

import "strings"

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasMeta returns true if Meta is pressed.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m.HasCtrl() {
		parts = append(parts, "Ctrl")
	}
	if m.HasAlt() {
		parts = append(parts, "Alt")
	}
	if m.HasShift() {
		parts = append(parts, "Shift")
	}
	if m.HasMeta() {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// modifierCodes maps modifier key codes to the modifier they hold.
var modifierCodes = map[ID]Modifier{
	"ShiftLeft":    ModShift,
	"ShiftRight":   ModShift,
	"ControlLeft":  ModCtrl,
	"ControlRight": ModCtrl,
	"AltLeft":      ModAlt,
	"AltRight":     ModAlt,
	"MetaLeft":     ModMeta,
	"MetaRight":    ModMeta,
}

// ModifierForCode returns the modifier held by a key code, or ModNone for
// ordinary keys.
func ModifierForCode(id ID) Modifier {
	return modifierCodes[id]
}

// ModifierState tracks which modifier keys are physically held. Sources that
// only report raw transitions use it to fill Event.Modifiers.
type ModifierState struct {
	held map[ID]bool
}

// Update records a transition and returns the resulting modifier set.
func (s *ModifierState) Update(id ID, down bool) Modifier {
	if ModifierForCode(id) != ModNone {
		if s.held == nil {
			s.held = make(map[ID]bool)
		}
		if down {
			s.held[id] = true
		} else {
			delete(s.held, id)
		}
	}
	return s.Current()
}

// Current returns the modifiers currently held.
func (s *ModifierState) Current() Modifier {
	var m Modifier
	for id := range s.held {
		m = m.With(ModifierForCode(id))
	}
	return m
}
