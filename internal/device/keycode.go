package device

import (
	"strconv"

	"github.com/dshills/touchmask/internal/input/key"
)

// Keycode is an Android key code.
type Keycode uint32

// Android key codes used by the passthrough table.
const (
	KeycodeUnknown        Keycode = 0
	KeycodeHome           Keycode = 3
	KeycodeBack           Keycode = 4
	Keycode0              Keycode = 7
	KeycodeStar           Keycode = 17
	KeycodePound          Keycode = 18
	KeycodeDpadUp         Keycode = 19
	KeycodeDpadDown       Keycode = 20
	KeycodeDpadLeft       Keycode = 21
	KeycodeDpadRight      Keycode = 22
	KeycodeVolumeUp       Keycode = 24
	KeycodeVolumeDown     Keycode = 25
	KeycodePower          Keycode = 26
	KeycodeClear          Keycode = 28
	KeycodeA              Keycode = 29
	KeycodeComma          Keycode = 55
	KeycodePeriod         Keycode = 56
	KeycodeAltLeft        Keycode = 57
	KeycodeAltRight       Keycode = 58
	KeycodeShiftLeft      Keycode = 59
	KeycodeShiftRight     Keycode = 60
	KeycodeTab            Keycode = 61
	KeycodeSpace          Keycode = 62
	KeycodeEnter          Keycode = 66
	KeycodeDel            Keycode = 67
	KeycodeGrave          Keycode = 68
	KeycodeMinus          Keycode = 69
	KeycodeEquals         Keycode = 70
	KeycodeLeftBracket    Keycode = 71
	KeycodeRightBracket   Keycode = 72
	KeycodeBackslash      Keycode = 73
	KeycodeSemicolon      Keycode = 74
	KeycodeApostrophe     Keycode = 75
	KeycodeSlash          Keycode = 76
	KeycodeMediaPlayPause Keycode = 85
	KeycodeMediaStop      Keycode = 86
	KeycodeMediaNext      Keycode = 87
	KeycodeMediaPrevious  Keycode = 88
	KeycodeMute           Keycode = 91
	KeycodePageUp         Keycode = 92
	KeycodePageDown       Keycode = 93
	KeycodeEscape         Keycode = 111
	KeycodeForwardDel     Keycode = 112
	KeycodeCtrlLeft       Keycode = 113
	KeycodeCtrlRight      Keycode = 114
	KeycodeCapsLock       Keycode = 115
	KeycodeScrollLock     Keycode = 116
	KeycodeMetaLeft       Keycode = 117
	KeycodeMetaRight      Keycode = 118
	KeycodeFunction       Keycode = 119
	KeycodeSysrq          Keycode = 120
	KeycodeBreak          Keycode = 121
	KeycodeMoveHome       Keycode = 122
	KeycodeMoveEnd        Keycode = 123
	KeycodeInsert         Keycode = 124
	KeycodeF1             Keycode = 131
	KeycodeNumLock        Keycode = 143
	KeycodeNumpad0        Keycode = 144
	KeycodeNumpadDivide   Keycode = 154
	KeycodeNumpadMultiply Keycode = 155
	KeycodeNumpadSubtract Keycode = 156
	KeycodeNumpadAdd      Keycode = 157
	KeycodeNumpadDot      Keycode = 158
	KeycodeNumpadComma    Keycode = 159
	KeycodeNumpadEnter    Keycode = 160
	KeycodeNumpadEquals   Keycode = 161
	KeycodeYen            Keycode = 216
	KeycodeRo             Keycode = 217
	KeycodeHelp           Keycode = 259
	KeycodeCut            Keycode = 277
	KeycodeCopy           Keycode = 278
	KeycodePaste          Keycode = 279
)

// Metastate is the Android meta-key state bitmask.
type Metastate uint32

// Meta-key flags.
const (
	MetaNone    Metastate = 0
	MetaShiftOn Metastate = 0x1
	MetaAltOn   Metastate = 0x2
	MetaCtrlOn  Metastate = 0x1000
	MetaMetaOn  Metastate = 0x10000
)

// MetastateFor converts held modifiers to an Android metastate. Lock keys are
// not reported.
func MetastateFor(mods key.Modifier) Metastate {
	m := MetaNone
	if mods.HasShift() {
		m |= MetaShiftOn
	}
	if mods.HasAlt() {
		m |= MetaAltOn
	}
	if mods.HasCtrl() {
		m |= MetaCtrlOn
	}
	if mods.HasMeta() {
		m |= MetaMetaOn
	}
	return m
}

var keycodes = buildKeycodes()

func buildKeycodes() map[key.ID]Keycode {
	m := map[key.ID]Keycode{
		"Backquote":          KeycodeGrave,
		"Backslash":          KeycodeBackslash,
		"BracketLeft":        KeycodeLeftBracket,
		"BracketRight":       KeycodeRightBracket,
		"Comma":              KeycodeComma,
		"Equal":              KeycodeEquals,
		"IntlBackslash":      KeycodeBackslash,
		"IntlRo":             KeycodeRo,
		"IntlYen":            KeycodeYen,
		"Minus":              KeycodeMinus,
		"Period":             KeycodePeriod,
		"Quote":              KeycodeApostrophe,
		"Semicolon":          KeycodeSemicolon,
		"Slash":              KeycodeSlash,
		"AltLeft":            KeycodeAltLeft,
		"AltRight":           KeycodeAltRight,
		"Backspace":          KeycodeDel,
		"CapsLock":           KeycodeCapsLock,
		"ControlLeft":        KeycodeCtrlLeft,
		"ControlRight":       KeycodeCtrlRight,
		"Enter":              KeycodeEnter,
		"MetaLeft":           KeycodeMetaLeft,
		"MetaRight":          KeycodeMetaRight,
		"ShiftLeft":          KeycodeShiftLeft,
		"ShiftRight":         KeycodeShiftRight,
		"Space":              KeycodeSpace,
		"Tab":                KeycodeTab,
		"Delete":             KeycodeForwardDel,
		"End":                KeycodeMoveEnd,
		"Help":               KeycodeHelp,
		"Home":               KeycodeMoveHome,
		"Insert":             KeycodeInsert,
		"PageDown":           KeycodePageDown,
		"PageUp":             KeycodePageUp,
		"ArrowDown":          KeycodeDpadDown,
		"ArrowLeft":          KeycodeDpadLeft,
		"ArrowRight":         KeycodeDpadRight,
		"ArrowUp":            KeycodeDpadUp,
		"NumLock":            KeycodeNumLock,
		"NumpadAdd":          KeycodeNumpadAdd,
		"NumpadComma":        KeycodeNumpadComma,
		"NumpadDecimal":      KeycodeNumpadDot,
		"NumpadDivide":       KeycodeNumpadDivide,
		"NumpadEnter":        KeycodeNumpadEnter,
		"NumpadEqual":        KeycodeNumpadEquals,
		"NumpadMultiply":     KeycodeNumpadMultiply,
		"NumpadSubtract":     KeycodeNumpadSubtract,
		"NumpadBackspace":    KeycodeDel,
		"NumpadClear":        KeycodeClear,
		"NumpadHash":         KeycodePound,
		"NumpadStar":         KeycodeStar,
		"Escape":             KeycodeEscape,
		"Fn":                 KeycodeFunction,
		"PrintScreen":        KeycodeSysrq,
		"ScrollLock":         KeycodeScrollLock,
		"Pause":              KeycodeBreak,
		"MediaPlayPause":     KeycodeMediaPlayPause,
		"MediaStop":          KeycodeMediaStop,
		"MediaTrackNext":     KeycodeMediaNext,
		"MediaTrackPrevious": KeycodeMediaPrevious,
		"Power":              KeycodePower,
		"AudioVolumeDown":    KeycodeVolumeDown,
		"AudioVolumeMute":    KeycodeMute,
		"AudioVolumeUp":      KeycodeVolumeUp,
		"Copy":               KeycodeCopy,
		"Cut":                KeycodeCut,
		"Paste":              KeycodePaste,
	}
	for i := 0; i < 26; i++ {
		m[key.ID("Key"+string(rune('A'+i)))] = KeycodeA + Keycode(i)
	}
	for i := 0; i < 10; i++ {
		d := string(rune('0' + i))
		m[key.ID("Digit"+d)] = Keycode0 + Keycode(i)
		m[key.ID("Numpad"+d)] = KeycodeNumpad0 + Keycode(i)
	}
	for i := 0; i < 12; i++ {
		m[key.ID("F"+strconv.Itoa(i+1))] = KeycodeF1 + Keycode(i)
	}
	return m
}

// AndroidKeycode returns the Android key code for a host key id.
func AndroidKeycode(id key.ID) (Keycode, bool) {
	k, ok := keycodes[id]
	return k, ok
}
