//go:build linux

package evdev

import (
	goevdev "github.com/holoplot/go-evdev"

	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

var keyCodes = map[goevdev.EvCode]key.ID{
	goevdev.KEY_ESC: "Escape", goevdev.KEY_1: "Digit1", goevdev.KEY_2: "Digit2",
	goevdev.KEY_3: "Digit3", goevdev.KEY_4: "Digit4", goevdev.KEY_5: "Digit5",
	goevdev.KEY_6: "Digit6", goevdev.KEY_7: "Digit7", goevdev.KEY_8: "Digit8",
	goevdev.KEY_9: "Digit9", goevdev.KEY_0: "Digit0", goevdev.KEY_MINUS: "Minus",
	goevdev.KEY_EQUAL: "Equal", goevdev.KEY_BACKSPACE: "Backspace", goevdev.KEY_TAB: "Tab",
	goevdev.KEY_Q: "KeyQ", goevdev.KEY_W: "KeyW", goevdev.KEY_E: "KeyE",
	goevdev.KEY_R: "KeyR", goevdev.KEY_T: "KeyT", goevdev.KEY_Y: "KeyY",
	goevdev.KEY_U: "KeyU", goevdev.KEY_I: "KeyI", goevdev.KEY_O: "KeyO",
	goevdev.KEY_P: "KeyP", goevdev.KEY_LEFTBRACE: "BracketLeft",
	goevdev.KEY_RIGHTBRACE: "BracketRight", goevdev.KEY_ENTER: "Enter",
	goevdev.KEY_LEFTCTRL: "ControlLeft", goevdev.KEY_A: "KeyA", goevdev.KEY_S: "KeyS",
	goevdev.KEY_D: "KeyD", goevdev.KEY_F: "KeyF", goevdev.KEY_G: "KeyG",
	goevdev.KEY_H: "KeyH", goevdev.KEY_J: "KeyJ", goevdev.KEY_K: "KeyK",
	goevdev.KEY_L: "KeyL", goevdev.KEY_SEMICOLON: "Semicolon",
	goevdev.KEY_APOSTROPHE: "Quote", goevdev.KEY_GRAVE: "Backquote",
	goevdev.KEY_LEFTSHIFT: "ShiftLeft", goevdev.KEY_BACKSLASH: "Backslash",
	goevdev.KEY_Z: "KeyZ", goevdev.KEY_X: "KeyX", goevdev.KEY_C: "KeyC",
	goevdev.KEY_V: "KeyV", goevdev.KEY_B: "KeyB", goevdev.KEY_N: "KeyN",
	goevdev.KEY_M: "KeyM", goevdev.KEY_COMMA: "Comma", goevdev.KEY_DOT: "Period",
	goevdev.KEY_SLASH: "Slash", goevdev.KEY_RIGHTSHIFT: "ShiftRight",
	goevdev.KEY_KPASTERISK: "NumpadMultiply", goevdev.KEY_LEFTALT: "AltLeft",
	goevdev.KEY_SPACE: "Space", goevdev.KEY_CAPSLOCK: "CapsLock",
	goevdev.KEY_F1: "F1", goevdev.KEY_F2: "F2", goevdev.KEY_F3: "F3",
	goevdev.KEY_F4: "F4", goevdev.KEY_F5: "F5", goevdev.KEY_F6: "F6",
	goevdev.KEY_F7: "F7", goevdev.KEY_F8: "F8", goevdev.KEY_F9: "F9",
	goevdev.KEY_F10: "F10", goevdev.KEY_F11: "F11", goevdev.KEY_F12: "F12",
	goevdev.KEY_NUMLOCK: "NumLock", goevdev.KEY_SCROLLLOCK: "ScrollLock",
	goevdev.KEY_KP7: "Numpad7", goevdev.KEY_KP8: "Numpad8", goevdev.KEY_KP9: "Numpad9",
	goevdev.KEY_KPMINUS: "NumpadSubtract", goevdev.KEY_KP4: "Numpad4",
	goevdev.KEY_KP5: "Numpad5", goevdev.KEY_KP6: "Numpad6", goevdev.KEY_KPPLUS: "NumpadAdd",
	goevdev.KEY_KP1: "Numpad1", goevdev.KEY_KP2: "Numpad2", goevdev.KEY_KP3: "Numpad3",
	goevdev.KEY_KP0: "Numpad0", goevdev.KEY_KPDOT: "NumpadDecimal",
	goevdev.KEY_102ND: "IntlBackslash", goevdev.KEY_KPENTER: "NumpadEnter",
	goevdev.KEY_RIGHTCTRL: "ControlRight", goevdev.KEY_KPSLASH: "NumpadDivide",
	goevdev.KEY_SYSRQ: "PrintScreen", goevdev.KEY_RIGHTALT: "AltRight",
	goevdev.KEY_HOME: "Home", goevdev.KEY_UP: "ArrowUp", goevdev.KEY_PAGEUP: "PageUp",
	goevdev.KEY_LEFT: "ArrowLeft", goevdev.KEY_RIGHT: "ArrowRight", goevdev.KEY_END: "End",
	goevdev.KEY_DOWN: "ArrowDown", goevdev.KEY_PAGEDOWN: "PageDown",
	goevdev.KEY_INSERT: "Insert", goevdev.KEY_DELETE: "Delete",
	goevdev.KEY_MUTE: "AudioVolumeMute", goevdev.KEY_VOLUMEDOWN: "AudioVolumeDown",
	goevdev.KEY_VOLUMEUP: "AudioVolumeUp", goevdev.KEY_POWER: "Power",
	goevdev.KEY_KPEQUAL: "NumpadEqual", goevdev.KEY_PAUSE: "Pause",
	goevdev.KEY_LEFTMETA: "MetaLeft", goevdev.KEY_RIGHTMETA: "MetaRight",
}

var mouseButtons = map[goevdev.EvCode]mouse.Button{
	goevdev.BTN_LEFT:    mouse.ButtonLeft,
	goevdev.BTN_RIGHT:   mouse.ButtonRight,
	goevdev.BTN_MIDDLE:  mouse.ButtonMiddle,
	goevdev.BTN_SIDE:    mouse.ButtonBack,
	goevdev.BTN_BACK:    mouse.ButtonBack,
	goevdev.BTN_EXTRA:   mouse.ButtonForward,
	goevdev.BTN_FORWARD: mouse.ButtonForward,
}

var padButtons = map[goevdev.EvCode]key.ID{
	goevdev.BTN_SOUTH:      key.PadSouth,
	goevdev.BTN_EAST:       key.PadEast,
	goevdev.BTN_NORTH:      key.PadNorth,
	goevdev.BTN_WEST:       key.PadWest,
	goevdev.BTN_C:          key.PadC,
	goevdev.BTN_Z:          key.PadZ,
	goevdev.BTN_TL:         key.PadLeftTrigger,
	goevdev.BTN_TL2:        key.PadLeftTrigger2,
	goevdev.BTN_TR:         key.PadRightTrigger,
	goevdev.BTN_TR2:        key.PadRightTrigger2,
	goevdev.BTN_SELECT:     key.PadSelect,
	goevdev.BTN_START:      key.PadStart,
	goevdev.BTN_MODE:       key.PadMode,
	goevdev.BTN_THUMBL:     key.PadLeftThumb,
	goevdev.BTN_THUMBR:     key.PadRightThumb,
	goevdev.BTN_DPAD_UP:    key.PadDPadUp,
	goevdev.BTN_DPAD_DOWN:  key.PadDPadDown,
	goevdev.BTN_DPAD_LEFT:  key.PadDPadLeft,
	goevdev.BTN_DPAD_RIGHT: key.PadDPadRight,
}

// stickAxes are centered on the middle of their range.
var stickAxes = map[goevdev.EvCode]key.Axis{
	goevdev.ABS_X:  key.LeftStickX,
	goevdev.ABS_Y:  key.LeftStickY,
	goevdev.ABS_RX: key.RightStickX,
	goevdev.ABS_RY: key.RightStickY,
}

// triggerAxes rest at their minimum.
var triggerAxes = map[goevdev.EvCode]key.Axis{
	goevdev.ABS_Z:  key.LeftZ,
	goevdev.ABS_RZ: key.RightZ,
}
