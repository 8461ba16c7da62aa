// Package key defines the input identifiers and keyboard events consumed by
// the mapping engine.
//
// Every physical input is reduced to an ID:
//
//   - Keyboard keys use DOM-style code names: "KeyA", "Digit1", "Space",
//     "ShiftLeft", "ArrowUp".
//   - Mouse buttons use synthetic ids "M0" through "M4".
//   - Wheel detents use "WheelUp" and "WheelDown".
//   - Gamepad buttons use "G-" ids such as "G-South" and "G-DPadUp". Stick
//     and trigger axes are not ids; they arrive as AxisEvents.
//
// Host input sources translate their native codes into these ids so mapping
// files stay portable across terminal, evdev and any other surface.
package key
