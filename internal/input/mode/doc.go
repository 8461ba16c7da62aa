// Package mode switches the engine between mapping input to touches and
// passing keys straight through to the device.
//
// Two modes exist. In the mapping mode every event reaches the binding
// registry. In the key-input mode keyboard events become Android key
// injections, Ctrl+V pastes the host clipboard, and mouse events are
// swallowed until the right button is held for ExitHold.
//
// # Mode Lifecycle
//
//	┌─────────┐    Enter()    ┌──────────┐
//	│ mapping │ ───────────▶ │ key-input│
//	└─────────┘              └──────────┘
//	     ▲                        │
//	     │  Exit()                │
//	     └────────────────────────┘
//
// When switching modes the current mode's Exit is called, then the new
// mode's Enter.
//
// A handler never switches modes itself. It returns a Result naming the mode
// to switch to and the caller applies it through the Manager.
package mode
