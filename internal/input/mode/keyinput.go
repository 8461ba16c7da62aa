package mode

import (
	"sort"
	"time"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// ExitHold is how long the right mouse button must be held to leave
// key-input mode.
const ExitHold = time.Second

type heldKey struct {
	code   device.Keycode
	repeat int
}

// KeyInputMode forwards keyboard events to the device as Android key
// events.
type KeyInputMode struct {
	// held keys and the number of downs sent for each
	held map[key.ID]*heldKey

	// pasting is set between a Ctrl+V press and the V release, both of which
	// are swallowed.
	pasting bool

	// rightDown is when the right button went down, zero if it is up.
	rightDown time.Time

	clipSeq uint64
}

// NewKeyInputMode creates the key-input mode.
func NewKeyInputMode() *KeyInputMode {
	return &KeyInputMode{held: make(map[key.ID]*heldKey)}
}

// Name returns the mode identifier.
func (m *KeyInputMode) Name() string {
	return ModeKeyInput
}

// Enter resets repeat counters and the exit gesture.
func (m *KeyInputMode) Enter(ctx *Context) error {
	m.reset()
	ctx.Log.Info().Str("from", ctx.PreviousMode).Msg("key input mode on; hold the right button to leave")
	return nil
}

// Exit releases every key still held on the device.
func (m *KeyInputMode) Exit(ctx *Context) error {
	ids := make([]key.ID, 0, len(m.held))
	for id := range m.held {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		ctx.Emitter.Emit(device.SendKey{Action: device.KeyUp, Keycode: m.held[id].code})
	}
	m.reset()
	ctx.Log.Info().Str("to", ctx.NextMode).Msg("key input mode off")
	return nil
}

func (m *KeyInputMode) reset() {
	clear(m.held)
	m.pasting = false
	m.rightDown = time.Time{}
}

// HandleKey sends the key to the device. Every key event is consumed.
func (m *KeyInputMode) HandleKey(ev key.Event, ctx *Context) Result {
	if ev.Code == "KeyV" && m.handlePaste(ev, ctx) {
		return Result{Consumed: true}
	}

	code, ok := device.AndroidKeycode(ev.Code)
	if !ok {
		ctx.Log.Debug().Str("key", ev.Code.String()).Msg("no android keycode")
		return Result{Consumed: true}
	}
	meta := device.MetastateFor(ev.Modifiers)

	if ev.IsDown() {
		h, ok := m.held[ev.Code]
		if !ok {
			h = &heldKey{code: code}
			m.held[ev.Code] = h
		}
		ctx.Emitter.Emit(device.SendKey{Action: device.KeyDown, Keycode: code, Metastate: meta, Repeat: h.repeat})
		h.repeat++
		return Result{Consumed: true}
	}

	// a release whose press went to the mapping mode
	if _, ok := m.held[ev.Code]; !ok {
		return Result{Consumed: true}
	}
	delete(m.held, ev.Code)
	ctx.Emitter.Emit(device.SendKey{Action: device.KeyUp, Keycode: code, Metastate: meta})
	return Result{Consumed: true}
}

// handlePaste turns Ctrl+V into a clipboard paste. It reports whether the
// event was part of the gesture.
func (m *KeyInputMode) handlePaste(ev key.Event, ctx *Context) bool {
	if !ev.IsDown() {
		if m.pasting {
			m.pasting = false
			return true
		}
		return false
	}
	if !ev.Modifiers.HasCtrl() {
		return false
	}
	if !m.pasting {
		m.pasting = true
		m.paste(ctx)
	}
	return true
}

func (m *KeyInputMode) paste(ctx *Context) {
	if ctx.Clipboard == nil {
		return
	}
	text, err := ctx.Clipboard.ReadText()
	if err != nil {
		ctx.Log.Warn().Err(err).Msg("clipboard read failed")
		return
	}
	m.clipSeq++
	ctx.Emitter.Emit(device.SetClipboard{Sequence: m.clipSeq, Text: text, Paste: true})
}

// HandleMouse swallows mouse input and watches for the exit gesture.
func (m *KeyInputMode) HandleMouse(ev mouse.Event, ctx *Context) Result {
	if ev.Button != mouse.ButtonRight {
		return Result{Consumed: true}
	}
	switch ev.Action {
	case mouse.ActionPress:
		m.rightDown = ev.Timestamp
	case mouse.ActionRelease:
		exit := m.exitHeld(ev.Timestamp)
		m.rightDown = time.Time{}
		if exit {
			return Result{Consumed: true, Switch: ModeMapping}
		}
	}
	return Result{Consumed: true}
}

// Tick leaves the mode once the right button has been held long enough.
func (m *KeyInputMode) Tick(now time.Time, ctx *Context) Result {
	if m.exitHeld(now) {
		m.rightDown = time.Time{}
		return Result{Switch: ModeMapping}
	}
	return Result{}
}

// exitHeld reports whether the right button has been down for ExitHold.
func (m *KeyInputMode) exitHeld(now time.Time) bool {
	return !m.rightDown.IsZero() && now.Sub(m.rightDown) >= ExitHold
}

// Held returns the number of keys held on the device.
func (m *KeyInputMode) Held() int {
	return len(m.held)
}
