// Package wsbridge delivers device commands as JSON frames over a websocket,
// for bridges that inject touches on the device side.
package wsbridge

import (
	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
)

// Message types.
const (
	TypeTouch     = "touch"
	TypeKey       = "key"
	TypeClipboard = "clipboard"
)

// Message is one frame sent to the bridge. Only the fields of its Type are
// set.
type Message struct {
	Type string `json:"type"`

	Action    string `json:"action,omitempty"`
	PointerID int    `json:"pointerId,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         int    `json:"y,omitempty"`
	W         int    `json:"w,omitempty"`
	H         int    `json:"h,omitempty"`

	Keycode   uint32 `json:"keycode,omitempty"`
	Metastate uint32 `json:"metastate,omitempty"`
	Repeat    int    `json:"repeat,omitempty"`

	Sequence uint64 `json:"sequence,omitempty"`
	Text     string `json:"text,omitempty"`
	Paste    bool   `json:"paste,omitempty"`
}

func touchMessage(s device.Step, pointerID int, screen coord.Size) Message {
	return Message{
		Type:      TypeTouch,
		Action:    s.Action.String(),
		PointerID: pointerID,
		X:         s.Pos.X,
		Y:         s.Pos.Y,
		W:         screen.W,
		H:         screen.H,
	}
}

func keyMessage(k device.SendKey) Message {
	return Message{
		Type:      TypeKey,
		Action:    k.Action.String(),
		Keycode:   uint32(k.Keycode),
		Metastate: uint32(k.Metastate),
		Repeat:    k.Repeat,
	}
}

func clipboardMessage(c device.SetClipboard) Message {
	return Message{
		Type:     TypeClipboard,
		Sequence: c.Sequence,
		Text:     c.Text,
		Paste:    c.Paste,
	}
}
