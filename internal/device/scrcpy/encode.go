// Package scrcpy delivers device commands over a scrcpy control socket.
package scrcpy

import (
	"encoding/binary"
	"math"

	"github.com/dshills/touchmask/internal/input/coord"
)

// Control message types.
const (
	TypeInjectKeycode    byte = 0
	TypeInjectTouchEvent byte = 2
	TypeSetClipboard     byte = 9
)

// Android motion actions.
const (
	MotionDown byte = 0
	MotionUp   byte = 1
	MotionMove byte = 2
)

const (
	touchMessageSize = 32
	keyMessageSize   = 14

	// MaxClipboardText is the largest clipboard payload scrcpy accepts.
	MaxClipboardText = 1<<18 - 14

	primaryButton = 1
)

// DefaultPressure is the contact pressure reported for touches.
var DefaultPressure = PressureFixed(0.8)

// PressureFixed converts a pressure in [0,1] to scrcpy's unsigned 16-bit
// fixed point.
func PressureFixed(f float64) uint16 {
	if f >= 1 {
		return 0xffff
	}
	if f <= 0 {
		return 0
	}
	return uint16(math.Floor(f * 65536))
}

// EncodeTouch builds an INJECT_TOUCH_EVENT message.
func EncodeTouch(action byte, pointerID uint64, pos coord.Point, screen coord.Size, pressure uint16) []byte {
	buf := make([]byte, touchMessageSize)
	buf[0] = TypeInjectTouchEvent
	buf[1] = action
	binary.BigEndian.PutUint64(buf[2:10], pointerID)
	binary.BigEndian.PutUint32(buf[10:14], uint32(int32(pos.X)))
	binary.BigEndian.PutUint32(buf[14:18], uint32(int32(pos.Y)))
	binary.BigEndian.PutUint16(buf[18:20], uint16(screen.W))
	binary.BigEndian.PutUint16(buf[20:22], uint16(screen.H))
	binary.BigEndian.PutUint16(buf[22:24], pressure)
	binary.BigEndian.PutUint32(buf[24:28], primaryButton)
	binary.BigEndian.PutUint32(buf[28:32], primaryButton)
	return buf
}

// EncodeKeycode builds an INJECT_KEYCODE message.
func EncodeKeycode(action byte, keycode, repeat, metastate uint32) []byte {
	buf := make([]byte, keyMessageSize)
	buf[0] = TypeInjectKeycode
	buf[1] = action
	binary.BigEndian.PutUint32(buf[2:6], keycode)
	binary.BigEndian.PutUint32(buf[6:10], repeat)
	binary.BigEndian.PutUint32(buf[10:14], metastate)
	return buf
}

// EncodeSetClipboard builds a SET_CLIPBOARD message. Text longer than
// MaxClipboardText is truncated on a byte boundary.
func EncodeSetClipboard(sequence uint64, text string, paste bool) []byte {
	if len(text) > MaxClipboardText {
		text = text[:MaxClipboardText]
	}
	buf := make([]byte, 14+len(text))
	buf[0] = TypeSetClipboard
	binary.BigEndian.PutUint64(buf[1:9], sequence)
	if paste {
		buf[9] = 1
	}
	binary.BigEndian.PutUint32(buf[10:14], uint32(len(text)))
	copy(buf[14:], text)
	return buf
}
