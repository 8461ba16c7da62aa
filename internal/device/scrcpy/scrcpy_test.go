package scrcpy

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/input/coord"
)

type bufferConn struct {
	bytes.Buffer
	closed bool
}

func (b *bufferConn) Close() error {
	b.closed = true
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestEncodeTouchLayout(t *testing.T) {
	msg := EncodeTouch(MotionMove, 3, coord.Point{X: 650, Y: -2}, coord.Size{W: 1280, H: 720}, 0xffff)

	require.Len(t, msg, 32)
	assert.Equal(t, TypeInjectTouchEvent, msg[0])
	assert.Equal(t, MotionMove, msg[1])
	assert.Equal(t, uint64(3), binary.BigEndian.Uint64(msg[2:10]))
	assert.Equal(t, int32(650), int32(binary.BigEndian.Uint32(msg[10:14])))
	assert.Equal(t, int32(-2), int32(binary.BigEndian.Uint32(msg[14:18])))
	assert.Equal(t, uint16(1280), binary.BigEndian.Uint16(msg[18:20]))
	assert.Equal(t, uint16(720), binary.BigEndian.Uint16(msg[20:22]))
	assert.Equal(t, uint16(0xffff), binary.BigEndian.Uint16(msg[22:24]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(msg[24:28]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(msg[28:32]))
}

func TestEncodeKeycode(t *testing.T) {
	msg := EncodeKeycode(1, 66, 5, 0x1000)
	assert.Equal(t, []byte{
		0x00, 0x01,
		0x00, 0x00, 0x00, 0x42, // AKEYCODE_ENTER
		0x00, 0x00, 0x00, 0x05,
		0x00, 0x00, 0x10, 0x00,
	}, msg)
}

func TestEncodeSetClipboard(t *testing.T) {
	msg := EncodeSetClipboard(7, "hi", true)
	assert.Equal(t, []byte{
		0x09,
		0, 0, 0, 0, 0, 0, 0, 7,
		1,
		0, 0, 0, 2,
		'h', 'i',
	}, msg)
}

func TestPressureFixed(t *testing.T) {
	assert.Equal(t, uint16(0xffff), PressureFixed(1))
	assert.Equal(t, uint16(0), PressureFixed(-1))
	assert.Equal(t, uint16(52428), PressureFixed(0.8))
}

func TestSendTouchDefault(t *testing.T) {
	conn := &bufferConn{}
	var waits []time.Duration
	tr := New(conn, WithSleeper(func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}))

	err := tr.Send(context.Background(), device.Touch{
		Action:    device.TouchDefault,
		PointerID: 3,
		Screen:    coord.Size{W: 1280, H: 720},
		Pos:       coord.Point{X: 650, Y: 650},
		Duration:  80 * time.Millisecond,
	})
	require.NoError(t, err)

	out := conn.Bytes()
	require.Len(t, out, 64)
	assert.Equal(t, MotionDown, out[1])
	assert.Equal(t, MotionUp, out[33])
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(out[32+22:32+24]), "up reports zero pressure")
	assert.Equal(t, []time.Duration{80 * time.Millisecond}, waits)
}

func TestSendSwipe(t *testing.T) {
	conn := &bufferConn{}
	tr := New(conn, WithSleeper(noSleep))

	err := tr.Send(context.Background(), device.Swipe{
		Action:    device.SwipeNoUp,
		PointerID: 2,
		Screen:    coord.Size{W: 1280, H: 720},
		Path:      []coord.Point{{X: 0, Y: 0}, {X: 150, Y: 0}},
	})
	require.NoError(t, err)

	out := conn.Bytes()
	require.Len(t, out, 3*32)
	assert.Equal(t, MotionDown, out[1])
	assert.Equal(t, MotionMove, out[33])
	assert.Equal(t, MotionMove, out[65])
	assert.Equal(t, int32(150), int32(binary.BigEndian.Uint32(out[64+10:64+14])))
}

func TestSendAfterClose(t *testing.T) {
	conn := &bufferConn{}
	tr := New(conn)
	require.NoError(t, tr.Close())
	assert.True(t, conn.closed)

	err := tr.Send(context.Background(), device.SendKey{Action: device.KeyDown, Keycode: device.KeycodeA})
	assert.ErrorIs(t, err, device.ErrClosed)

	var sendErr *device.SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, "scrcpy", sendErr.Transport)
}

func TestSendCancelledDuringHold(t *testing.T) {
	conn := &bufferConn{}
	tr := New(conn)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.Send(ctx, device.Touch{Action: device.TouchDefault, Screen: coord.Size{W: 10, H: 10}, Duration: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, conn.Bytes(), 32, "down is written before the hold")
}
