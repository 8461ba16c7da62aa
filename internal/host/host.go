// Package host defines what the engine needs from the machine it runs on:
// control over the pointer and access to the clipboard. Input sources live in
// the subpackages.
package host

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"

	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// ErrClipboardUnavailable indicates the system clipboard could not be
// initialized.
var ErrClipboardUnavailable = errors.New("system clipboard unavailable")

// Pointer controls the host pointer. Positions are client pixels.
type Pointer interface {
	SetCursorPosition(p coord.Point)
	SetCursorVisible(visible bool)
}

// Sink receives host input. Input sources call it from their own
// goroutines; implementations must be safe for concurrent use.
type Sink interface {
	HandleKeyEvent(ev key.Event)
	HandleMouseEvent(ev mouse.Event)
}

// AxisSink receives analog gamepad input. Sources that read gamepads deliver
// axis events to sinks that implement it and drop them otherwise.
type AxisSink interface {
	HandleAxisEvent(ev key.AxisEvent)
}

// Clipboard reads the host clipboard.
type Clipboard interface {
	ReadText() (string, error)
}

// NopPointer ignores every request.
type NopPointer struct{}

// SetCursorPosition implements Pointer.
func (NopPointer) SetCursorPosition(coord.Point) {}

// SetCursorVisible implements Pointer.
func (NopPointer) SetCursorVisible(bool) {}

// StaticClipboard always returns the same text.
type StaticClipboard string

// ReadText implements Clipboard.
func (c StaticClipboard) ReadText() (string, error) {
	return string(c), nil
}

// SystemClipboard reads the desktop clipboard.
type SystemClipboard struct {
	once sync.Once
	err  error
}

// ReadText implements Clipboard. The clipboard is initialized on first use.
func (c *SystemClipboard) ReadText() (string, error) {
	c.once.Do(func() {
		if err := clipboard.Init(); err != nil {
			c.err = errors.Join(ErrClipboardUnavailable, err)
		}
	})
	if c.err != nil {
		return "", c.err
	}
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// RecordingPointer remembers the last requests. It is safe for concurrent
// use.
type RecordingPointer struct {
	mu       sync.Mutex
	position coord.Point
	visible  bool
	moves    int
}

// NewRecordingPointer creates a pointer that starts visible.
func NewRecordingPointer() *RecordingPointer {
	return &RecordingPointer{visible: true}
}

// SetCursorPosition implements Pointer.
func (p *RecordingPointer) SetCursorPosition(pos coord.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
	p.moves++
}

// SetCursorVisible implements Pointer.
func (p *RecordingPointer) SetCursorVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = visible
}

// Position returns the last requested position.
func (p *RecordingPointer) Position() coord.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Visible reports the last requested visibility.
func (p *RecordingPointer) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Moves counts SetCursorPosition calls.
func (p *RecordingPointer) Moves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.moves
}
