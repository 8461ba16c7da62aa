//go:build !linux

package evdev

import (
	"context"

	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/coord"
)

// Reader feeds event devices to a Sink. Off Linux it never runs.
type Reader struct {
	settings
	paths []string
}

// New creates a reader for the device paths.
func New(paths []string, _ host.Sink, _ coord.Rect, opts ...Option) *Reader {
	return &Reader{settings: newSettings(opts), paths: paths}
}

// SetCursorPosition implements host.Pointer.
func (r *Reader) SetCursorPosition(coord.Point) {}

// SetCursorVisible implements host.Pointer.
func (r *Reader) SetCursorVisible(bool) {}

// Run always fails off Linux.
func (r *Reader) Run(context.Context) error {
	return ErrUnsupported
}
