package input

import "errors"

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine closed")

	// ErrInvalidGeometry indicates a non-positive screen or mask size.
	ErrInvalidGeometry = errors.New("invalid geometry")
)
