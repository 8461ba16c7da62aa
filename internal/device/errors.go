package device

import (
	"errors"
	"fmt"
)

// Errors returned by transports.
var (
	// ErrClosed indicates the transport or queue has been closed.
	ErrClosed = errors.New("device transport closed")

	// ErrUnsupported indicates a transport cannot encode a command.
	ErrUnsupported = errors.New("unsupported command")

	// ErrNotConnected indicates the transport has no live connection.
	ErrNotConnected = errors.New("device not connected")
)

// SendError describes a failed delivery.
type SendError struct {
	// Transport names the transport that failed.
	Transport string
	// Command is the command that could not be delivered.
	Command Command
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("%s: sending %s: %v", e.Transport, e.Command.Kind(), e.Err)
}

// Unwrap returns the underlying error.
func (e *SendError) Unwrap() error {
	return e.Err
}
