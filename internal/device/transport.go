package device

import (
	"context"

	"github.com/rs/zerolog"
)

// Transport delivers commands to the device. Send may block for the duration
// of a command (a Touch{Default} holds for its duration); callers that must
// not block go through an Emitter.
type Transport interface {
	Send(ctx context.Context, cmd Command) error
	Close() error
}

// Emitter accepts commands without blocking.
type Emitter interface {
	Emit(cmd Command)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(cmd Command)

// Emit implements Emitter.
func (f EmitterFunc) Emit(cmd Command) { f(cmd) }

// LogTransport writes every command to a logger instead of a device.
type LogTransport struct {
	log zerolog.Logger
}

// NewLogTransport creates a dry-run transport.
func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{log: logger.With().Str("component", "transport").Str("transport", "log").Logger()}
}

// Send implements Transport.
func (t *LogTransport) Send(_ context.Context, cmd Command) error {
	t.log.Info().Str("kind", cmd.Kind().String()).Stringer("cmd", cmd).Msg("command")
	return nil
}

// Close implements Transport.
func (t *LogTransport) Close() error { return nil }
