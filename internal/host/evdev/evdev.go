// Package evdev is a Linux input source reading /dev/input/event* devices
// through go-evdev.
//
// Keyboards report real presses, releases and repeats. Mice report relative
// motion, which is integrated into a client position clamped to the mask.
// Gamepads report buttons as G-* key ids and their sticks and triggers as
// axis events. With grab set, the devices are held exclusively so the
// desktop does not also see the input.
package evdev

import (
	"errors"

	"github.com/rs/zerolog"
)

var (
	// ErrUnsupported is returned by Run on platforms without evdev.
	ErrUnsupported = errors.New("evdev input is only available on linux")

	// ErrNoDevices is returned by Run when no device path was configured.
	ErrNoDevices = errors.New("evdev: no devices")
)

type settings struct {
	log         zerolog.Logger
	grab        bool
	sensitivity float64
}

// Option configures a Reader.
type Option func(*settings)

// WithLogger sets the reader logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.log = logger
	}
}

// WithGrab holds the devices exclusively while Run is active.
func WithGrab(grab bool) Option {
	return func(s *settings) {
		s.grab = grab
	}
}

// WithSensitivity scales relative mouse motion.
func WithSensitivity(v float64) Option {
	return func(s *settings) {
		if v > 0 {
			s.sensitivity = v
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	s.log = s.log.With().Str("component", "evdev").Logger()
	return s
}
