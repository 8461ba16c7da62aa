package config

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	logFormats     = []string{"console", "json"}
	transportKinds = []string{"scrcpy", "websocket", "log"}
	inputSources   = []string{"terminal", "evdev"}
)

// Validate checks every section and returns a *ValidationError listing all
// invalid settings, or nil.
func (c *Config) Validate() error {
	c.mu.Lock()
	c.configErrors = nil
	c.mu.Unlock()

	var v validator
	logging := c.Logging()
	if _, err := zerolog.ParseLevel(logging.Level); err != nil {
		v.add("logging.level", "unknown level", logging.Level, ErrCodeInvalidEnum)
	}
	v.enum("logging.format", logging.Format, logFormats)

	screen := c.Device().Screen
	v.positive("device.width", screen.W)
	v.positive("device.height", screen.H)

	mask := c.Mask()
	v.positive("mask.width", mask.W)
	v.positive("mask.height", mask.H)

	engine := c.Engine()
	v.positiveDuration("engine.tickInterval", engine.TickInterval)
	v.nonNegativeDuration("engine.wheelInterval", engine.WheelInterval)
	v.nonNegative("engine.clickPointerId", engine.ClickPointerID)
	v.nonNegative("engine.aimBoxWidth", engine.AimBox.W)
	v.nonNegative("engine.aimBoxHeight", engine.AimBox.H)
	v.nonNegative("engine.aimMargin", engine.AimMargin)
	v.positive("engine.queueSize", engine.QueueSize)
	v.positiveDuration("engine.scriptTimeout", engine.ScriptTimeout)

	transport := c.Transport()
	v.enum("transport.kind", transport.Kind, transportKinds)
	switch transport.Kind {
	case "scrcpy":
		v.required("transport.addr", transport.Addr)
	case "websocket":
		v.required("transport.url", transport.URL)
	}

	input := c.Input()
	v.enum("input.source", input.Source, inputSources)
	if input.Source == "evdev" && len(input.Devices) == 0 {
		v.add("input.devices", "evdev needs at least one device", input.Devices, ErrCodeRequiredMissing)
	}
	if input.Sensitivity <= 0 {
		v.add("input.sensitivity", "must be positive", input.Sensitivity, ErrCodeOutOfRange)
	}

	mapping := c.Mapping()
	v.nonNegativeDuration("mapping.debounce", mapping.Debounce)

	metrics := c.Metrics()
	if metrics.Enabled {
		v.required("metrics.addr", metrics.Addr)
	}

	for path, err := range c.ConfigErrors() {
		if errors.Is(err, ErrTypeMismatch) {
			v.add(path, err.Error(), nil, ErrCodeTypeMismatch)
		}
	}

	if len(v.fields) == 0 {
		return nil
	}
	slices.SortFunc(v.fields, func(a, b FieldError) int {
		return strings.Compare(a.Path, b.Path)
	})
	return &ValidationError{Fields: v.fields}
}

type validator struct {
	fields []FieldError
}

func (v *validator) add(path, msg string, value any, code ValidationErrorCode) {
	v.fields = append(v.fields, FieldError{Path: path, Message: msg, Value: value, Code: code})
}

func (v *validator) enum(path, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.add(path, "must be one of "+joinQuoted(allowed), value, ErrCodeInvalidEnum)
	}
}

func (v *validator) required(path, value string) {
	if value == "" {
		v.add(path, "required", value, ErrCodeRequiredMissing)
	}
}

func (v *validator) positive(path string, value int) {
	if value <= 0 {
		v.add(path, "must be positive", value, ErrCodeOutOfRange)
	}
}

func (v *validator) nonNegative(path string, value int) {
	if value < 0 {
		v.add(path, "must not be negative", value, ErrCodeOutOfRange)
	}
}

func (v *validator) positiveDuration(path string, value time.Duration) {
	if value <= 0 {
		v.add(path, "must be positive", value, ErrCodeOutOfRange)
	}
}

func (v *validator) nonNegativeDuration(path string, value time.Duration) {
	if value < 0 {
		v.add(path, "must not be negative", value, ErrCodeOutOfRange)
	}
}

func joinQuoted(values []string) string {
	return `"` + strings.Join(values, `", "`) + `"`
}
