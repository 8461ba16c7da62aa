package config

import (
	"time"

	"github.com/dshills/touchmask/internal/input/coord"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// LoggingConfig configures the root logger.
type LoggingConfig struct {
	// Level is a zerolog level name.
	Level string
	// Format is "console" or "json".
	Format string
	// File is an optional log file. Empty logs to stderr.
	File string
}

// DeviceConfig describes the mirrored device.
type DeviceConfig struct {
	// Screen is the device resolution in pixels.
	Screen coord.Size
}

// EngineConfig tunes the input engine.
type EngineConfig struct {
	TickInterval   time.Duration
	WheelInterval  time.Duration
	ClickPointerID int
	AimBox         coord.Size
	AimMargin      int
	// QueueSize is the buffer of each pointer lane of the command queue.
	QueueSize     int
	ScriptTimeout time.Duration
}

// TransportConfig selects where device commands go.
type TransportConfig struct {
	// Kind is "scrcpy", "websocket" or "log".
	Kind string
	// Addr is the scrcpy control socket address.
	Addr string
	// URL is the websocket bridge URL.
	URL string
}

// InputConfig selects the host input source.
type InputConfig struct {
	// Source is "terminal" or "evdev".
	Source string
	// Devices are the evdev device paths.
	Devices []string
	// Grab holds evdev devices exclusively.
	Grab bool
	// Sensitivity scales relative mouse motion.
	Sensitivity float64
}

// MappingConfig locates the key mapping file.
type MappingConfig struct {
	File     string
	Watch    bool
	Debounce time.Duration
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", "info"),
		Format: c.getStringOr("logging.format", "console"),
		File:   c.getStringOr("logging.file", ""),
	}
}

// Device returns the device settings.
func (c *Config) Device() DeviceConfig {
	return DeviceConfig{
		Screen: coord.Size{
			W: c.getIntOr("device.width", 1280),
			H: c.getIntOr("device.height", 720),
		},
	}
}

// Mask returns the client rectangle the device is mirrored into. A zero
// size means the whole device screen at the origin.
func (c *Config) Mask() coord.Rect {
	r := coord.Rect{
		Left: c.getIntOr("mask.left", 0),
		Top:  c.getIntOr("mask.top", 0),
		W:    c.getIntOr("mask.width", 0),
		H:    c.getIntOr("mask.height", 0),
	}
	if r.W == 0 && r.H == 0 {
		screen := c.Device().Screen
		r.W, r.H = screen.W, screen.H
	}
	return r
}

// Engine returns the engine settings.
func (c *Config) Engine() EngineConfig {
	return EngineConfig{
		TickInterval:   c.getDurationOr("engine.tickInterval", 16*time.Millisecond),
		WheelInterval:  c.getDurationOr("engine.wheelInterval", 50*time.Millisecond),
		ClickPointerID: c.getIntOr("engine.clickPointerId", 0),
		AimBox: coord.Size{
			W: c.getIntOr("engine.aimBoxWidth", 0),
			H: c.getIntOr("engine.aimBoxHeight", 0),
		},
		AimMargin:     c.getIntOr("engine.aimMargin", 25),
		QueueSize:     c.getIntOr("engine.queueSize", 256),
		ScriptTimeout: c.getDurationOr("engine.scriptTimeout", 30*time.Second),
	}
}

// Transport returns the transport settings.
func (c *Config) Transport() TransportConfig {
	return TransportConfig{
		Kind: c.getStringOr("transport.kind", "log"),
		Addr: c.getStringOr("transport.addr", ""),
		URL:  c.getStringOr("transport.url", ""),
	}
}

// Input returns the input source settings.
func (c *Config) Input() InputConfig {
	return InputConfig{
		Source:      c.getStringOr("input.source", "terminal"),
		Devices:     c.getStringSliceOr("input.devices", nil),
		Grab:        c.getBoolOr("input.grab", false),
		Sensitivity: c.getFloatOr("input.sensitivity", 1),
	}
}

// Mapping returns the mapping file settings.
func (c *Config) Mapping() MappingConfig {
	return MappingConfig{
		File:     c.getStringOr("mapping.file", ""),
		Watch:    c.getBoolOr("mapping.watch", true),
		Debounce: c.getDurationOr("mapping.debounce", 200*time.Millisecond),
	}
}

// Metrics returns the metrics endpoint settings.
func (c *Config) Metrics() MetricsConfig {
	return MetricsConfig{
		Enabled: c.getBoolOr("metrics.enabled", false),
		Addr:    c.getStringOr("metrics.addr", ""),
	}
}

// Helper methods for reading config values with defaults.
// These methods only return the default for ErrSettingNotFound.
// Type errors are recorded and return the default; Validate reports them.

func (c *Config) getStringOr(path string, defaultValue string) string {
	v, err := c.GetString(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	v, err := c.GetInt(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	v, err := c.GetFloat(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	v, err := c.GetDuration(path)
	if err != nil {
		c.recordConfigError(path, err)
		return defaultValue
	}
	return v
}

func (c *Config) getStringSliceOr(path string, defaultValue []string) []string {
	v, err := c.GetStringSlice(path)
	if err != nil {
		c.recordConfigError(path, err)
		return append([]string(nil), defaultValue...)
	}
	return v
}

// recordConfigError stores the first type error for each path.
func (c *Config) recordConfigError(path string, err error) {
	if isNotFound(err) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

// ConfigErrors returns the type errors found by the section accessors.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	result := make(map[string]error, len(c.configErrors))
	for k, v := range c.configErrors {
		result[k] = v
	}
	return result
}
