package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/touchmask/internal/config/loader"
)

// EnvPrefix prefixes the environment variables that override settings.
const EnvPrefix = "TOUCHMASK_"

// Config holds the merged application configuration: defaults, then the
// TOML file, then the environment, then explicit Set calls.
type Config struct {
	mu sync.RWMutex

	data map[string]any

	// Sources
	path string
	fs   loader.FileSystem
	env  *loader.EnvLoader

	// configErrors stores type errors found by the section accessors.
	configErrors map[string]error
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the TOML file to load. A missing file is not an error.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem sets the file system the TOML file is read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvLoader replaces the environment loader.
func WithEnvLoader(l *loader.EnvLoader) Option {
	return func(c *Config) {
		c.env = l
	}
}

// New creates a Config holding the defaults.
func New(opts ...Option) *Config {
	c := &Config{
		data: defaultConfig(),
		fs:   loader.DefaultFS(),
		env:  loader.NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load merges the file and environment over the defaults and validates the
// result.
func (c *Config) Load() error {
	var file map[string]any
	if c.path != "" {
		var err error
		file, err = loader.NewTOMLLoaderWithFS(c.fs, c.path).Load()
		if err != nil {
			return err
		}
	}
	env, err := c.env.Load()
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}

	c.mu.Lock()
	c.data = loader.DeepMerge(loader.DeepMerge(defaultConfig(), file), env)
	c.configErrors = nil
	c.mu.Unlock()

	return c.Validate()
}

// Path returns the TOML file path, if any.
func (c *Config) Path() string {
	return c.path
}

// Get returns the value at the given path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.data, path)
}

// Set overrides the value at the given path.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return setPath(c.data, path, value)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

// GetFloat returns a float value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings use
// time.ParseDuration; integers are milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("%q", val)}
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: "[]" + typeName(item)}
			}
			result = append(result, s)
		}
		return result, nil
	case string:
		// comma-separated, as from a flag
		if val == "" {
			return nil, nil
		}
		return strings.Split(val, ","), nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"logging": map[string]any{
			"level":  "info",
			"format": "console",
			"file":   "",
		},
		"device": map[string]any{
			"width":  1280,
			"height": 720,
		},
		"mask": map[string]any{
			"left":   0,
			"top":    0,
			"width":  0,
			"height": 0,
		},
		"engine": map[string]any{
			"tickInterval":   "16ms",
			"wheelInterval":  "50ms",
			"clickPointerId": 0,
			"aimBoxWidth":    0,
			"aimBoxHeight":   0,
			"aimMargin":      25,
			"queueSize":      256,
			"scriptTimeout":  "30s",
		},
		"transport": map[string]any{
			"kind": "log",
			"addr": "127.0.0.1:27183",
			"url":  "",
		},
		"input": map[string]any{
			"source":      "terminal",
			"devices":     []string{},
			"grab":        false,
			"sensitivity": 1.0,
		},
		"mapping": map[string]any{
			"file":     "",
			"watch":    true,
			"debounce": "200ms",
		},
		"metrics": map[string]any{
			"enabled": false,
			"addr":    "127.0.0.1:9464",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrInvalidPath
	}
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s is not a section", ErrInvalidPath, part)
		}
		current = nextMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path into parts, dropping empty ones.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrSettingNotFound)
}
