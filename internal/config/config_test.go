package config

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/dshills/touchmask/internal/config/loader"
	"github.com/dshills/touchmask/internal/input/coord"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func (m memFS) Stat(string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}

func envLoader(vars ...string) *loader.EnvLoader {
	l := loader.NewEnvLoader(EnvPrefix)
	l.SetEnviron(func() []string { return vars })
	return l
}

func load(t *testing.T, file string, env ...string) *Config {
	t.Helper()
	c := New(
		WithFile("/touchmask.toml"),
		WithFileSystem(memFS{"/touchmask.toml": file}),
		WithEnvLoader(envLoader(env...)),
	)
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c
}

func TestDefaults(t *testing.T) {
	c := New(WithEnvLoader(envLoader()))
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	engine := c.Engine()
	if engine.TickInterval != 16*time.Millisecond {
		t.Errorf("TickInterval = %v, want 16ms", engine.TickInterval)
	}
	if engine.WheelInterval != 50*time.Millisecond {
		t.Errorf("WheelInterval = %v, want 50ms", engine.WheelInterval)
	}
	if got := c.Mask(); got != (coord.Rect{W: 1280, H: 720}) {
		t.Errorf("Mask = %+v, want the whole screen", got)
	}
	if got := c.Transport().Kind; got != "log" {
		t.Errorf("Transport.Kind = %q, want log", got)
	}
	if got := c.Input().Source; got != "terminal" {
		t.Errorf("Input.Source = %q, want terminal", got)
	}
	if !c.Mapping().Watch {
		t.Error("Mapping.Watch should default to true")
	}
}

func TestFileAndEnvPrecedence(t *testing.T) {
	c := load(t, `
[device]
width = 2400
height = 1080

[mask]
left = 70
top = 30
width = 1280
height = 576

[engine]
tickInterval = "8ms"
clickPointerId = 9

[input]
source = "evdev"
devices = ["/dev/input/event3"]
sensitivity = 2
`, "TOUCHMASK_ENGINE_CLICK_POINTER_ID=4", "TOUCHMASK_LOGGING_LEVEL=debug")

	if got := c.Device().Screen; got != (coord.Size{W: 2400, H: 1080}) {
		t.Errorf("Screen = %+v", got)
	}
	if got := c.Mask(); got != (coord.Rect{Left: 70, Top: 30, W: 1280, H: 576}) {
		t.Errorf("Mask = %+v", got)
	}
	engine := c.Engine()
	if engine.TickInterval != 8*time.Millisecond {
		t.Errorf("TickInterval = %v, want 8ms", engine.TickInterval)
	}
	if engine.ClickPointerID != 4 {
		t.Errorf("ClickPointerID = %d, want the environment's 4", engine.ClickPointerID)
	}
	if engine.AimMargin != 25 {
		t.Errorf("AimMargin = %d, want default 25", engine.AimMargin)
	}
	input := c.Input()
	if len(input.Devices) != 1 || input.Devices[0] != "/dev/input/event3" {
		t.Errorf("Devices = %v", input.Devices)
	}
	if input.Sensitivity != 2 {
		t.Errorf("Sensitivity = %v, want 2", input.Sensitivity)
	}
	if got := c.Logging().Level; got != "debug" {
		t.Errorf("Logging.Level = %q, want debug", got)
	}
}

func TestSetOverrides(t *testing.T) {
	c := load(t, `[mapping]
file = "a.json"`)
	if err := c.Set("mapping.file", "b.json"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := c.Mapping().File; got != "b.json" {
		t.Errorf("Mapping.File = %q, want b.json", got)
	}
	if err := c.Set("mapping.file.x", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set through a value = %v, want ErrInvalidPath", err)
	}
	if err := c.Set("", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set empty path = %v, want ErrInvalidPath", err)
	}
}

func TestGetDuration(t *testing.T) {
	c := New()
	_ = c.Set("a.str", "1.5s")
	_ = c.Set("a.ms", int64(40))
	_ = c.Set("a.bad", "soon")

	if d, err := c.GetDuration("a.str"); err != nil || d != 1500*time.Millisecond {
		t.Errorf("GetDuration(str) = %v, %v", d, err)
	}
	if d, err := c.GetDuration("a.ms"); err != nil || d != 40*time.Millisecond {
		t.Errorf("GetDuration(ms) = %v, %v", d, err)
	}
	if _, err := c.GetDuration("a.bad"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetDuration(bad) = %v, want ErrTypeMismatch", err)
	}
	if _, err := c.GetDuration("a.none"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetDuration(none) = %v, want ErrSettingNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	c := New(
		WithFile("/touchmask.toml"),
		WithFileSystem(memFS{"/touchmask.toml": `
[logging]
level = "loud"

[engine]
tickInterval = "0s"
aimMargin = -1
queueSize = "big"

[transport]
kind = "scrcpy"
addr = ""

[input]
source = "evdev"
`}),
		WithEnvLoader(envLoader()),
	)

	err := c.Load()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Load = %v, want *ValidationError", err)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("ValidationError should match ErrValidationFailed")
	}

	want := map[string]ValidationErrorCode{
		"engine.aimMargin":    ErrCodeOutOfRange,
		"engine.queueSize":    ErrCodeTypeMismatch,
		"engine.tickInterval": ErrCodeOutOfRange,
		"input.devices":       ErrCodeRequiredMissing,
		"logging.level":       ErrCodeInvalidEnum,
		"transport.addr":      ErrCodeRequiredMissing,
	}
	got := make(map[string]ValidationErrorCode)
	for _, f := range verr.Fields {
		got[f.Path] = f.Code
	}
	if len(got) != len(want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
	for path, code := range want {
		if got[path] != code {
			t.Errorf("%s: code = %v, want %v", path, got[path], code)
		}
	}
}

func TestParseErrorIsReturned(t *testing.T) {
	c := New(
		WithFile("/touchmask.toml"),
		WithFileSystem(memFS{"/touchmask.toml": "[engine\n"}),
		WithEnvLoader(envLoader()),
	)
	var perr *loader.ParseError
	if err := c.Load(); !errors.As(err, &perr) {
		t.Fatalf("Load = %v, want *loader.ParseError", err)
	}
}
