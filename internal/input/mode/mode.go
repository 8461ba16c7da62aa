package mode

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/device"
	"github.com/dshills/touchmask/internal/host"
	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/mouse"
)

// Mode defines how input events are interpreted while it is current.
type Mode interface {
	// Name returns the unique mode identifier.
	Name() string

	// Enter is called when entering this mode.
	Enter(ctx *Context) error

	// Exit is called when leaving this mode.
	Exit(ctx *Context) error

	// HandleKey handles a keyboard event.
	HandleKey(ev key.Event, ctx *Context) Result

	// HandleMouse handles a mouse event. The pointer position has already
	// been recorded by the caller.
	HandleMouse(ev mouse.Event, ctx *Context) Result

	// Tick is called on every scheduler tick.
	Tick(now time.Time, ctx *Context) Result
}

// Result describes what became of an event.
type Result struct {
	// Consumed means the event must not reach the binding registry.
	Consumed bool

	// Switch names the mode to change to, if any.
	Switch string
}

// Context is what modes act on.
type Context struct {
	// PreviousMode is the mode being transitioned from (for Enter).
	PreviousMode string

	// NextMode is the mode being transitioned to (for Exit).
	NextMode string

	// Emitter receives device commands.
	Emitter device.Emitter

	// Clipboard is read on paste.
	Clipboard host.Clipboard

	Log zerolog.Logger
}

// Standard mode names.
const (
	ModeMapping  = "mapping"
	ModeKeyInput = "key-input"
)

// MappingMode lets every event through to the binding registry.
type MappingMode struct{}

// NewMappingMode creates the mapping mode.
func NewMappingMode() *MappingMode {
	return &MappingMode{}
}

func (*MappingMode) Name() string                             { return ModeMapping }
func (*MappingMode) Enter(*Context) error                     { return nil }
func (*MappingMode) Exit(*Context) error                      { return nil }
func (*MappingMode) HandleKey(key.Event, *Context) Result     { return Result{} }
func (*MappingMode) HandleMouse(mouse.Event, *Context) Result { return Result{} }
func (*MappingMode) Tick(time.Time, *Context) Result          { return Result{} }
