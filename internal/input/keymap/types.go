package keymap

import (
	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
)

// Type discriminates mapping entries.
type Type string

// Mapping archetypes.
const (
	TypeTap                      Type = "Tap"
	TypeSwipe                    Type = "Swipe"
	TypeSteeringWheel            Type = "SteeringWheel"
	TypeDirectionalSkill         Type = "DirectionalSkill"
	TypeDirectionlessSkill       Type = "DirectionlessSkill"
	TypeCancelSkill              Type = "CancelSkill"
	TypeTriggerWhenPressed       Type = "TriggerWhenPressedSkill"
	TypeTriggerWhenDoublePressed Type = "TriggerWhenDoublePressedSkill"
	TypeObservation              Type = "Observation"
	TypeSight                    Type = "Sight"
	TypeFire                     Type = "Fire"
	TypeMacro                    Type = "Macro"
	TypeRepeatTap                Type = "RepeatTap"
	TypeMultipleTap              Type = "MultipleTap"
	TypeScript                   Type = "Script"
	TypeKeyInput                 Type = "KeyInput"
	TypeDirectionPad             Type = "DirectionPad"
	TypePadCastSpell             Type = "PadCastSpell"
)

// DefaultTapTime is the hold time of a Tap without one, in milliseconds.
const DefaultTapTime = 80

// Config is a decoded mapping file.
type Config struct {
	// RelativeSize is the canvas all positions were authored on.
	RelativeSize coord.Size
	Title        string
	List         []Mapping
}

// Mapping is one entry of a mapping list.
type Mapping interface {
	// Common returns the fields every entry carries.
	Common() Base
}

// Position is a point on the authoring canvas.
type Position struct {
	X, Y float64
}

// Base holds the fields shared by every archetype.
type Base struct {
	Type      Type
	Note      string
	PointerID int
	Pos       Position
}

// Common implements Mapping.
func (b Base) Common() Base { return b }

// Tap presses and releases once per key press.
type Tap struct {
	Base
	Key  key.ID
	Time int
}

// Swipe drags along a path once per key press.
type Swipe struct {
	Base
	Key      key.ID
	Path     []Position
	Interval int
}

// WheelKeys are the four keys of a steering wheel.
type WheelKeys struct {
	Left, Right, Up, Down key.ID
}

// SteeringWheel is a virtual joystick driven by four keys.
type SteeringWheel struct {
	Base
	Keys   WheelKeys
	Offset float64
}

// DirectionalSkill is a skill aimed with the pointer while held.
type DirectionalSkill struct {
	Base
	Key   key.ID
	Range float64
}

// DirectionlessSkill holds a touch while the key is held.
type DirectionlessSkill struct {
	Base
	Key key.ID
}

// CancelSkill interrupts every cancelable skill in flight.
type CancelSkill struct {
	Base
	Key key.ID
}

// TriggerWhenPressedSkill fires a skill on key press only.
type TriggerWhenPressedSkill struct {
	Base
	Key         key.ID
	Directional bool
	// RangeOrTime is the aim range when Directional, otherwise the hold
	// time in milliseconds.
	RangeOrTime float64
}

// TriggerWhenDoublePressedSkill aims on the first press and releases on the
// second.
type TriggerWhenDoublePressedSkill struct {
	Base
	Key   key.ID
	Range float64
}

// Observation drags the camera with the pointer while held.
type Observation struct {
	Base
	Key   key.ID
	Scale float64
}

// Sight toggles pointer-driven aiming.
type Sight struct {
	Base
	Key            key.ID
	ScaleX, ScaleY float64
}

// Fire shoots while aiming.
type Fire struct {
	Base
	Key            key.ID
	Drag           bool
	ScaleX, ScaleY float64
}

// MacroStep is one raw macro step. Args holds the JSON text of the step's
// arguments and is parsed when the step runs.
type MacroStep struct {
	Type string
	Args string
}

// Macro runs step lists on press, every tick while held, and on release.
type Macro struct {
	Base
	Key            key.ID
	Down, Loop, Up []MacroStep
}

// RepeatTap taps repeatedly while held.
type RepeatTap struct {
	Base
	Key      key.ID
	Time     int
	Interval int
}

// TapItem is one tap of a MultipleTap.
type TapItem struct {
	Pos  Position
	Time int
	Wait int
}

// MultipleTap taps a sequence of positions once per press.
type MultipleTap struct {
	Base
	Key   key.ID
	Items []TapItem
}

// Script runs Lua sources on press, every tick while held, and on release.
type Script struct {
	Base
	Key            key.ID
	Down, Loop, Up string
}

// KeyInput enters key-input passthrough mode.
type KeyInput struct {
	Base
	Key key.ID
}

// DirectionKind selects how a DirectionBinding is read.
type DirectionKind string

// Direction binding kinds.
const (
	DirectionButton   DirectionKind = "Button"
	DirectionJoyStick DirectionKind = "JoyStick"
)

// DirectionBinding is a two-axis input: four buttons, or a pair of gamepad
// axes.
type DirectionBinding struct {
	Kind DirectionKind

	// Button kind
	Up, Down, Left, Right key.ID

	// JoyStick kind
	X, Y key.Axis
}

// DirectionPad holds a touch displaced from its anchor by a direction
// binding, eased in over InitialDuration when it starts.
type DirectionPad struct {
	Base
	// InitialDuration is in milliseconds.
	InitialDuration        int
	MaxOffsetX, MaxOffsetY float64
	Bind                   DirectionBinding
}

// CastReleaseMode says what ends a pad cast.
type CastReleaseMode string

// Pad cast release modes.
const (
	ReleaseOnRelease     CastReleaseMode = "OnRelease"
	ReleaseOnSecondPress CastReleaseMode = "OnSecondPress"
)

// PadCastSpell presses a skill on Key and aims it with a direction binding.
type PadCastSpell struct {
	Base
	Key               key.ID
	ReleaseMode       CastReleaseMode
	DragRadius        float64
	BlockDirectionPad bool
	PadBind           DirectionBinding
}

// Keys returns every input id an entry binds.
func Keys(m Mapping) []key.ID {
	switch v := m.(type) {
	case *Tap:
		return []key.ID{v.Key}
	case *Swipe:
		return []key.ID{v.Key}
	case *SteeringWheel:
		return []key.ID{v.Keys.Left, v.Keys.Right, v.Keys.Up, v.Keys.Down}
	case *DirectionalSkill:
		return []key.ID{v.Key}
	case *DirectionlessSkill:
		return []key.ID{v.Key}
	case *CancelSkill:
		return []key.ID{v.Key}
	case *TriggerWhenPressedSkill:
		return []key.ID{v.Key}
	case *TriggerWhenDoublePressedSkill:
		return []key.ID{v.Key}
	case *Observation:
		return []key.ID{v.Key}
	case *Sight:
		return []key.ID{v.Key}
	case *Fire:
		return []key.ID{v.Key}
	case *Macro:
		return []key.ID{v.Key}
	case *RepeatTap:
		return []key.ID{v.Key}
	case *MultipleTap:
		return []key.ID{v.Key}
	case *Script:
		return []key.ID{v.Key}
	case *KeyInput:
		return []key.ID{v.Key}
	case *DirectionPad:
		return v.Bind.Keys()
	case *PadCastSpell:
		return append([]key.ID{v.Key}, v.PadBind.Keys()...)
	}
	return nil
}

// Keys returns the buttons of a Button binding and nothing for a JoyStick.
func (d DirectionBinding) Keys() []key.ID {
	if d.Kind != DirectionButton {
		return nil
	}
	return []key.ID{d.Up, d.Down, d.Left, d.Right}
}
