package keymap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
)

func TestLoadJSONAllArchetypes(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.json"))
	require.NoError(t, err)

	assert.Equal(t, "full", cfg.Title)
	assert.Equal(t, coord.Size{W: 1280, H: 720}, cfg.RelativeSize)
	require.Len(t, cfg.List, 18)

	tap := cfg.List[0].(*Tap)
	assert.Equal(t, key.ID("KeyF"), tap.Key)
	assert.Equal(t, DefaultTapTime, tap.Time)
	assert.Equal(t, "pick up", tap.Note)
	assert.Equal(t, Position{X: 650, Y: 650}, tap.Pos)

	swipe := cfg.List[1].(*Swipe)
	assert.Equal(t, []Position{{100, 100}, {300, 100}}, swipe.Path)
	assert.Equal(t, 200, swipe.Interval)

	wheel := cfg.List[2].(*SteeringWheel)
	assert.Equal(t, WheelKeys{Left: "KeyA", Right: "KeyD", Up: "KeyW", Down: "KeyS"}, wheel.Keys)
	assert.Equal(t, 100.0, wheel.Offset)

	trig := cfg.List[6].(*TriggerWhenPressedSkill)
	assert.True(t, trig.Directional)
	assert.Equal(t, 150.0, trig.RangeOrTime)

	sight := cfg.List[9].(*Sight)
	assert.Equal(t, 1.2, sight.ScaleX)

	fire := cfg.List[10].(*Fire)
	assert.Equal(t, key.MouseLeft, fire.Key)
	assert.True(t, fire.Drag)
	assert.Equal(t, 1.0, fire.ScaleY)

	macro := cfg.List[11].(*Macro)
	require.Len(t, macro.Down, 2)
	assert.Equal(t, "touch", macro.Down[0].Type)
	assert.Equal(t, int64(100), gjson.Get(macro.Down[0].Args, "2").Int())
	assert.Nil(t, macro.Loop)
	require.Len(t, macro.Up, 1)

	rt := cfg.List[12].(*RepeatTap)
	assert.Equal(t, 40, rt.Time)
	assert.Equal(t, 100, rt.Interval)

	mt := cfg.List[13].(*MultipleTap)
	assert.Equal(t, []TapItem{
		{Pos: Position{1, 2}, Time: 30, Wait: 50},
		{Pos: Position{3, 4}, Time: DefaultTapTime},
	}, mt.Items)

	script := cfg.List[14].(*Script)
	assert.Contains(t, script.Down, "mask.touch")

	assert.Equal(t, key.ID("Enter"), cfg.List[15].(*KeyInput).Key)
	assert.Equal(t, []key.ID{"KeyA", "KeyD", "KeyW", "KeyS"}, Keys(wheel))

	pad := cfg.List[16].(*DirectionPad)
	assert.Equal(t, 15, pad.PointerID)
	assert.Equal(t, 100, pad.InitialDuration)
	assert.Equal(t, 120.0, pad.MaxOffsetX)
	assert.Equal(t, DirectionBinding{Kind: DirectionJoyStick, X: key.LeftStickX, Y: key.LeftStickY}, pad.Bind)
	assert.Empty(t, Keys(pad))

	cast := cfg.List[17].(*PadCastSpell)
	assert.Equal(t, key.PadRightTrigger, cast.Key)
	assert.Equal(t, ReleaseOnSecondPress, cast.ReleaseMode)
	assert.Equal(t, 150.0, cast.DragRadius)
	assert.True(t, cast.BlockDirectionPad)
	assert.Equal(t, []key.ID{key.PadRightTrigger, key.PadDPadUp, key.PadDPadDown, key.PadDPadLeft, key.PadDPadRight}, Keys(cast))
}

func TestLoadYAMLAndTOML(t *testing.T) {
	yml, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)
	require.Len(t, yml.List, 2)
	assert.Equal(t, key.ID("KeyF"), yml.List[0].(*Tap).Key)
	macro := yml.List[1].(*Macro)
	require.Len(t, macro.Down, 1)
	assert.Equal(t, "mouse", gjson.Get(macro.Down[0].Args, "2.1.1").String())

	tml, err := Load(filepath.Join("testdata", "full.toml"))
	require.NoError(t, err)
	require.Len(t, tml.List, 2)
	assert.Equal(t, "toml", tml.Title)
	assert.Equal(t, key.ID("KeyW"), tml.List[1].(*SteeringWheel).Keys.Up)
}

func TestEntryErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		field string
		is    error
	}{
		{"unknown type", `{"type":"Teleport","key":"KeyA"}`, "type", ErrUnknownType},
		{"missing type", `{"key":"KeyA"}`, "type", ErrMissingField},
		{"missing key", `{"type":"Tap","pointerId":1,"posX":1,"posY":1}`, "key", ErrMissingField},
		{"missing anchor", `{"type":"Tap","key":"KeyA","pointerId":1,"posX":1}`, "posY", ErrMissingField},
		{"ill-typed range", `{"type":"DirectionalSkill","key":"KeyA","pointerId":1,"posX":1,"posY":1,"range":"far"}`, "range", ErrInvalidField},
		{"short swipe", `{"type":"Swipe","key":"KeyA","pointerId":1,"posX":1,"posY":1,"pos":[{"x":1,"y":1}]}`, "pos", ErrInvalidField},
		{"wheel key", `{"type":"SteeringWheel","pointerId":1,"posX":1,"posY":1,"offset":5,"key":{"left":"KeyA","right":"KeyD","up":"KeyW"}}`, "key.down", ErrMissingField},
		{"macro list", `{"type":"Macro","key":"KeyA","macro":{"down":{"type":"sleep"}}}`, "macro.down", ErrInvalidField},
		{"repeat interval", `{"type":"RepeatTap","key":"KeyA","pointerId":1,"posX":1,"posY":1,"interval":0}`, "interval", ErrInvalidField},
		{"negative pointer", `{"type":"Tap","key":"KeyA","pointerId":-1,"posX":1,"posY":1}`, "pointerId", ErrInvalidField},
		{"negative optional pointer", `{"type":"KeyInput","key":"KeyA","pointerId":-3}`, "pointerId", ErrInvalidField},
		{"pad offset", `{"type":"DirectionPad","pointerId":1,"posX":1,"posY":1,"maxOffsetX":0,"maxOffsetY":5,"bind":{"type":"JoyStick","x":"LeftStickX","y":"LeftStickY"}}`, "maxOffsetX", ErrInvalidField},
		{"pad bind type", `{"type":"DirectionPad","pointerId":1,"posX":1,"posY":1,"maxOffsetX":5,"maxOffsetY":5,"bind":{"type":"Mouse"}}`, "bind.type", ErrInvalidField},
		{"pad axis", `{"type":"DirectionPad","pointerId":1,"posX":1,"posY":1,"maxOffsetX":5,"maxOffsetY":5,"bind":{"type":"JoyStick","x":"Throttle","y":"LeftStickY"}}`, "bind.x", ErrInvalidField},
		{"pad button", `{"type":"DirectionPad","pointerId":1,"posX":1,"posY":1,"maxOffsetX":5,"maxOffsetY":5,"bind":{"type":"Button","up":"KeyW","down":"KeyS","left":"KeyA"}}`, "bind.right", ErrMissingField},
		{"cast release mode", `{"type":"PadCastSpell","key":"G-South","pointerId":1,"posX":1,"posY":1,"dragRadius":5,"releaseMode":"Never","padBind":{"type":"JoyStick","x":"RightStickX","y":"RightStickY"}}`, "releaseMode", ErrInvalidField},
		{"cast radius", `{"type":"PadCastSpell","key":"G-South","pointerId":1,"posX":1,"posY":1,"padBind":{"type":"JoyStick","x":"RightStickX","y":"RightStickY"}}`, "dragRadius", ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"relativeSize":{"w":100,"h":100},"list":[{"type":"Tap","key":"KeyB","pointerId":0,"posX":0,"posY":0},` + tt.entry + `]}`
			_, err := Decode([]byte(doc))
			require.Error(t, err)

			var ee *EntryError
			require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
			assert.Equal(t, 1, ee.Index)
			assert.Equal(t, tt.field, ee.Field)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestInvalidFieldIsMissingField(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidField, ErrMissingField)
}

func TestDocumentErrors(t *testing.T) {
	_, err := Decode([]byte(`{"list":[]}`))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = Decode([]byte("{\n  \"title\": \"x\",\n  \"list\": [,]\n}"))
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)

	_, err = Parse("bad.toml", FormatTOML, []byte("title = \n"))
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)

	_, err = Load("mapping.ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestMigrateLegacyDocument(t *testing.T) {
	legacy := `{
		"relative_size": {"w": 1280, "h": 720},
		"list": [
			{"type": "SingleTap", "key": "KeyF", "pointer_id": 3, "pos_x": 10, "pos_y": 20},
			{"type": "DirectionPad", "key": ["KeyA", "KeyD", "KeyW", "KeyS"], "pointer_id": 1, "pos_x": 1, "pos_y": 2, "offset": 50},
			{"type": "Macro", "key": "KeyM", "macro": [{"type": "sleep", "args": [10]}]}
		]
	}`

	doc, changes, err := Migrate(legacy)
	require.NoError(t, err)
	assert.NotEmpty(t, changes)
	assert.True(t, gjson.Get(doc, "relativeSize.w").Exists())
	assert.False(t, gjson.Get(doc, "list.0.pointer_id").Exists())

	cfg, err := Decode([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, cfg.List, 3)

	tap := cfg.List[0].(*Tap)
	assert.Equal(t, 3, tap.PointerID)
	assert.Equal(t, Position{10, 20}, tap.Pos)

	wheel := cfg.List[1].(*SteeringWheel)
	assert.Equal(t, key.ID("KeyS"), wheel.Keys.Down)

	macro := cfg.List[2].(*Macro)
	require.Len(t, macro.Down, 1)
	assert.Equal(t, "sleep", macro.Down[0].Type)
}

func TestMigrateKeepsCurrentSpelling(t *testing.T) {
	doc := `{"relativeSize":{"w":1,"h":1},"list":[{"type":"Tap","pointerId":2,"pointer_id":9}]}`
	out, _, err := Migrate(doc)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(out, "list.0.pointerId").Int())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
