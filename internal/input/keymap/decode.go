package keymap

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/touchmask/internal/input/coord"
	"github.com/dshills/touchmask/internal/input/key"
)

// Decode parses a JSON mapping document. Legacy spellings are migrated
// first.
func Decode(data []byte) (*Config, error) {
	return Parse("<input>", FormatJSON, data)
}

func decode(source, doc string) (*Config, error) {
	root := gjson.Parse(doc)
	if !root.IsObject() {
		return nil, &ParseError{Path: source, Message: "mapping document must be an object"}
	}

	cfg := &Config{Title: root.Get("title").String()}

	rs := root.Get("relativeSize")
	w, h := rs.Get("w"), rs.Get("h")
	if w.Type != gjson.Number || h.Type != gjson.Number || w.Int() <= 0 || h.Int() <= 0 {
		return nil, &ParseError{
			Path:    source,
			Message: "relativeSize needs positive w and h",
			Err:     ErrMissingField,
		}
	}
	cfg.RelativeSize = coord.Size{W: int(w.Int()), H: int(h.Int())}

	list := root.Get("list")
	if list.Exists() && list.Type != gjson.Null && !list.IsArray() {
		return nil, &ParseError{Path: source, Message: "list must be an array", Err: ErrInvalidField}
	}

	for i, item := range list.Array() {
		m, err := decodeEntry(i, item)
		if err != nil {
			return nil, err
		}
		cfg.List = append(cfg.List, m)
	}
	return cfg, nil
}

// entry reads typed fields from one list item, remembering the first error.
type entry struct {
	index int
	typ   Type
	obj   gjson.Result
	err   *EntryError
}

func (e *entry) fail(field string, err error) {
	if e.err == nil {
		e.err = &EntryError{Index: e.index, Type: string(e.typ), Field: field, Err: err}
	}
}

func (e *entry) lookup(field string, required bool) (gjson.Result, bool) {
	v := e.obj.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		if required {
			e.fail(field, ErrMissingField)
		}
		return v, false
	}
	return v, true
}

func (e *entry) number(field string, required bool, def float64) float64 {
	v, ok := e.lookup(field, required)
	if !ok {
		return def
	}
	if v.Type != gjson.Number {
		e.fail(field, ErrInvalidField)
		return def
	}
	return v.Float()
}

func (e *entry) integer(field string, required bool, def int) int {
	return int(e.number(field, required, float64(def)))
}

func (e *entry) boolean(field string, def bool) bool {
	v, ok := e.lookup(field, false)
	if !ok {
		return def
	}
	if !v.IsBool() {
		e.fail(field, ErrInvalidField)
		return def
	}
	return v.Bool()
}

func (e *entry) str(field string) string {
	v, ok := e.lookup(field, false)
	if !ok {
		return ""
	}
	if v.Type != gjson.String {
		e.fail(field, ErrInvalidField)
		return ""
	}
	return v.String()
}

func (e *entry) keyAt(v gjson.Result, field string) key.ID {
	if !v.Exists() || v.Type == gjson.Null {
		e.fail(field, ErrMissingField)
		return key.None
	}
	if v.Type != gjson.String {
		e.fail(field, ErrInvalidField)
		return key.None
	}
	id := key.Normalize(v.String())
	if id == key.None {
		e.fail(field, ErrMissingField)
	}
	return id
}

func (e *entry) key() key.ID {
	return e.keyAt(e.obj.Get("key"), "key")
}

// base reads the common fields. Archetypes without an anchor pass
// anchored=false so posX, posY and pointerId become optional. Pointer ids
// are never negative.
func (e *entry) base(anchored bool) Base {
	b := Base{
		Type:      e.typ,
		Note:      e.str("note"),
		PointerID: e.integer("pointerId", anchored, 0),
		Pos: Position{
			X: e.number("posX", anchored, 0),
			Y: e.number("posY", anchored, 0),
		},
	}
	if b.PointerID < 0 {
		e.fail("pointerId", ErrInvalidField)
	}
	return b
}

// positive reads a required number that must be greater than zero.
func (e *entry) positive(field string) float64 {
	v := e.number(field, true, 0)
	if e.err == nil && v <= 0 {
		e.fail(field, ErrInvalidField)
	}
	return v
}

// direction reads a Button or JoyStick binding object.
func (e *entry) direction(field string) DirectionBinding {
	v, ok := e.lookup(field, true)
	if !ok {
		return DirectionBinding{}
	}
	if !v.IsObject() {
		e.fail(field, ErrInvalidField)
		return DirectionBinding{}
	}
	d := DirectionBinding{Kind: DirectionKind(v.Get("type").String())}
	switch d.Kind {
	case DirectionButton:
		d.Up = e.keyAt(v.Get("up"), field+".up")
		d.Down = e.keyAt(v.Get("down"), field+".down")
		d.Left = e.keyAt(v.Get("left"), field+".left")
		d.Right = e.keyAt(v.Get("right"), field+".right")
	case DirectionJoyStick:
		d.X = e.axisAt(v.Get("x"), field+".x")
		d.Y = e.axisAt(v.Get("y"), field+".y")
	default:
		e.fail(field+".type", ErrInvalidField)
	}
	return d
}

func (e *entry) axisAt(v gjson.Result, field string) key.Axis {
	if v.Type != gjson.String {
		e.fail(field, ErrMissingField)
		return ""
	}
	a, ok := key.ParseAxis(v.String())
	if !ok {
		e.fail(field, ErrInvalidField)
	}
	return a
}

func (e *entry) point(v gjson.Result, field, xName, yName string) Position {
	x, y := v.Get(xName), v.Get(yName)
	if x.Type != gjson.Number || y.Type != gjson.Number {
		e.fail(field, ErrInvalidField)
		return Position{}
	}
	return Position{X: x.Float(), Y: y.Float()}
}

func (e *entry) steps(field string) []MacroStep {
	v, ok := e.lookup(field, false)
	if !ok {
		return nil
	}
	if !v.IsArray() {
		e.fail(field, ErrInvalidField)
		return nil
	}
	var out []MacroStep
	for _, s := range v.Array() {
		if !s.IsObject() {
			e.fail(field, ErrInvalidField)
			return nil
		}
		args := s.Get("args").Raw
		if args == "" {
			args = "[]"
		}
		out = append(out, MacroStep{Type: s.Get("type").String(), Args: args})
	}
	return out
}

func decodeEntry(index int, obj gjson.Result) (Mapping, error) {
	e := &entry{index: index, obj: obj}
	if !obj.IsObject() {
		return nil, &EntryError{Index: index, Err: ErrInvalidField}
	}
	t := obj.Get("type")
	if !t.Exists() {
		return nil, &EntryError{Index: index, Field: "type", Err: ErrMissingField}
	}
	e.typ = Type(t.String())

	var m Mapping
	switch e.typ {
	case TypeTap:
		m = &Tap{Base: e.base(true), Key: e.key(), Time: e.integer("time", false, DefaultTapTime)}

	case TypeSwipe:
		s := &Swipe{Base: e.base(true), Key: e.key(), Interval: e.integer("interval", false, 0)}
		pos, ok := e.lookup("pos", true)
		if ok {
			if !pos.IsArray() || len(pos.Array()) < 2 {
				e.fail("pos", ErrInvalidField)
			}
			for _, p := range pos.Array() {
				s.Path = append(s.Path, e.point(p, "pos", "x", "y"))
			}
		}
		m = s

	case TypeSteeringWheel:
		w := &SteeringWheel{Base: e.base(true), Offset: e.number("offset", true, 0)}
		keys, ok := e.lookup("key", true)
		if ok {
			if !keys.IsObject() {
				e.fail("key", ErrInvalidField)
			} else {
				w.Keys = WheelKeys{
					Left:  e.keyAt(keys.Get("left"), "key.left"),
					Right: e.keyAt(keys.Get("right"), "key.right"),
					Up:    e.keyAt(keys.Get("up"), "key.up"),
					Down:  e.keyAt(keys.Get("down"), "key.down"),
				}
			}
		}
		m = w

	case TypeDirectionalSkill:
		m = &DirectionalSkill{Base: e.base(true), Key: e.key(), Range: e.number("range", true, 0)}

	case TypeDirectionlessSkill:
		m = &DirectionlessSkill{Base: e.base(true), Key: e.key()}

	case TypeCancelSkill:
		m = &CancelSkill{Base: e.base(true), Key: e.key()}

	case TypeTriggerWhenPressed:
		m = &TriggerWhenPressedSkill{
			Base:        e.base(true),
			Key:         e.key(),
			Directional: e.boolean("directional", false),
			RangeOrTime: e.number("rangeOrTime", false, 0),
		}

	case TypeTriggerWhenDoublePressed:
		m = &TriggerWhenDoublePressedSkill{Base: e.base(true), Key: e.key(), Range: e.number("range", true, 0)}

	case TypeObservation:
		m = &Observation{Base: e.base(true), Key: e.key(), Scale: e.number("scale", false, 1)}

	case TypeSight:
		m = &Sight{
			Base:   e.base(true),
			Key:    e.key(),
			ScaleX: e.number("scaleX", false, 1),
			ScaleY: e.number("scaleY", false, 1),
		}

	case TypeFire:
		f := &Fire{
			Base:   e.base(true),
			Key:    key.MouseLeft,
			Drag:   e.boolean("drag", false),
			ScaleX: e.number("scaleX", false, 1),
			ScaleY: e.number("scaleY", false, 1),
		}
		if _, ok := e.lookup("key", false); ok {
			f.Key = e.key()
		}
		m = f

	case TypeMacro:
		mc := &Macro{Base: e.base(false), Key: e.key()}
		macro, ok := e.lookup("macro", true)
		if ok {
			if !macro.IsObject() {
				e.fail("macro", ErrInvalidField)
			} else {
				sub := &entry{index: index, typ: e.typ, obj: macro}
				mc.Down = sub.steps("down")
				mc.Loop = sub.steps("loop")
				mc.Up = sub.steps("up")
				if sub.err != nil && e.err == nil {
					sub.err.Field = "macro." + sub.err.Field
					e.err = sub.err
				}
			}
		}
		m = mc

	case TypeRepeatTap:
		rt := &RepeatTap{
			Base:     e.base(true),
			Key:      e.key(),
			Time:     e.integer("time", false, DefaultTapTime),
			Interval: e.integer("interval", true, 0),
		}
		if e.err == nil && rt.Interval <= 0 {
			e.fail("interval", ErrInvalidField)
		}
		m = rt

	case TypeMultipleTap:
		mt := &MultipleTap{Base: e.base(false), Key: e.key()}
		items, ok := e.lookup("items", true)
		if ok {
			if !items.IsArray() || len(items.Array()) == 0 {
				e.fail("items", ErrInvalidField)
			}
			for _, it := range items.Array() {
				sub := &entry{index: index, typ: e.typ, obj: it}
				item := TapItem{
					Pos:  sub.point(it, "items", "posX", "posY"),
					Time: sub.integer("time", false, DefaultTapTime),
					Wait: sub.integer("wait", false, 0),
				}
				if sub.err != nil && e.err == nil {
					e.err = sub.err
				}
				mt.Items = append(mt.Items, item)
			}
		}
		m = mt

	case TypeScript:
		m = &Script{
			Base: e.base(false),
			Key:  e.key(),
			Down: e.str("down"),
			Loop: e.str("loop"),
			Up:   e.str("up"),
		}

	case TypeKeyInput:
		m = &KeyInput{Base: e.base(false), Key: e.key()}

	case TypeDirectionPad:
		d := &DirectionPad{
			Base:            e.base(true),
			InitialDuration: e.integer("initialDuration", false, 0),
			MaxOffsetX:      e.positive("maxOffsetX"),
			MaxOffsetY:      e.positive("maxOffsetY"),
			Bind:            e.direction("bind"),
		}
		if e.err == nil && d.InitialDuration < 0 {
			e.fail("initialDuration", ErrInvalidField)
		}
		m = d

	case TypePadCastSpell:
		c := &PadCastSpell{
			Base:              e.base(true),
			Key:               e.key(),
			ReleaseMode:       CastReleaseMode(e.str("releaseMode")),
			DragRadius:        e.positive("dragRadius"),
			BlockDirectionPad: e.boolean("blockDirectionPad", false),
			PadBind:           e.direction("padBind"),
		}
		switch c.ReleaseMode {
		case "":
			c.ReleaseMode = ReleaseOnRelease
		case ReleaseOnRelease, ReleaseOnSecondPress:
		default:
			e.fail("releaseMode", ErrInvalidField)
		}
		m = c

	default:
		return nil, &EntryError{Index: index, Type: string(e.typ), Field: "type", Err: fmt.Errorf("%w: %q", ErrUnknownType, e.typ)}
	}

	if e.err != nil {
		return nil, e.err
	}
	return m, nil
}
