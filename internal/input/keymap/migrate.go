package keymap

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// typeAliases maps archetype names written by older mapping editors to the
// current names.
var typeAliases = map[string]Type{
	"SingleTap":      TypeTap,
	"DirectionPad":   TypeSteeringWheel,
	"MouseCastSpell": TypeDirectionalSkill,
	"CancelCast":     TypeCancelSkill,
	"Fps":            TypeSight,
	"RawInput":       TypeKeyInput,
}

// fieldAliases maps snake_case field names to their current spelling.
var fieldAliases = [][2]string{
	{"pointer_id", "pointerId"},
	{"pos_x", "posX"},
	{"pos_y", "posY"},
	{"range_or_time", "rangeOrTime"},
	{"scale_x", "scaleX"},
	{"scale_y", "scaleY"},
}

// Migrate rewrites legacy spellings in a JSON mapping document. It returns
// the migrated document and a description of each change made.
func Migrate(doc string) (string, []string, error) {
	m := &migration{doc: doc}

	m.rename("relative_size", "relativeSize")

	n := len(gjson.Get(m.doc, "list").Array())
	for i := 0; i < n; i++ {
		prefix := "list." + strconv.Itoa(i) + "."

		for _, f := range fieldAliases {
			m.rename(prefix+f[0], prefix+f[1])
		}

		typ := gjson.Get(m.doc, prefix+"type").String()
		if to, ok := typeAliases[typ]; ok {
			m.set(prefix+"type", string(to), fmt.Sprintf("%stype: %s -> %s", prefix, typ, to))
			typ = string(to)
		}

		switch Type(typ) {
		case TypeMacro:
			// A bare array used to mean the down list.
			if v := gjson.Get(m.doc, prefix+"macro"); v.IsArray() {
				m.setRaw(prefix+"macro", `{"down":`+v.Raw+`}`, prefix+"macro: list -> {down}")
			}
		case TypeSteeringWheel:
			// [left, right, up, down]
			if v := gjson.Get(m.doc, prefix+"key"); v.IsArray() && len(v.Array()) == 4 {
				k := v.Array()
				raw := fmt.Sprintf(`{"left":%s,"right":%s,"up":%s,"down":%s}`, k[0].Raw, k[1].Raw, k[2].Raw, k[3].Raw)
				m.setRaw(prefix+"key", raw, prefix+"key: list -> {left,right,up,down}")
			}
		}
	}
	return m.doc, m.changes, m.err
}

type migration struct {
	doc     string
	changes []string
	err     error
}

func (m *migration) rename(from, to string) {
	if m.err != nil {
		return
	}
	v := gjson.Get(m.doc, from)
	if !v.Exists() || gjson.Get(m.doc, to).Exists() {
		return
	}
	doc, err := sjson.SetRaw(m.doc, to, v.Raw)
	if err == nil {
		doc, err = sjson.Delete(doc, from)
	}
	if err != nil {
		m.err = fmt.Errorf("migrating %s: %w", from, err)
		return
	}
	m.doc = doc
	m.changes = append(m.changes, from+" -> "+to)
}

func (m *migration) set(path string, value any, change string) {
	if m.err != nil {
		return
	}
	doc, err := sjson.Set(m.doc, path, value)
	if err != nil {
		m.err = fmt.Errorf("migrating %s: %w", path, err)
		return
	}
	m.doc = doc
	m.changes = append(m.changes, change)
}

func (m *migration) setRaw(path, raw, change string) {
	if m.err != nil {
		return
	}
	doc, err := sjson.SetRaw(m.doc, path, raw)
	if err != nil {
		m.err = fmt.Errorf("migrating %s: %w", path, err)
		return
	}
	m.doc = doc
	m.changes = append(m.changes, change)
}
