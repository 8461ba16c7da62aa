// Package keymap defines mapping files: the set of key mappings a user
// authors for one game, and how they are read.
//
// A mapping file is a MappingConfig with a relative canvas size, a title and
// a list of entries. Each entry is a tagged union discriminated by its "type"
// field:
//
//	{
//	  "relativeSize": {"w": 1280, "h": 720},
//	  "title": "example",
//	  "list": [
//	    {"type": "Tap", "key": "KeyF", "pointerId": 3, "posX": 650, "posY": 650, "time": 80},
//	    {"type": "SteeringWheel", "key": {"left": "KeyA", "right": "KeyD", "up": "KeyW", "down": "KeyS"},
//	     "pointerId": 1, "posX": 180, "posY": 560, "offset": 100}
//	  ]
//	}
//
// Files may be JSON, YAML or TOML. Every format is normalized to JSON, older
// field spellings are migrated, and the result is decoded with gjson. Shape
// errors are reported as *EntryError and *ParseError values; the macro steps
// of a Macro entry are kept raw and only parsed when they run.
package keymap
