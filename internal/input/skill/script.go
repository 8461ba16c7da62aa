package skill

import (
	"sync/atomic"

	"github.com/tidwall/sjson"

	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/macro"
	"github.com/dshills/touchmask/internal/input/registry"
)

func bindMacro(env *Env, m *keymap.Macro) {
	env.Registry.Register(m.Key, macroBinding(env, m.Key, m.Down, m.Loop, m.Up))
}

func macroBinding(env *Env, id key.ID, down, loop, up []keymap.MacroStep) registry.Binding {
	var b registry.Binding
	// down, loop and up runs of one binding never overlap
	seq := env.interp.Sequence(id)
	if len(down) > 0 {
		b.Down = func() { seq.Start("down", down) }
	}
	if len(loop) > 0 {
		inFlight := new(atomic.Bool)
		b.Loop = func() { seq.StartLoop(loop, inFlight) }
	}
	if len(up) > 0 {
		b.Up = func() { seq.Start("up", up) }
	}
	return b
}

// bindScript runs each Lua source as a single-step macro list.
func bindScript(env *Env, i int, m *keymap.Script) error {
	var lists [3][]keymap.MacroStep
	for n, src := range []string{m.Down, m.Loop, m.Up} {
		if src == "" {
			continue
		}
		args, err := sjson.Set("[]", "-1", src)
		if err != nil {
			return &keymap.EntryError{Index: i, Type: string(keymap.TypeScript), Field: "script", Err: err}
		}
		lists[n] = []keymap.MacroStep{{Type: macro.StepLua, Args: args}}
	}
	env.Registry.Register(m.Key, macroBinding(env, m.Key, lists[0], lists[1], lists[2]))
	return nil
}
