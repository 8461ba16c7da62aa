package skill

import (
	"fmt"

	"github.com/dshills/touchmask/internal/input/key"
	"github.com/dshills/touchmask/internal/input/keymap"
	"github.com/dshills/touchmask/internal/input/registry"
)

// Bind clears the registry and installs one binding per mapping entry, plus
// the plain left click unless the mapping claims M0.
//
// On error the registry is left cleared.
func Bind(env *Env, cfg *keymap.Config) error {
	env.Registry.Clear()
	env.Runtime.Reset()
	env.reset(cfg.RelativeSize)

	var fires []*keymap.Fire
	owner := make(map[key.ID]int)
	for i, m := range cfg.List {
		for _, id := range keymap.Keys(m) {
			if prev, ok := owner[id]; ok {
				env.Log.Warn().Str("key", id.String()).Int("entry", i).Int("replaces", prev).Msg("key bound twice")
			}
			owner[id] = i
		}

		var err error
		switch v := m.(type) {
		case *keymap.Tap:
			bindTap(env, v)
		case *keymap.Swipe:
			bindSwipe(env, v)
		case *keymap.SteeringWheel:
			bindWheel(env, i, v)
		case *keymap.DirectionalSkill:
			bindDirectional(env, v)
		case *keymap.DirectionlessSkill:
			bindDirectionless(env, v)
		case *keymap.CancelSkill:
			bindCancel(env, v)
		case *keymap.TriggerWhenPressedSkill:
			bindTriggerWhenPressed(env, v)
		case *keymap.TriggerWhenDoublePressedSkill:
			bindDoublePress(env, v)
		case *keymap.Observation:
			bindObservation(env, v)
		case *keymap.Sight:
			err = bindSight(env, i, v)
		case *keymap.Fire:
			fires = append(fires, v)
		case *keymap.Macro:
			bindMacro(env, v)
		case *keymap.RepeatTap:
			bindRepeatTap(env, v)
		case *keymap.MultipleTap:
			bindMultipleTap(env, v)
		case *keymap.Script:
			err = bindScript(env, i, v)
		case *keymap.KeyInput:
			bindKeyInput(env, v)
		case *keymap.DirectionPad:
			bindDirectionPad(env, i, v)
		case *keymap.PadCastSpell:
			bindPadCast(env, v)
		default:
			err = &keymap.EntryError{Index: i, Type: string(m.Common().Type), Err: keymap.ErrUnknownType}
		}
		if err != nil {
			env.Registry.Clear()
			env.reset(cfg.RelativeSize)
			return err
		}
	}

	if len(fires) > 1 {
		env.Registry.Clear()
		env.reset(cfg.RelativeSize)
		return fmt.Errorf("%w: more than one Fire entry", keymap.ErrInvalidField)
	}
	if len(fires) == 1 {
		if env.sight == nil {
			env.Log.Warn().Str("key", fires[0].Key.String()).Msg("fire entry without a sight is ignored")
		} else {
			env.sight.setFire(fires[0])
		}
	}

	if !env.Registry.Has(key.MouseLeft) {
		bindClick(env)
	}

	env.Log.Debug().
		Str("title", cfg.Title).
		Int("entries", len(cfg.List)).
		Int("bindings", env.Registry.Len()).
		Msg("mapping bound")
	return nil
}

func bindKeyInput(env *Env, m *keymap.KeyInput) {
	env.Registry.Register(m.Key, registry.Binding{
		Down: func() { env.KeyInput(true) },
	})
}
