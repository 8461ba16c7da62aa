// Package input turns host keyboard and mouse events into touchscreen
// commands for a mirrored device.
//
// # Architecture
//
// The input system consists of several cooperating components:
//
//   - Engine: the event dispatcher. It owns the lock every other component
//     runs under.
//   - Registry (input/registry): one binding per physical input, with
//     down, loop and up handlers and an explicit cancel-group state.
//   - Skills (input/skill): the per-archetype state machines that fill the
//     registry from a mapping file.
//   - Scheduler: runs every active loop handler once per frame.
//   - Modes (input/mode): mapping mode, and key-input passthrough where
//     keys are forwarded to the device as key codes.
//   - Macros (input/macro): down/loop/up step lists run on cooperative
//     goroutines that sleep without holding the lock.
//
// # Event flow
//
// A host event is recorded into the runtime state, offered to the current
// mode, then routed to the registry. OS auto-repeat downs never reach a
// binding. Wheel detents only fire a down and are rate limited per
// direction.
//
// Bindings emit device commands through a device.Emitter, which must not
// block. Positions are device pixels, clamped to the screen.
//
// # Usage
//
//	engine := input.New(queue, input.DefaultConfig(), input.WithLogger(log))
//	defer engine.Close()
//
//	if err := engine.Apply(mapping); err != nil {
//	    return err
//	}
//	go input.NewScheduler(engine).Run(ctx)
//
//	for ev := range events {
//	    engine.HandleKeyEvent(ev)
//	}
package input
