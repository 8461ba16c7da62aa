// Package skill turns decoded mapping entries into registry bindings.
//
// Each archetype is a small state machine whose handlers run under the
// engine lock and emit device commands through Env. Anchors are converted
// from the mapping canvas to device pixels once, when the mapping is bound.
//
// Cancelable archetypes (DirectionalSkill and DirectionlessSkill) join the
// registry's cancel groups; a CancelSkill evicts them all at once, lifts the
// pointers they left down and sweeps its own pointer across the cancel
// button. TriggerWhenDoublePressedSkill keeps its armed flag in the runtime
// state so that a cancel can disarm it too.
//
// Work that has to wait between emissions, such as the cancel sweep or a
// MultipleTap sequence, runs on the macro runner and re-enters the engine
// through Env.Do for each emission.
package skill
