// Package macro runs the step lists of Macro mappings.
//
// A macro list is a JSON array of steps:
//
//	[
//	  {"type": "touch", "args": ["down", 5, ["mouse", -10], 600]},
//	  {"type": "sleep", "args": [1000]},
//	  {"type": "touch", "args": ["up", 5, ["mouse", 10], 600]},
//	  {"type": "swipe", "args": ["default", 5, [[100, 100], ["mouse", "mouse"]], 300]},
//	  {"type": "key-input-mode", "args": ["on"]},
//	  {"type": "lua", "args": ["mask.touch('default', 2, 640, 360)"]}
//	]
//
// Positions are written on the mapping's relative canvas. A component may
// also be "mouse" (the live pointer position on that axis) or ["mouse", n]
// (the pointer position plus n canvas units).
//
// Steps are parsed as they run. The first malformed step aborts the rest of
// its list with a *StepError; nothing else is affected.
//
// Every run happens on a Runner goroutine. A step that touches engine state
// does so inside Host.Do, and sleeps happen outside it, so a sleeping macro
// never holds up other input.
package macro
