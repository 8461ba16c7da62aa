// Package lua runs sandboxed Lua chunks for the lua macro step and Script
// mappings.
//
// Only the base, string, table and math libraries are opened. Loaders are
// removed, require resolves only whitelisted modules, and print goes to the
// log. Each chunk runs under a context that is cancelled when the macro run
// stops or the execution timeout passes.
//
// # The mask module
//
//	mask.touch("down", 1, 640, 360)
//	mask.sleep(50)
//	mask.touch("move", 1, {"mouse", 20}, "mouse")
//	mask.touch("up", 1, 640, 360)
//
//	local x, y = mask.pointer()
//	mask.swipe("default", 2, {{100, 100}, {300, 100}}, 16)
//	mask.keyinput(true)
package lua
