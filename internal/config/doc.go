// Package config loads the application configuration.
//
// Settings are merged from three sources, later ones winning:
//
//  1. built-in defaults
//  2. the TOML file given with WithFile
//  3. TOUCHMASK_* environment variables
//
// Explicit Set calls, typically from command-line flags, override all of
// them. Environment names map onto paths by section and camel case:
// TOUCHMASK_ENGINE_TICK_INTERVAL sets engine.tickInterval.
//
// # Example
//
//	[device]
//	width = 2400
//	height = 1080
//
//	[mask]
//	left = 70
//	top = 30
//	width = 1280
//	height = 576
//
//	[transport]
//	kind = "scrcpy"
//	addr = "127.0.0.1:27183"
//
//	[mapping]
//	file = "mappings/pubg.json"
//
// Durations are strings such as "16ms"; bare integers are milliseconds.
//
// Section accessors (Engine, Input, ...) return snapshots and fall back to
// defaults on type errors. Validate reports those errors along with range
// and enum problems as a *ValidationError.
//
// The watcher subpackage reloads the mapping file when it changes.
package config
