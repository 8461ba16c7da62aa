// Package device defines the commands the mapping engine emits toward the
// mirrored device and the contracts for delivering them.
//
// # Commands
//
// Touch, Swipe, SendKey and SetClipboard are plain values in device pixel
// space. They carry no identity and no reply; the engine never waits on them.
//
// # Delivery
//
// The engine hands commands to an Emitter, which must not block. Queue is the
// production Emitter: it keeps one ordered lane per pointer id (plus one for
// key and clipboard commands) and drives a Transport from each lane's own
// goroutine, so a long Touch{Default} on one pointer never delays another.
// Recorder is a synchronous Emitter and Transport for tests.
package device
