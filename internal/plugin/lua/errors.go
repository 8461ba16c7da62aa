package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a chunk outlives its time limit.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrModuleUnavailable is returned by require for modules outside the
	// whitelist.
	ErrModuleUnavailable = errors.New("lua module not available")
)
