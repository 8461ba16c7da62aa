package macro

import (
	"errors"
	"fmt"
)

// Errors returned by macro runs.
var (
	// ErrUnknownStep indicates a step type with no implementation.
	ErrUnknownStep = errors.New("unknown macro step")

	// ErrInvalidArgs indicates step arguments of the wrong shape.
	ErrInvalidArgs = errors.New("invalid macro step arguments")

	// ErrScript indicates a lua step that failed at run time.
	ErrScript = errors.New("macro script failed")

	// ErrStopped indicates the engine was closed during the run.
	ErrStopped = errors.New("macro host stopped")
)

// StepError describes the step that aborted a list.
type StepError struct {
	// List names the list: "down", "loop" or "up".
	List string
	// Index is the position of the step in the list.
	Index int
	// Type is the step's type.
	Type string
	// Err wraps ErrUnknownStep, ErrInvalidArgs or ErrScript.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("macro %s list, step %d (%s): %v", e.List, e.Index, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

func invalidArgs(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}
