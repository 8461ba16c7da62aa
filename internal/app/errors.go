package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that an input source asked the application to exit.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrShutdown indicates the application was shut down.
	ErrShutdown = errors.New("application shut down")

	// ErrUnknownTransport indicates an unsupported transport kind.
	ErrUnknownTransport = errors.New("unknown transport kind")

	// ErrUnknownSource indicates an unsupported input source.
	ErrUnknownSource = errors.New("unknown input source")
)

// InitError reports which component failed during bootstrap.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ComponentError represents an error from a running component.
type ComponentError struct {
	Component string // Component name (e.g., "source", "scheduler", "watcher")
	Action    string // Action being performed
	Err       error  // Underlying error
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}
	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RecoveredPanicError wraps a panic value caught in a component goroutine.
type RecoveredPanicError struct {
	Value any
	Stack string
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorList collects multiple errors. It is not safe for concurrent use.
type ErrorList struct {
	errors []error
}

// Add adds an error to the list. Nil errors are ignored.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.errors = append(e.errors, err)
	}
}

// Len returns the number of errors.
func (e *ErrorList) Len() int {
	return len(e.errors)
}

// Error returns a combined error message.
func (e *ErrorList) Error() string {
	if e == nil || len(e.errors) == 0 {
		return ""
	}
	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}
	return fmt.Sprintf("%d errors: first: %v", len(e.errors), e.errors[0])
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.errors
}

// AsError returns nil if there are no errors, otherwise the list.
func (e *ErrorList) AsError() error {
	if e == nil || len(e.errors) == 0 {
		return nil
	}
	return e
}
