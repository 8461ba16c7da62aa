package keymap

import (
	"errors"
	"fmt"
)

// Errors returned while decoding mapping files.
var (
	// ErrUnknownType indicates an entry whose "type" is not a known archetype.
	ErrUnknownType = errors.New("unknown mapping type")

	// ErrMissingField indicates a required field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField indicates a field of the wrong type or out of range.
	// It wraps ErrMissingField: an unusable field is as good as absent.
	ErrInvalidField = fmt.Errorf("invalid field: %w", ErrMissingField)

	// ErrUnsupportedFormat indicates a file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported mapping file format")
)

// ParseError represents an error while parsing a mapping file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// EntryError describes a malformed entry of the mapping list.
type EntryError struct {
	// Index is the position of the entry in the list.
	Index int
	// Type is the entry's "type", if it had one.
	Type string
	// Field names the offending field, if any.
	Field string
	// Err is ErrUnknownType, ErrMissingField or ErrInvalidField.
	Err error
}

// Error implements the error interface.
func (e *EntryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mapping entry %d (%s): field %q: %v", e.Index, e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("mapping entry %d (%s): %v", e.Index, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *EntryError) Unwrap() error {
	return e.Err
}
