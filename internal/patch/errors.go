package patch

import (
	"fmt"
)

// ErrorType represents the kind of parse failure
type ErrorType int

const (
	// ErrorTypeUnknown is for unknown errors
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeMalformedPatch is when the text matches neither patch dialect
	ErrorTypeMalformedPatch
	// ErrorTypeMalformedFileSection is when a recognized file section is broken
	ErrorTypeMalformedFileSection
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeMalformedPatch:
		return "MalformedPatch"
	case ErrorTypeMalformedFileSection:
		return "MalformedFileSection"
	default:
		return "Unknown"
	}
}

// ParseError is returned by ReadPatch
type ParseError struct {
	Type    ErrorType
	Message string
	// Line is the 1-based line of the input where parsing failed
	Line    int
	Err     error
	Context map[string]interface{}
}

// Sentinels for errors.Is
var (
	ErrMalformedPatch       = &ParseError{Type: ErrorTypeMalformedPatch}
	ErrMalformedFileSection = &ParseError{Type: ErrorTypeMalformedFileSection}
)

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to work
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is allows comparison with error types
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewParseError creates a new ParseError
func NewParseError(errType ErrorType, line int, message string, err error) *ParseError {
	return &ParseError{
		Type:    errType,
		Message: message,
		Line:    line,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *ParseError) WithContext(key string, value interface{}) *ParseError {
	e.Context[key] = value
	return e
}

// NewMalformedPatchError creates an error for text that is not a patch
func NewMalformedPatchError(description string) *ParseError {
	return NewParseError(ErrorTypeMalformedPatch, 0,
		fmt.Sprintf("malformed patch: %s", description), nil)
}

// NewMalformedFileSectionError creates an error for a broken file section
func NewMalformedFileSectionError(line int, path, description string) *ParseError {
	return NewParseError(ErrorTypeMalformedFileSection, line,
		fmt.Sprintf("malformed file section %s: %s", path, description), nil).
		WithContext("path", path)
}
