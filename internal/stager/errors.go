package stager

import (
	"fmt"

	"github.com/syou6162/diffchunk/internal/executor"
)

// ErrorType represents the type of error that occurred
type ErrorType int

const (
	// ErrorTypeUnknown is for unknown errors
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeParsing is when a patch or an argument cannot be read
	ErrorTypeParsing
	// ErrorTypeGitCommand is for git command failures
	ErrorTypeGitCommand
	// ErrorTypeHunkNotFound is when a hunk reference matches nothing
	ErrorTypeHunkNotFound
	// ErrorTypeInvalidArgument is for invalid arguments
	ErrorTypeInvalidArgument
	// ErrorTypeDependencyMissing is when a required command is missing
	ErrorTypeDependencyMissing
	// ErrorTypeIO is for I/O errors
	ErrorTypeIO
	// ErrorTypePatchApplication is when applying a patch fails
	ErrorTypePatchApplication
)

// String returns the error type name
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeParsing:
		return "Parsing"
	case ErrorTypeGitCommand:
		return "GitCommand"
	case ErrorTypeHunkNotFound:
		return "HunkNotFound"
	case ErrorTypeInvalidArgument:
		return "InvalidArgument"
	case ErrorTypeDependencyMissing:
		return "DependencyMissing"
	case ErrorTypeIO:
		return "IO"
	case ErrorTypePatchApplication:
		return "PatchApplication"
	default:
		return "Unknown"
	}
}

// StagerError is returned by the stager and carries the failing hunk or
// command in Context.
type StagerError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]interface{}
}

// Sentinels for errors.Is
var (
	ErrParsing          = &StagerError{Type: ErrorTypeParsing}
	ErrGitCommand       = &StagerError{Type: ErrorTypeGitCommand}
	ErrHunkNotFound     = &StagerError{Type: ErrorTypeHunkNotFound}
	ErrInvalidArgument  = &StagerError{Type: ErrorTypeInvalidArgument}
	ErrDependency       = &StagerError{Type: ErrorTypeDependencyMissing}
	ErrIO               = &StagerError{Type: ErrorTypeIO}
	ErrPatchApplication = &StagerError{Type: ErrorTypePatchApplication}
)

// Error implements the error interface
func (e *StagerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap allows errors.Is and errors.As to work
func (e *StagerError) Unwrap() error {
	return e.Err
}

// Is allows comparison with error types
func (e *StagerError) Is(target error) bool {
	t, ok := target.(*StagerError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewStagerError creates a new StagerError
func NewStagerError(errType ErrorType, message string, err error) *StagerError {
	return &StagerError{
		Type:    errType,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *StagerError) WithContext(key string, value interface{}) *StagerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewParsingError creates a parsing error
func NewParsingError(what string, err error) *StagerError {
	return NewStagerError(ErrorTypeParsing,
		fmt.Sprintf("failed to parse %s", what), err).
		WithContext("parsing", what)
}

// NewGitCommandError creates a git command error. The command's stderr is
// folded into the message when there is any.
func NewGitCommandError(command string, err error) *StagerError {
	msg := fmt.Sprintf("git %s failed", command)
	if stderr := executor.Stderr(err); stderr != "" {
		msg += ": " + stderr
	}
	return NewStagerError(ErrorTypeGitCommand, msg, err).
		WithContext("command", command)
}

// NewHunkNotFoundError creates a hunk not found error
func NewHunkNotFoundError(path, ref string) *StagerError {
	desc := "hunk " + ref
	if path != "" {
		desc = fmt.Sprintf("hunk %s in %s", ref, path)
	}
	return NewStagerError(ErrorTypeHunkNotFound,
		fmt.Sprintf("not found: %s", desc), nil).
		WithContext("path", path).
		WithContext("hunk", ref)
}

// NewInvalidArgumentError creates an invalid argument error
func NewInvalidArgumentError(description string, err error) *StagerError {
	return NewStagerError(ErrorTypeInvalidArgument,
		description, err).
		WithContext("description", description)
}

// NewDependencyMissingError creates a dependency missing error
func NewDependencyMissingError(dependency string) *StagerError {
	return NewStagerError(ErrorTypeDependencyMissing,
		fmt.Sprintf("%s command not found", dependency), nil).
		WithContext("dependency", dependency)
}

// NewIOError creates an I/O error
func NewIOError(operation string, err error) *StagerError {
	return NewStagerError(ErrorTypeIO,
		fmt.Sprintf("I/O error during %s", operation), err).
		WithContext("operation", operation)
}

// NewPatchApplicationError creates a patch application error
func NewPatchApplicationError(hunkID string, err error) *StagerError {
	return NewStagerError(ErrorTypePatchApplication,
		fmt.Sprintf("failed to apply hunk %s", hunkID), err).
		WithContext("hunk_id", hunkID)
}
