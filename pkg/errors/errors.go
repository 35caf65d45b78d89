package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks
var (
	// ErrSourceUnavailable is returned when no candidate log path can be opened.
	ErrSourceUnavailable = errors.New("log source unavailable")

	// ErrMalformedLine is returned when a line lacks an action or protocol.
	ErrMalformedLine = errors.New("malformed line")

	// ErrRotationDetected is reported when the tailed file changed identity or shrank.
	ErrRotationDetected = errors.New("rotation detected")

	// ErrInvalidInput is returned when user or config input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInternal is returned when an internal error occurs.
	ErrInternal = errors.New("internal error")
)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// SourceUnavailableError reports that none of the candidate log paths could
// be opened for reading.
type SourceUnavailableError struct {
	*BaseError
	Tried []string
}

// NewSourceUnavailableError creates a new source unavailable error.
func NewSourceUnavailableError(tried []string, cause error) *SourceUnavailableError {
	if cause == nil {
		cause = ErrSourceUnavailable
	}
	return &SourceUnavailableError{
		BaseError: &BaseError{
			code:    CodeSourceUnavailable,
			message: "no readable log file",
			cause:   cause,
			stack:   captureStack(1),
		},
		Tried: append([]string(nil), tried...),
	}
}

// Error implements the error interface.
func (e *SourceUnavailableError) Error() string {
	if len(e.Tried) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s (tried: %s)", e.message, strings.Join(e.Tried, ", "))
}

// Is lets errors.Is match the sentinel.
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// MalformedLineError reports a line that could not be turned into an entry.
type MalformedLineError struct {
	*BaseError
	Reason string
	Line   string
}

// NewMalformedLineError creates a new malformed line error.
func NewMalformedLineError(reason, line string) *MalformedLineError {
	return &MalformedLineError{
		BaseError: &BaseError{
			code:    CodeMalformedLine,
			message: reason,
			cause:   ErrMalformedLine,
		},
		Reason: reason,
		Line:   line,
	}
}

// Error implements the error interface.
func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed line: %s", e.Reason)
}

// RotationError describes a detected rotation or truncation of the tailed file.
type RotationError struct {
	*BaseError
	Path      string
	Truncated bool
}

// NewRotationError creates a new rotation error.
func NewRotationError(path string, truncated bool) *RotationError {
	message := "file replaced"
	if truncated {
		message = "file truncated"
	}
	return &RotationError{
		BaseError: &BaseError{
			code:    CodeRotationDetected,
			message: message,
			cause:   ErrRotationDetected,
		},
		Path:      path,
		Truncated: truncated,
	}
}

// Error implements the error interface.
func (e *RotationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.message)
}

// ReadError reports a failed read of the tailed file. The tailer keeps its
// handle and retries on the next poll.
type ReadError struct {
	*BaseError
	Path string
}

// NewReadError creates a new read error.
func NewReadError(path string, cause error) *ReadError {
	return &ReadError{
		BaseError: &BaseError{
			code:    CodeReadError,
			message: "read failed",
			cause:   cause,
		},
		Path: path,
	}
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.message)
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
			cause:   ErrInvalidInput,
			stack:   captureStack(1),
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// NotFoundError reports a missing or disabled resource.
type NotFoundError struct {
	*BaseError
	Resource string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: resource + " not found",
			cause:   ErrNotFound,
		},
		Resource: resource,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return e.message
}

// InternalError represents an internal error.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	if message == "" {
		message = "internal error"
	}
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
			stack:   captureStack(1),
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
			stack:   captureStack(1),
		},
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// New creates a new error with a message.
func New(message string) error {
	return &BaseError{
		code:    CodeInternal,
		message: message,
		stack:   captureStack(1),
	}
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}
