// Package errors defines the error taxonomy shared by every layer of the
// bridge. Each failure carries a stable kind string so tool results can name
// the originating condition without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error kinds
const (
	// ErrInvalidArgument is returned when a tool argument violates its schema.
	ErrInvalidArgument = "invalid_argument"

	// ErrDisconnected is returned when no extension connection is active, or
	// the connection was lost while a call was in flight.
	ErrDisconnected = "disconnected"

	// ErrTimeout is returned when a call deadline expired without a response.
	ErrTimeout = "timeout"

	// ErrExtension is returned when the extension answered with an error frame.
	ErrExtension = "extension_error"

	// ErrNotConfigured is returned when required environment is absent.
	ErrNotConfigured = "not_configured"

	// ErrInvalidName is returned when a script name fails validation.
	ErrInvalidName = "invalid_name"

	// ErrNotFound is returned when a script or monitor session does not exist.
	ErrNotFound = "not_found"

	// ErrNotExecutable is returned when a script file is not executable.
	ErrNotExecutable = "not_executable"

	// ErrInvalidArgs is returned when script arguments are not a JSON array of strings.
	ErrInvalidArgs = "invalid_args"

	// ErrExecutionFailed is returned when a script exited with a non-zero status.
	ErrExecutionFailed = "execution_failed"

	// ErrIO is returned when a file operation failed.
	ErrIO = "io_error"

	// ErrProtocol is returned for unparseable frames or unknown actions.
	ErrProtocol = "protocol_error"
)

// Error represents an error in the bridge.
type Error struct {
	// Type is the error kind, one of the constants above
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewDisconnectedError creates a new disconnected error
func NewDisconnectedError(message string) *Error {
	return NewError(ErrDisconnected, message, nil)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string) *Error {
	return NewError(ErrTimeout, message, nil)
}

// NewExtensionError creates an error carrying the code and message reported
// by the extension in an error frame.
func NewExtensionError(code, message string) *Error {
	return NewError(ErrExtension, fmt.Sprintf("extension reported %s: %s", code, message), nil)
}

// NewNotConfiguredError creates a new not configured error
func NewNotConfiguredError(message string) *Error {
	return NewError(ErrNotConfigured, message, nil)
}

// NewInvalidNameError creates a new invalid name error
func NewInvalidNameError(message string) *Error {
	return NewError(ErrInvalidName, message, nil)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *Error {
	return NewError(ErrNotFound, message, cause)
}

// NewNotExecutableError creates a new not executable error
func NewNotExecutableError(message string) *Error {
	return NewError(ErrNotExecutable, message, nil)
}

// NewInvalidArgsError creates a new invalid script args error
func NewInvalidArgsError(message string, cause error) *Error {
	return NewError(ErrInvalidArgs, message, cause)
}

// NewExecutionFailedError creates a new execution failed error
func NewExecutionFailedError(message string, cause error) *Error {
	return NewError(ErrExecutionFailed, message, cause)
}

// NewIOError creates a new IO error
func NewIOError(message string, cause error) *Error {
	return NewError(ErrIO, message, cause)
}

// NewProtocolError creates a new protocol error
func NewProtocolError(message string, cause error) *Error {
	return NewError(ErrProtocol, message, cause)
}

// kindOf extracts the kind of err, unwrapping as needed.
func kindOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return kindOf(err) == ErrInvalidArgument
}

// IsDisconnected checks if the error is a disconnected error
func IsDisconnected(err error) bool {
	return kindOf(err) == ErrDisconnected
}

// IsTimeout checks if the error is a timeout error
func IsTimeout(err error) bool {
	return kindOf(err) == ErrTimeout
}

// IsExtension checks if the error is an extension error
func IsExtension(err error) bool {
	return kindOf(err) == ErrExtension
}

// IsNotConfigured checks if the error is a not configured error
func IsNotConfigured(err error) bool {
	return kindOf(err) == ErrNotConfigured
}

// IsInvalidName checks if the error is an invalid name error
func IsInvalidName(err error) bool {
	return kindOf(err) == ErrInvalidName
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return kindOf(err) == ErrNotFound
}

// IsNotExecutable checks if the error is a not executable error
func IsNotExecutable(err error) bool {
	return kindOf(err) == ErrNotExecutable
}

// IsInvalidArgs checks if the error is an invalid script args error
func IsInvalidArgs(err error) bool {
	return kindOf(err) == ErrInvalidArgs
}

// IsExecutionFailed checks if the error is an execution failed error
func IsExecutionFailed(err error) bool {
	return kindOf(err) == ErrExecutionFailed
}

// IsIO checks if the error is an IO error
func IsIO(err error) bool {
	return kindOf(err) == ErrIO
}

// IsProtocol checks if the error is a protocol error
func IsProtocol(err error) bool {
	return kindOf(err) == ErrProtocol
}
