package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a pipeline failure.
// The dispatcher includes the kind token in every error surfaced to the
// client so callers can branch without parsing prose.
type ErrorKind string

const (
	// ErrInvalidParams marks missing or malformed request fields.
	ErrInvalidParams ErrorKind = "invalid_params"

	// ErrPathTraversal marks a candidate path that resolves outside the
	// sandbox root, or one that could not be resolved at all.
	ErrPathTraversal ErrorKind = "path_traversal"

	// ErrEngineNotFound marks a missing ripgrep executable.
	ErrEngineNotFound ErrorKind = "engine_not_found"

	// ErrTimeout marks a search that exceeded the wall-clock bound; the
	// child process has already been terminated when this is returned.
	ErrTimeout ErrorKind = "timeout"

	// ErrExecutionFailed marks a non-zero, non-"no match" engine exit.
	ErrExecutionFailed ErrorKind = "execution_failed"

	// ErrInternal marks unexpected failures (spawn I/O errors and the
	// like). Full detail stays in server-side logs.
	ErrInternal ErrorKind = "internal"
)

// AppError is the typed failure every pipeline stage returns. The MCP
// handler is the single point that converts it into a protocol-level error
// response.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError builds an AppError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an AppError wrapping an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the ErrorKind from err, or ErrInternal when err carries
// no AppError in its chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// IsKind reports whether err's chain contains an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
