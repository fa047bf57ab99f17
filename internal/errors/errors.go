package errors

import "fmt"

// ErrorCode represents a log-activity error code.
type ErrorCode string

const (
	ErrConfig          ErrorCode = "CONFIG_ERROR"     // fatal: bad config or rule pattern, abort before processing
	ErrSkippableRecord ErrorCode = "SKIPPABLE_RECORD" // per-record: dropped, run continues
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // bad CLI/MCP parameters
	ErrNotFound        ErrorCode = "NOT_FOUND"        // missing source file, bucket, rule group
	ErrInternal        ErrorCode = "INTERNAL"         // unexpected failure
)

// Error is a structured error with code and optional details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfig creates a fatal configuration error. Configuration errors
// always abort the run before any event is processed.
func NewConfig(format string, args ...any) *Error {
	return &Error{
		Code:    ErrConfig,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewSkippableRecord creates a per-record error. The offending record
// is dropped and recorded as a diagnostic; the batch continues.
func NewSkippableRecord(source, reason string, err error) *Error {
	msg := reason
	if err != nil {
		msg = fmt.Sprintf("%s: %v", reason, err)
	}
	return &Error{
		Code:    ErrSkippableRecord,
		Message: msg,
		Details: map[string]any{"source": source, "reason": reason},
	}
}

// NewInvalidRequest creates an error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a missing external resource.
func NewNotFound(what string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", what),
		Details: map[string]any{"resource": what},
	}
}

// NewInternal wraps an unexpected failure.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is an Error with the given code.
func Is(err error, code ErrorCode) bool {
	if aErr, ok := err.(*Error); ok {
		return aErr.Code == code
	}
	return false
}
