package ngocontent

import (
	"errors"
	"fmt"
)

// Status tags the outcome of a service operation.
type Status string

const (
	StatusOK                Status = "ok"
	StatusNotFound          Status = "not_found"
	StatusValidationFailed  Status = "validation_failed"
	StatusBlobWriteFailed   Status = "blob_write_failed"
	StatusRecordWriteFailed Status = "record_write_failed"
	StatusUnauthorized      Status = "unauthorized"
	StatusFailed            Status = "failed"
)

// Result is returned by every service operation. Expected failures are
// reported through Status and Messages, never as a panic.
type Result[T any] struct {
	Value    T        `json:"value"`
	Status   Status   `json:"status"`
	Messages []string `json:"messages"`
	Warnings []string `json:"warnings,omitempty"`
	Err      error    `json:"-"`
}

// Succeeded reports whether the operation completed.
func (r Result[T]) Succeeded() bool {
	return r.Status == StatusOK
}

// HasErrors is the negation of Succeeded.
func (r Result[T]) HasErrors() bool {
	return !r.Succeeded()
}

// Ok builds a successful result.
func Ok[T any](value T, messages ...string) Result[T] {
	return Result[T]{Value: value, Status: StatusOK, Messages: messages}
}

// NotFound builds a not-found result.
func NotFound[T any](format string, args ...any) Result[T] {
	msg := fmt.Sprintf(format, args...)
	return Result[T]{Status: StatusNotFound, Messages: []string{msg}, Err: ErrNotFound}
}

// Unauthorized builds a result for a caller lacking the required role.
func Unauthorized[T any](message string) Result[T] {
	return Result[T]{Status: StatusUnauthorized, Messages: []string{message}, Err: ErrUnauthorized}
}

// Fail builds a failing result whose status is derived from err.
func Fail[T any](err error, messages ...string) Result[T] {
	var verr *ValidationError
	switch {
	case len(messages) > 0:
	case errors.As(err, &verr):
		messages = append([]string{ErrValidation.Error()}, verr.Fields...)
	case err != nil:
		messages = []string{err.Error()}
	}
	return Result[T]{Status: StatusOf(err), Messages: messages, Err: err}
}

// WithWarnings appends non-fatal messages to the result.
func (r Result[T]) WithWarnings(warnings ...string) Result[T] {
	if len(warnings) > 0 {
		r.Warnings = append(r.Warnings, warnings...)
	}
	return r
}

// StatusOf maps an error onto the status taxonomy.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	case errors.Is(err, ErrValidation):
		return StatusValidationFailed
	case errors.Is(err, ErrUnauthorized):
		return StatusUnauthorized
	case errors.Is(err, ErrBlobWrite), errors.Is(err, ErrInsecureLocator):
		return StatusBlobWriteFailed
	case errors.Is(err, ErrRecordWrite):
		return StatusRecordWriteFailed
	default:
		return StatusFailed
	}
}
