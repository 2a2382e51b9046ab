// Package errors provides standardized domain errors with codes for the Munajat API.
//
// Usage:
//
//	// In services - return typed errors
//	if status == nil || !status.IsLoaded {
//	    return errors.AudioNotReady("play the audio first")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrSyncPointNotFound) {
//	    response.Info(w, err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
	CodeContentFormat     Code = "CONTENT_FORMAT"
	CodeAudioNotReady     Code = "AUDIO_NOT_READY"
	CodeSectionNotFound   Code = "SECTION_NOT_FOUND"
	CodePersistence       Code = "PERSISTENCE"
	CodeSyncPointNotFound Code = "SYNC_POINT_NOT_FOUND"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeSectionNotFound, CodeSyncPointNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeContentFormat:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeAudioNotReady:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the same action and expect
// a different outcome. Audio-not-ready clears once the player loads;
// persistence failures leave state untouched so the action can be repeated.
func (c Code) Retryable() bool {
	return c == CodeAudioNotReady || c == CodePersistence
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
	ErrContentFormat     = &Error{Code: CodeContentFormat, Message: "malformed prayer content"}
	ErrAudioNotReady     = &Error{Code: CodeAudioNotReady, Message: "audio not ready"}
	ErrSectionNotFound   = &Error{Code: CodeSectionNotFound, Message: "section not found"}
	ErrPersistence       = &Error{Code: CodePersistence, Message: "persistence failure"}
	ErrSyncPointNotFound = &Error{Code: CodeSyncPointNotFound, Message: "no sync point recorded"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// ContentFormat creates a content format error.
func ContentFormat(msg string) *Error {
	return &Error{Code: CodeContentFormat, Message: msg}
}

// AudioNotReady creates an audio not ready error.
func AudioNotReady(msg string) *Error {
	return &Error{Code: CodeAudioNotReady, Message: msg}
}

// SectionNotFoundf creates a section not found error with formatted message.
func SectionNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeSectionNotFound, Message: fmt.Sprintf(format, args...)}
}

// Persistence creates a persistence error.
func Persistence(msg string) *Error {
	return &Error{Code: CodePersistence, Message: msg}
}

// SyncPointNotFoundf creates an informational no-sync-point error.
// It is reported to the user as information, not as a failure.
func SyncPointNotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeSyncPointNotFound, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
