package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeAuthFailed indicates the backend rejected a login or
	// registration attempt. Its message is safe to show to the user.
	ErrCodeAuthFailed ErrorCode = "authentication_failed"
	// ErrCodeSessionExpired indicates the session ended, either via a
	// local expiry check or a rejected authenticated refresh.
	ErrCodeSessionExpired ErrorCode = "session_expired"
	// ErrCodeTransientFetch indicates a network/server failure on a
	// non-critical read; the last known good value stays in use.
	ErrCodeTransientFetch ErrorCode = "transient_fetch"
	// ErrCodeLogoutTransport indicates the remote logout call failed.
	// Local teardown proceeds regardless.
	ErrCodeLogoutTransport ErrorCode = "logout_transport"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code,
// message, and optional cause. It supports error wrapping and
// unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// AuthenticationFailed creates an error carrying the server-provided
// rejection message, or a generic fallback when the server gave none.
func AuthenticationFailed(message string) *AppError {
	if message == "" {
		message = "authentication failed"
	}
	return &AppError{Code: ErrCodeAuthFailed, Message: message}
}

// SessionExpired creates a session-expired error.
func SessionExpired(message string) *AppError {
	if message == "" {
		message = "session expired"
	}
	return &AppError{Code: ErrCodeSessionExpired, Message: message}
}

// Transient creates a transient-fetch error wrapping its cause.
func Transient(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeTransientFetch, Message: message, Cause: cause}
}

// LogoutTransport creates an error for a failed remote logout call.
func LogoutTransport(cause error) *AppError {
	return &AppError{Code: ErrCodeLogoutTransport, Message: "remote logout failed", Cause: cause}
}

// Validation creates a new validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internalf creates a new internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal when
// err is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given code anywhere in its
// chain.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// UserMessage returns the message suitable for user display. Only
// authentication failures surface their message; every other kind
// resolves to a generic one.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == ErrCodeAuthFailed {
		return appErr.Message
	}
	return "something went wrong"
}
