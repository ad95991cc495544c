// Package apperrors holds the error kinds the API distinguishes between.
// Stores and services return these (optionally wrapped); handlers translate
// them into status codes.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
	ErrConflict     = errors.New("conflict")
)

// Error carries a caller-facing message next to its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation reports bad input: a missing field, a malformed id or an invalid enum value.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a reference to an entity that does not exist for the caller.
func NotFound(entity string) error {
	return &Error{Kind: ErrNotFound, Message: entity + " not found"}
}

func Unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func Unavailable(message string) error {
	return &Error{Kind: ErrUnavailable, Message: message}
}

// Conflict reports a write that lost a race with another write to the same row.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Message returns the caller-facing message of err when it carries one.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
