package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("not found")
	ErrStorage            = errors.New("storage failure")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrThrottled          = errors.New("too many attempts")
)

// Error carries a user-facing message together with its kind and an
// optional underlying cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

// Storage wraps an I/O or database failure.
func Storage(msg string, cause error) error {
	return &Error{Kind: ErrStorage, Message: msg, Cause: cause}
}

// ThrottledError reports a rate-limited attempt.
type ThrottledError struct {
	RetryAfter int // seconds
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("Too many login attempts. Please try again in %d seconds.", e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

// Message returns the user-facing text of err: the Message of a *Error, or
// err.Error() otherwise.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// DuplicateKeyError reports a unique-index clash on Field. It matches ErrConflict.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string { return "duplicate " + e.Field }

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrConflict }
