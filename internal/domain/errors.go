package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrTransport = errors.New("transport error")
	ErrDecode    = errors.New("decode error")
	ErrAuth      = errors.New("authentication error")
	ErrInvalid   = errors.New("invalid input")
)

// TransportError reports that the document store or a remote API could not
// be reached or refused the operation.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func NewTransportError(op string, cause error) error {
	return &TransportError{Op: op, Cause: cause}
}

// NotFoundError names the collection and id an operation could not resolve.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s not found", e.Collection, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DecodeError describes one field that could not be read and was replaced
// by its default.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// AuthError only carries a message meant for the end user.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

func NewAuthError(message string) error {
	return &AuthError{Message: message}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
