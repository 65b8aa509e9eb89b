// Package apperr classifies failures so handlers can answer with the right
// status and a message that is safe to show a visitor.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds for comparison with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream failure")
)

// Error carries the failing operation, its kind and a user-facing message.
// Err is the underlying cause and is never shown to users.
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Message)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NotFound(op, message string) *Error {
	return &Error{Op: op, Kind: ErrNotFound, Message: message}
}

func Unauthorized(op, message string) *Error {
	return &Error{Op: op, Kind: ErrUnauthorized, Message: message}
}

func Invalid(op, message string) *Error {
	return &Error{Op: op, Kind: ErrInvalid, Message: message}
}

// Upstream wraps a store, blob or mail failure behind a generic message.
func Upstream(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrUpstream, Message: "Something went wrong on our side. Please try again.", Err: err}
}

// Message returns the text to show a user for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong on our side. Please try again."
}
