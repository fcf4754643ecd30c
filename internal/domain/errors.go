package domain

import (
	"errors"
	"fmt"
)

// Failure kinds reported by collaborators. Match them with errors.Is.
var (
	ErrAuthMissing   = errors.New("credentials missing or rejected")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrRateLimited   = errors.New("rate limited")
	ErrTimeout       = errors.New("timed out")
	ErrUnavailable   = errors.New("service unavailable")
	ErrCancelled     = errors.New("cancelled by user")
)

// ErrFatalStartup is the only failure that stops the program: no completion
// backend could be configured.
var ErrFatalStartup = errors.New("no usable completion backend")

// CollaboratorError wraps a failure from an external service with its kind.
type CollaboratorError struct {
	Collaborator string
	Kind         error
	Err          error
}

// NewCollaboratorError builds a CollaboratorError. A nil kind defaults to
// ErrUnavailable.
func NewCollaboratorError(collaborator string, kind, err error) *CollaboratorError {
	if kind == nil {
		kind = ErrUnavailable
	}
	return &CollaboratorError{Collaborator: collaborator, Kind: kind, Err: err}
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Collaborator, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Collaborator, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *CollaboratorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserError is a failure whose Message is fit to show in the terminal as is.
type UserError struct {
	Message string
	Err     error
}

// NewUserError wraps err with a terminal-ready message.
func NewUserError(message string, err error) *UserError {
	return &UserError{Message: message, Err: err}
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error { return e.Err }
