package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RetryMessage is shown to the user when a turn could not be processed.
	RetryMessage = "⚠️ Something went wrong on our side. Please send that again."
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "session store operation failed"
	// RedisNotFoundMessage is used when a key is missing.
	RedisNotFoundMessage = "session not found"
	// DBErrorMessage describes database failures.
	DBErrorMessage = "complaint store operation failed"
	// DBNotFoundMessage is used when a row is missing.
	DBNotFoundMessage = "complaint not found"
)

// Kind classifies an error for propagation decisions at the turn and HTTP boundaries.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindNotFound
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindNotFound:
		return "not_found"
	case KindCollaborator:
		return "collaborator"
	default:
		return "internal"
	}
}

// Error wraps an underlying error with a kind, an HTTP status and a safe message.
type Error struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, kind Kind, status int, message string) *Error {
	return &Error{
		Err:     err,
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// Input reports a user-correctable problem.
func Input(message string) *Error {
	return New(nil, KindInput, http.StatusBadRequest, message)
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return New(nil, KindNotFound, http.StatusNotFound, message)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, KindInternal, http.StatusInternalServerError, SystemErrorMessage)
}

// Collaborator wraps a failure of an external dependency (classifier, store, database).
func Collaborator(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return New(err, KindCollaborator, http.StatusBadGateway, message)
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return SystemErrorMessage
}
