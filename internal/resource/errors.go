package resource

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes why an operation failed.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindNetwork    ErrorKind = "network"
	KindUnknown    ErrorKind = "unknown"
)

var (
	ErrInFlight   = errors.New("operation already in progress")
	ErrClosed     = errors.New("resource screen closed")
	ErrMissingID  = errors.New("record id is required")
	ErrNoResponse = errors.New("data service returned no data")
)

// Error is the single error type surfaced by the orchestrator and the data
// services.
type Error struct {
	Kind    ErrorKind
	Op      OpKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf reports the ErrorKind carried by err, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// messageOf strips the op prefix so results carry the user-facing text only.
func messageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return err.Error()
}
