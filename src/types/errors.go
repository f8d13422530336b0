package types

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	Unauthenticated        ErrorKind = "Unauthenticated"
	Unauthorized           ErrorKind = "Unauthorized"
	InvalidRequest         ErrorKind = "InvalidRequest"
	NotFound               ErrorKind = "NotFound"
	InsufficientInventory  ErrorKind = "InsufficientInventory"
	SaleWindowClosed       ErrorKind = "SaleWindowClosed"
	AmountTooSmall         ErrorKind = "AmountTooSmall"
	SecurityViolation      ErrorKind = "SecurityViolation"
	InvalidStateTransition ErrorKind = "InvalidStateTransition"
	AlreadyProcessed       ErrorKind = "AlreadyProcessed"
	UpstreamFailure        ErrorKind = "UpstreamFailure"
)

// Error is a failure with a kind from the service taxonomy and a message
// that is safe to show to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, &types.Error{Kind: types.NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// UpstreamFailure for anything unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UpstreamFailure
}

// PublicMessage is the text returned to HTTP clients for err.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	if e.Kind == SecurityViolation {
		return "payment verification failed"
	}
	return e.Message
}
