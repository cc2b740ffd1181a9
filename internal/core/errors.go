package core

import "fmt"

// ErrorKind classifies engine errors so the API layer can translate them
// into user-facing responses without string matching.
type ErrorKind string

const (
	KindInvalidDate     ErrorKind = "invalid_date"
	KindInvalidHabit    ErrorKind = "invalid_habit"
	KindFutureDate      ErrorKind = "future_date"
	KindNotDue          ErrorKind = "not_due"
	KindInvalidDuration ErrorKind = "invalid_duration"
	KindNotFound        ErrorKind = "not_found"
	KindRepository      ErrorKind = "repository"
)

// Error is a structured engine error: a kind plus the offending field.
// All validation kinds are deterministic input rejections and are never
// retried; KindRepository wraps persistence failures unchanged.
type Error struct {
	Kind  ErrorKind
	Field string
	msg   string
	cause error
}

func NewError(kind ErrorKind, field, msg string) *Error {
	return &Error{Kind: kind, Field: field, msg: msg}
}

// WrapRepository wraps a persistence-layer failure. The engine never
// swallows or retries these; retry policy belongs to the caller.
func WrapRepository(op string, err error) *Error {
	return &Error{Kind: KindRepository, msg: op, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.msg)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by kind, so errors.Is(err, core.ErrNotDue) works for any
// NotDue error regardless of field or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is matching.
var (
	ErrInvalidDate     = &Error{Kind: KindInvalidDate}
	ErrInvalidHabit    = &Error{Kind: KindInvalidHabit}
	ErrFutureDate      = &Error{Kind: KindFutureDate}
	ErrNotDue          = &Error{Kind: KindNotDue}
	ErrInvalidDuration = &Error{Kind: KindInvalidDuration}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrRepository      = &Error{Kind: KindRepository}
)
