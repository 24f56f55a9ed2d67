package liberr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can branch without parsing messages.
type Kind int

const (
	// KindValidation covers malformed input: patron IDs, ISBNs, amounts.
	KindValidation Kind = iota + 1
	// KindNotFound covers unknown books, transactions and loans.
	KindNotFound
	// KindConflict covers state conflicts: unavailable book, borrow limit,
	// no active loan, duplicate ISBN.
	KindConflict
	// KindExternal covers payment gateway declines and thrown failures.
	KindExternal
	// KindPersistence covers store mutations that reported failure.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "state conflict"
	case KindExternal:
		return "external service"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// Error is a classified failure with a message safe to show to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound reports an unknown entity.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports an operation that is invalid in the current state.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// External reports a failure coming from an external collaborator.
func External(format string, args ...interface{}) *Error {
	return newf(KindExternal, format, args...)
}

// Persistence reports a store mutation that did not take effect.
func Persistence(format string, args ...interface{}) *Error {
	return newf(KindPersistence, format, args...)
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or 0 if err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
