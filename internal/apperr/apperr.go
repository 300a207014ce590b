// Package apperr carries the error taxonomy shared by the lifecycle and
// workflow layers: expected business-rule violations travel as typed
// values so handlers can map them to status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Internal is the zero value so an unclassified error maps to 500.
	Internal Kind = iota
	// InvalidData means a caller-supplied value or entity state fails a
	// precondition.
	InvalidData
	// NotFound means the referenced entity does not exist or is hidden
	// by soft delete.
	NotFound
	// Conflict means the operation would violate a structural invariant,
	// e.g. deleting a still-linked entity.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case InvalidData:
		return "invalid_data"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	}
	return "internal"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The wrapped error stays reachable
// through errors.Is/As.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; anything that is not an
// *Error is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
