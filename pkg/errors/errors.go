package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a graph operation failure.
type Kind string

const (
	// KindNotFound means a referenced account or post does not exist.
	KindNotFound Kind = "not_found"
	// KindDuplicateKey means a create used an already-taken key.
	KindDuplicateKey Kind = "duplicate_key"
	// KindInvalidOperation means the operation is structurally disallowed,
	// e.g. an account following itself.
	KindInvalidOperation Kind = "invalid_operation"
	// KindInvalidArgument means a parameter is out of range, e.g. a
	// negative traversal depth.
	KindInvalidArgument Kind = "invalid_argument"
)

// Error is the domain error type returned by all graph operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports a missing account or post by key.
func NotFound(entity, key string) *Error {
	return New(KindNotFound, "%s not found: %s", entity, key)
}

// DuplicateKey reports a create against an existing key.
func DuplicateKey(entity, key string) *Error {
	return New(KindDuplicateKey, "%s already exists: %s", entity, key)
}

// KindOf extracts the Kind from an error chain, or "" when err is not a
// domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a KindNotFound domain error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
