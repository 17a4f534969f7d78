// Package errs defines the error-kind taxonomy used across KnowCode
// subsystems so callers can branch on kind rather than message text.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories named in the error handling design.
type Kind string

const (
	IOError            Kind = "IO_ERROR"
	ParseError         Kind = "PARSE_ERROR"
	SchemaMismatch     Kind = "SCHEMA_MISMATCH"
	EmbeddingFailure   Kind = "EMBEDDING_FAILURE"
	IndexInconsistent  Kind = "INDEX_INCONSISTENT"
	BudgetOverflow     Kind = "BUDGET_OVERFLOW"
	RetrievalEmpty     Kind = "RETRIEVAL_EMPTY"
	DeadlineExceeded   Kind = "DEADLINE_EXCEEDED"
)

// Error wraps an underlying cause with a taxonomy Kind.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error without an underlying cause.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap builds an *Error carrying an underlying cause.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
