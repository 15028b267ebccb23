// Package qerr defines the structured errors raised while translating a
// filter onto a backend.
//
// Every failure carries a Code. Callers match on the code with errors.Is
// against the exported sentinels, which keeps working through
// fmt.Errorf("...: %w") wrapping added by the translator:
//
//	if errors.Is(err, qerr.ErrUnknownEntity) {
//	    // register the model and retry against a fresh query
//	}
package qerr

import (
	"errors"
	"fmt"
)

// Code categorizes translation errors.
type Code string

const (
	// CodeInvalidConjunction indicates a child join tag outside {AND, OR}.
	CodeInvalidConjunction Code = "INVALID_CONJUNCTION"

	// CodeInvalidOperator indicates a comparison operator outside the enumeration.
	CodeInvalidOperator Code = "INVALID_OPERATOR"

	// CodeInvalidDirection indicates a sort direction outside {ASC, DESC}.
	CodeInvalidDirection Code = "INVALID_DIRECTION"

	// CodeUnknownEntity indicates an entity reference that names neither a
	// literal table nor a registered model type.
	CodeUnknownEntity Code = "UNKNOWN_ENTITY"

	// CodeUnsupportedBackend indicates a query target no adapter can drive.
	CodeUnsupportedBackend Code = "UNSUPPORTED_BACKEND"

	// CodeUnsupportedOperation indicates a capability the chosen backend
	// cannot express.
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"
)

// Error is a translation failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Subject names the offending tag, operator, entity or backend type.
	Subject string
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrInvalidConjunction   = &Error{Code: CodeInvalidConjunction}
	ErrInvalidOperator      = &Error{Code: CodeInvalidOperator}
	ErrInvalidDirection     = &Error{Code: CodeInvalidDirection}
	ErrUnknownEntity        = &Error{Code: CodeUnknownEntity}
	ErrUnsupportedBackend   = &Error{Code: CodeUnsupportedBackend}
	ErrUnsupportedOperation = &Error{Code: CodeUnsupportedOperation}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the Code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// InvalidConjunction creates an error for an unknown child join tag.
func InvalidConjunction(tag string) *Error {
	return &Error{
		Code:    CodeInvalidConjunction,
		Message: "conjunction must be AND or OR",
		Subject: tag,
	}
}

// InvalidOperator creates an error for an unknown comparison operator.
func InvalidOperator(op string) *Error {
	return &Error{
		Code:    CodeInvalidOperator,
		Message: "unknown comparison operator",
		Subject: op,
	}
}

// InvalidDirection creates an error for an unknown sort direction.
func InvalidDirection(dir string) *Error {
	return &Error{
		Code:    CodeInvalidDirection,
		Message: "sort direction must be ASC or DESC",
		Subject: dir,
	}
}

// UnknownEntity creates an error for an entity reference that cannot be
// resolved to a table.
func UnknownEntity(entity, reason string) *Error {
	return &Error{
		Code:    CodeUnknownEntity,
		Message: reason,
		Subject: entity,
	}
}

// UnsupportedBackend creates an error for a query target of an unknown type.
func UnsupportedBackend(target any) *Error {
	return &Error{
		Code:    CodeUnsupportedBackend,
		Message: "no adapter for query target",
		Subject: fmt.Sprintf("%T", target),
	}
}

// UnsupportedOperation creates an error for a capability the backend lacks.
func UnsupportedOperation(backend, op string) *Error {
	return &Error{
		Code:    CodeUnsupportedOperation,
		Message: fmt.Sprintf("%s backend does not support %s", backend, op),
		Subject: op,
	}
}
