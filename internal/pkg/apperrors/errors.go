package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into the taxonomy the HTTP layer and the
// orchestrator's failure handling care about.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindStorage       Kind = "STORAGE"
	KindExtraction    Kind = "EXTRACTION"
	KindIndex         Kind = "INDEX"
	KindOrchestration Kind = "ORCHESTRATION"
	KindNotFound      Kind = "NOT_FOUND"
)

// Error is a classified application error. It wraps an optional cause so
// errors.Is/As keep working through the taxonomy.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func WrapStorage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Cause: cause}
}

func WrapExtraction(msg string, cause error) *Error {
	return &Error{Kind: KindExtraction, Message: msg, Cause: cause}
}

func WrapIndex(msg string, cause error) *Error {
	return &Error{Kind: KindIndex, Message: msg, Cause: cause}
}

func WrapOrchestration(msg string, cause error) *Error {
	return &Error{Kind: KindOrchestration, Message: msg, Cause: cause}
}

// KindOf returns the taxonomy kind of err, or KindOrchestration for
// unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindOrchestration
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
