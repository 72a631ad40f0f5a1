// Package apperr carries business failures from the service layer to the HTTP
// boundary without losing their kind. Handlers return *Error from inside
// db.Transaction callbacks; helpers.FromError turns them into the JSON envelope.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation — malformed or missing client input. Never retried.
	KindValidation Kind = iota
	// KindReference — a referenced id (patron, ouvrage, status, ...) does not exist.
	KindReference
	// KindNotFound — the target entity itself does not exist.
	KindNotFound
	// KindConflict — a business invariant blocks the operation (delete with
	// dependents, duplicate current reader, exclusive filter flags).
	KindConflict
	// KindTransaction — a multi-entity update failed and was fully rolled back.
	KindTransaction
)

type Error struct {
	Kind    Kind
	Message string
	// Fields holds field-level messages for validation / reference failures,
	// keyed by the JSON field name.
	Fields map[string]string
	// Details holds resolution hints for conflicts (counts, blocking ids).
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Reference reports a single unresolvable foreign reference.
func Reference(field, message string) *Error {
	return &Error{
		Kind:    KindReference,
		Message: "référence introuvable",
		Fields:  map[string]string{field: message},
	}
}

func NotFound(entity string, id uint) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d introuvable", entity, id)}
}

func Conflict(message string, details map[string]any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

func Transaction(message string) *Error {
	return &Error{Kind: KindTransaction, Message: message}
}

// As unwraps err into *Error if it is one.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
