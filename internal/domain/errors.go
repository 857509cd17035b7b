package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindExternal     ErrorKind = "external"
	KindInternal     ErrorKind = "internal"
)

// Error carries a kind that the transport layer maps to a status code.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel *Error values by kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrOrderNotFound      = &Error{Kind: KindNotFound, Message: "order not found"}
	ErrProductNotFound    = &Error{Kind: KindNotFound, Message: "product not found"}
	ErrCategoryNotFound   = &Error{Kind: KindNotFound, Message: "category not found"}
	ErrCollectionNotFound = &Error{Kind: KindNotFound, Message: "collection not found"}
	ErrImageNotFound      = &Error{Kind: KindNotFound, Message: "product image not found"}
	ErrInvalidSignature   = &Error{Kind: KindValidation, Message: "invalid webhook signature"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
	ErrUsernameTaken      = &Error{Kind: KindConflict, Message: "username already taken"}
)

func NewValidationError(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// ProductNotFound names the offending product id.
func ProductNotFound(id uint64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("product %d not found", id), Err: ErrProductNotFound}
}

func ExternalError(msg string, err error) *Error {
	return &Error{Kind: KindExternal, Message: msg, Err: err}
}

func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
