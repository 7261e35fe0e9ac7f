// Package apperr carries typed errors with a stack trace from the outer
// layers (fetcher, store, config) to the HTTP surface.
package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	KindInvalidInput Kind = "INVALID_INPUT"
	KindNotFound     Kind = "NOT_FOUND"
	KindUnavailable  Kind = "UNAVAILABLE"
	KindInternal     Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	var ge *goerrors.Error
	switch {
	case errors.As(err, &ge):
		stack = ge.Stack()
	case err != nil:
		stack = goerrors.Wrap(err, 2).Stack()
	default:
		stack = goerrors.New(message).Stack()
	}
	return &Error{Kind: kind, Message: message, Err: err, Stack: stack}
}

func InvalidInput(message string, err error) *Error { return New(KindInvalidInput, message, err) }
func NotFound(message string, err error) *Error     { return New(KindNotFound, message, err) }
func Unavailable(message string, err error) *Error  { return New(KindUnavailable, message, err) }
func Internal(message string, err error) *Error     { return New(KindInternal, message, err) }

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
