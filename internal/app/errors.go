package app

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy surfaced to callers. Extraction-stage
// kinds describe caller-input problems; ModelError covers inference faults
// and total generation failure.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "NetworkError"
	KindSizeLimit ErrorKind = "SizeLimitError"
	KindParse     ErrorKind = "ParseError"
	KindModel     ErrorKind = "ModelError"
)

// Error carries a taxonomy kind and a user-visible message.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// AsError extracts the taxonomy error, if any, from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
