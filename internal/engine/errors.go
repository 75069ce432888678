package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnexpectedStatus is matched by every *StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedResponse means the engine answered 2xx with a body that
	// does not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is returned when the engine answers with a non-2xx code.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
