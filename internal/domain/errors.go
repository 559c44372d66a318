package domain

import (
	"errors"
	"fmt"
)

// auth
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRejected      = errors.New("token rejected")
	ErrNoSession          = errors.New("no active session")
)

// validation
var (
	ErrEmptyContent = errors.New("message content is empty")
)

// TransportError wraps a network or timeout failure. Transient: the next
// scheduled poll retries it, and it never terminates the session by itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// IsAuth reports whether err must terminate the session.
func IsAuth(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenRejected) ||
		errors.Is(err, ErrNoSession)
}

// IsTransient reports whether err is a network-level failure that the next
// poll may recover from.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
