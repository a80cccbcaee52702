// Package common defines shared constants and sentinel errors used across
// client and store layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Taxonomy roots. Every error returned by a client operation matches
	// exactly one of these.
	ErrValidation        = errors.New("validation error")
	ErrContractViolation = errors.New("contract violation")
	ErrTransport         = errors.New("transport error")
	ErrRemote            = errors.New("remote error")

	// ErrTimeout is reported together with ErrTransport when the call
	// deadline elapses.
	ErrTimeout = errors.New("timeout")

	// Remote kinds, reachable through RemoteError.
	ErrorNotFound      = errors.New("not found")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrVersionConflict = errors.New("version conflict")
)

// TransportError reports a failure to obtain a usable response: the backend
// was unreachable, the call timed out, or it answered with a non-success
// status whose error payload could not be trusted.
type TransportError struct {
	// StatusCode is the response status, or 0 if no response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("transport error: status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport error: status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return "transport error"
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// ContractError reports a response body that failed to decode or did not
// have the shape the operation declares. Summary is a bounded rendering of
// the body, never the body itself.
type ContractError struct {
	Expected string
	Actual   string
	Summary  string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract violation: expected %s, got %s", e.Expected, e.Actual)
}

func (e *ContractError) Unwrap() error { return ErrContractViolation }
