package common

import (
	"fmt"
	"net/http"
)

// RemoteKind is the class of an error reported by the store. The set is
// closed: only kinds listed here can be produced from a response.
type RemoteKind uint8

const (
	KindException RemoteKind = iota // Unclassified store error.
	KindBadToken
	KindBadUsernameOrPassword
	KindNotFound
	KindForbidden
	KindInvalidInput
	KindConflict
)

// remoteKinds maps taxonomy names (the part before "Exception") to kinds.
var remoteKinds = map[string]RemoteKind{
	"":                      KindException,
	"BadToken":              KindBadToken,
	"BadUsernameOrPassword": KindBadUsernameOrPassword,
	"NotFound":              KindNotFound,
	"Forbidden":             KindForbidden,
	"InvalidInput":          KindInvalidInput,
	"Conflict":              KindConflict,
}

// LookupRemoteKind resolves a taxonomy name such as "NotFound" to its kind.
func LookupRemoteKind(name string) (RemoteKind, bool) {
	k, ok := remoteKinds[name]
	return k, ok
}

func (k RemoteKind) String() string {
	switch k {
	case KindException:
		return "Exception"
	case KindBadToken:
		return "BadToken"
	case KindBadUsernameOrPassword:
		return "BadUsernameOrPassword"
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindInvalidInput:
		return "InvalidInput"
	case KindConflict:
		return "Conflict"
	}
	return "unknown"
}

// ExceptionName returns the wire name of the kind, e.g. "NotFoundException".
func (k RemoteKind) ExceptionName() string {
	if k == KindException {
		return "Exception"
	}
	return k.String() + "Exception"
}

// HTTPStatus is the status an in-process backend answers with for the kind.
func (k RemoteKind) HTTPStatus() int {
	switch k {
	case KindBadToken, KindBadUsernameOrPassword:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (k RemoteKind) sentinel() error {
	switch k {
	case KindBadToken:
		return ErrInvalidToken
	case KindBadUsernameOrPassword:
		return ErrorUnauthorized
	case KindNotFound:
		return ErrorNotFound
	case KindForbidden:
		return ErrForbidden
	case KindInvalidInput:
		return ErrInvalidInput
	case KindConflict:
		return ErrVersionConflict
	}
	return nil
}

// RemoteError is an error the store reported with an allow-listed kind.
// Kind and Message are surfaced as received.
type RemoteError struct {
	Kind    RemoteKind
	Message string
}

// NewRemoteError builds a RemoteError, formatting the message like fmt.Sprintf.
func NewRemoteError(kind RemoteKind, format string, args ...any) *RemoteError {
	return &RemoteError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.ExceptionName(), e.Message)
}

func (e *RemoteError) Unwrap() []error {
	if s := e.Kind.sentinel(); s != nil {
		return []error{ErrRemote, s}
	}
	return []error{ErrRemote}
}
