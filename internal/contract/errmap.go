package contract

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

// DefaultErrorMessage is used when an error payload carries no message.
const DefaultErrorMessage = "error response received from store"

// exceptionNameRe is the allow-list for exception names in error payloads.
// The capture is looked up in the remote kind table; nothing else is ever
// derived from the name.
var exceptionNameRe = regexp.MustCompile(`^(?:jars\\contract\\)?([A-Z][A-Za-z]*)?Exception$`)

var (
	errNoPayload       = errors.New("no error payload")
	errNameNotAllowed  = errors.New("exception name not allowed")
	errUnknownKindName = errors.New("unknown exception kind")
)

type errorPayload struct {
	Exception *string `json:"exception"`
	Message   *string `json:"message"`
}

// MapError converts a non-success response into an error. A payload naming
// an allow-listed kind yields *common.RemoteError; anything else yields
// *common.TransportError carrying the status.
func MapError(status int, body []byte) error {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil || p.Exception == nil {
		return &common.TransportError{StatusCode: status, Err: errNoPayload}
	}

	m := exceptionNameRe.FindStringSubmatch(*p.Exception)
	if m == nil {
		return &common.TransportError{StatusCode: status, Err: errNameNotAllowed}
	}

	kind, ok := common.LookupRemoteKind(m[1])
	if !ok {
		return &common.TransportError{StatusCode: status, Err: errUnknownKindName}
	}

	msg := DefaultErrorMessage
	if p.Message != nil && *p.Message != "" {
		msg = *p.Message
	}
	return &common.RemoteError{Kind: kind, Message: msg}
}

// ErrorBody renders err as the {exception, message} payload a backend answers
// with, together with the status to send. Errors other than
// *common.RemoteError are reported as a generic exception.
func ErrorBody(err error) (int, []byte) {
	kind := common.KindException
	msg := DefaultErrorMessage

	var re *common.RemoteError
	if errors.As(err, &re) {
		kind = re.Kind
		if re.Message != "" {
			msg = re.Message
		}
	}

	b, _ := json.Marshal(map[string]string{
		"exception": kind.ExceptionName(),
		"message":   msg,
	})
	return kind.HTTPStatus(), b
}
