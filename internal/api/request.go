package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

// Header is one extra request header. Headers are kept as an ordered slice
// so they reach the backend in the order they were added.
type Header struct {
	Name  string
	Value string
}

// Request describes one call against the store.
type Request struct {
	Path        string
	Method      string
	Payload     any
	Headers     []Header
	ContentType string
}

// NewRequest builds a request with the default content type.
func NewRequest(method, path string, payload any, headers ...Header) *Request {
	return &Request{
		Path:        path,
		Method:      method,
		Payload:     payload,
		Headers:     headers,
		ContentType: common.DefaultContentType,
	}
}

// Validate rejects requests that must never reach a backend.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", common.ErrValidation)
	}
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", common.ErrValidation, r.Path)
	}
	return nil
}

// EffectiveMethod returns the method put on the wire. A GET carrying a
// payload is sent as POST.
func (r *Request) EffectiveMethod() string {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method == http.MethodGet && r.Payload != nil {
		return http.MethodPost
	}
	return method
}

// EffectiveContentType returns the content type, falling back to JSON.
func (r *Request) EffectiveContentType() string {
	if r.ContentType == "" {
		return common.DefaultContentType
	}
	return r.ContentType
}

// Body encodes the payload. A nil payload yields a nil body; a RawMessage is
// passed through untouched.
func (r *Request) Body() ([]byte, error) {
	switch p := r.Payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.Payload); err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", common.ErrValidation, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// With returns a copy of the request with extra headers appended.
func (r *Request) With(headers ...Header) *Request {
	cp := *r
	cp.Headers = append(append([]Header(nil), r.Headers...), headers...)
	return &cp
}

// Path joins segments into an absolute request path, escaping each one as a
// single path segment. Path() is "/".
func Path(segments ...string) string {
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
