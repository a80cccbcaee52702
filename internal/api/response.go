package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

var dispositionFilenameRe = regexp.MustCompile(`(?i);\s*filename\s*=([^;]+)`)

// Response is the raw result of one executed request.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

func (r *Response) OK() bool {
	return r.Status == http.StatusOK
}

// Version returns the X-Version header when it holds a well-formed token.
func (r *Response) Version() string {
	v := strings.TrimSpace(r.Header.Get(common.VersionHeaderName))
	if !IsVersionToken(v) {
		return ""
	}
	return v
}

// ContentType returns the media type without parameters.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// Filename returns the filename parameter of Content-Disposition, if any.
func (r *Response) Filename() string {
	cd := r.Header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil {
		if name, ok := params["filename"]; ok {
			return name
		}
		return ""
	}
	m := dispositionFilenameRe.FindStringSubmatch(cd)
	if m == nil {
		return ""
	}
	return strings.Trim(strings.TrimSpace(m[1]), `"`)
}

// ParsePayload checks a body forwarded by a relay before it is handed to
// Execute. Anything that is not valid JSON is refused, except the literal
// null, which yields a nil payload.
func ParsePayload(body []byte) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("%w: request body is not valid JSON", common.ErrValidation)
	}
	return json.RawMessage(trimmed), nil
}
