package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/jarsclient/internal/api"
)

// Call is a request as it goes to a backend: method, path, ordered headers
// and the encoded body.
type Call struct {
	Method  string
	Path    string
	Headers []api.Header
	Body    []byte
}

// Header returns the first value of the named header.
func (c *Call) Header(name string) string {
	for _, h := range c.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Executor performs one call against a backend. A non-nil error means no
// response was obtained; error statuses are returned as responses.
type Executor interface {
	Execute(ctx context.Context, call *Call) (*api.Response, error)
}

type httpExecutor struct {
	baseURL    string
	httpClient *http.Client
}

func newHTTPExecutor(baseURL string, hc *http.Client) *httpExecutor {
	return &httpExecutor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

func (e *httpExecutor) Execute(ctx context.Context, call *Call) (*api.Response, error) {
	var body io.Reader = http.NoBody
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, e.baseURL+call.Path, body)
	if err != nil {
		return nil, err
	}
	for _, h := range call.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &api.Response{
		Status: resp.StatusCode,
		Body:   data,
		Header: resp.Header,
	}, nil
}

// localExecutor runs calls through an in-process handler.
type localExecutor struct {
	handler http.Handler
}

func (e *localExecutor) Execute(ctx context.Context, call *Call) (*api.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.Path, bytes.NewReader(call.Body))
	if err != nil {
		return nil, err
	}
	for _, h := range call.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	w := newResponseBuffer()
	e.handler.ServeHTTP(w, req)
	if w.status == 0 {
		w.status = http.StatusOK
	}

	return &api.Response{
		Status: w.status,
		Body:   w.body.Bytes(),
		Header: w.header,
	}, nil
}

type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (w *responseBuffer) Header() http.Header { return w.header }

func (w *responseBuffer) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseBuffer) Write(b []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.body.Write(b)
}
