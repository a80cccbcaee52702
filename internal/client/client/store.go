package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/jarsclient/internal/api"
	"github.com/dmitrijs2005/jarsclient/internal/common"
	"github.com/dmitrijs2005/jarsclient/internal/contract"
	"github.com/dmitrijs2005/jarsclient/internal/logging"
)

// Option configures a StoreClient.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     logging.Logger
	token      string
	version    string
}

// WithHTTPClient overrides the HTTP client used by NewHTTP.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) {
		if h != nil {
			o.httpClient = h
		}
	}
}

// WithTimeout bounds every call. Zero means no bound beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithVersion starts the client with a previously observed version. Malformed
// tokens are ignored.
func WithVersion(version string) Option {
	return func(o *options) {
		if api.IsVersionToken(version) {
			o.version = version
		}
	}
}

// StoreClient implements Client over an Executor.
type StoreClient struct {
	exec Executor
	log  logging.Logger

	versions versionTracker

	mu      sync.Mutex
	token   string
	touched map[string]any
	timeout time.Duration
}

// NewHTTP returns a client talking to the store at baseURL. Request paths are
// appended to baseURL as is.
func NewHTTP(baseURL string, opts ...Option) (*StoreClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", common.ErrValidation)
	}
	o := buildOptions(opts)
	return New(newHTTPExecutor(baseURL, o.httpClient), opts...), nil
}

// NewLocal returns a client served by store in the same process.
func NewLocal(store LocalStore, opts ...Option) *StoreClient {
	return New(&localExecutor{handler: NewLocalHandler(store)}, opts...)
}

// New returns a client over an arbitrary executor.
func New(exec Executor, opts ...Option) *StoreClient {
	o := buildOptions(opts)
	c := &StoreClient{
		exec:    exec,
		log:     o.logger,
		token:   o.token,
		timeout: o.timeout,
	}
	c.versions.adopt(o.version)
	return c
}

func buildOptions(opts []Option) *options {
	o := &options{
		httpClient: &http.Client{},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (c *StoreClient) Version() string {
	return c.versions.get()
}

func (c *StoreClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken replaces the session token sent as X-Auth. An empty token sends
// no header.
func (c *StoreClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *StoreClient) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

func (c *StoreClient) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// Execute sends req and returns the raw response. Error statuses are mapped
// to errors and X-Version is tracked; the body is not checked.
func (c *StoreClient) Execute(ctx context.Context, req *api.Request) (*api.Response, error) {
	return c.roundTrip(ctx, req)
}

// ExecuteJSON is Execute followed by a JSON decode of the body.
func (c *StoreClient) ExecuteJSON(ctx context.Context, req *api.Request) (any, error) {
	return c.call(ctx, req, contract.ShapeAny)
}

func (c *StoreClient) call(ctx context.Context, req *api.Request, shape contract.Shape) (any, error) {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	v, err := contract.Decode(resp.Body, shape)
	if err != nil {
		var ce *common.ContractError
		if errors.As(err, &ce) {
			c.log.Warn(ctx, "response violates contract",
				"path", req.Path, "expected", ce.Expected, "actual", ce.Actual, "summary", ce.Summary)
		}
		return nil, err
	}
	return v, nil
}

func (c *StoreClient) roundTrip(ctx context.Context, req *api.Request) (*api.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	token, timeout := c.token, c.timeout
	c.mu.Unlock()

	requestID := uuid.NewString()
	headers := make([]api.Header, 0, len(req.Headers)+3)
	if token != "" {
		headers = append(headers, api.Header{Name: common.AuthHeaderName, Value: token})
	}
	if !hasHeader(req.Headers, "Content-Type") {
		headers = append(headers, api.Header{Name: "Content-Type", Value: req.EffectiveContentType()})
	}
	headers = append(headers, api.Header{Name: common.RequestIDHeaderName, Value: requestID})
	headers = append(headers, req.Headers...)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	call := &Call{
		Method:  req.EffectiveMethod(),
		Path:    req.Path,
		Headers: headers,
		Body:    body,
	}

	log := c.log.With("request_id", requestID)
	log.Debug(ctx, "store request", "method", call.Method, "path", call.Path, "bytes", len(body))

	resp, err := c.exec.Execute(ctx, call)
	if err != nil {
		log.Debug(ctx, "store unreachable", "path", call.Path, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &common.TransportError{Err: errors.Join(common.ErrTimeout, err)}
		}
		return nil, &common.TransportError{Err: err}
	}

	log.Debug(ctx, "store response", "status", resp.Status, "bytes", len(resp.Body))

	c.versions.observe(resp)

	if !resp.OK() {
		err := contract.MapError(resp.Status, resp.Body)
		if errors.Is(err, common.ErrTransport) {
			log.Warn(ctx, "unrecognised error response",
				"status", resp.Status, "summary", contract.Summarize(resp.Body))
		}
		return nil, err
	}

	return resp, nil
}

func (c *StoreClient) minVersionHeader(min api.MinVersion) ([]api.Header, error) {
	h, ok, err := min.Header(c.Version())
	if err != nil || !ok {
		return nil, err
	}
	return []api.Header{h}, nil
}

func hasHeader(headers []api.Header, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}
