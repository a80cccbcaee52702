package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/jarsclient/internal/api"
)

// Line is a single document as exchanged with the store.
type Line = map[string]any

// RecordResult is the raw content of a record together with the metadata the
// store sent for it. It is built from a single response.
type RecordResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Client is the operation set of the store, independent of the backend.
type Client interface {
	Touch(ctx context.Context) (map[string]any, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) (bool, error)

	Get(ctx context.Context, linetype, id string) (Line, error)
	Save(ctx context.Context, lines []any) ([]any, error)
	Delete(ctx context.Context, linetype, id string) ([]any, error)
	Unlink(ctx context.Context, linetype, id, parent string) ([]any, error)
	Preview(ctx context.Context, lines []any) ([]any, error)
	Fields(ctx context.Context, linetype string) ([]any, error)
	Record(ctx context.Context, table, id string) (*RecordResult, error)

	Groups(ctx context.Context, report, prefix string, min api.MinVersion) ([]string, error)
	Report(ctx context.Context, report, group string, min api.MinVersion) (any, error)
	Linetypes(ctx context.Context, report string) ([]any, error)
	Reports(ctx context.Context) ([]any, error)

	H2N(ctx context.Context, hash string) (int64, bool, error)
	N2H(ctx context.Context, n int64) (string, error)
	Refresh(ctx context.Context) (string, error)

	Execute(ctx context.Context, req *api.Request) (*api.Response, error)
	ExecuteJSON(ctx context.Context, req *api.Request) (any, error)

	Version() string
	Token() string
	SetToken(token string)
	Timeout() time.Duration
	SetTimeout(d time.Duration)
}

var _ Client = (*StoreClient)(nil)
