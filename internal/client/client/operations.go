package client

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"regexp"
	"strconv"

	"github.com/dmitrijs2005/jarsclient/internal/api"
	"github.com/dmitrijs2005/jarsclient/internal/common"
	"github.com/dmitrijs2005/jarsclient/internal/contract"
)

var (
	groupPrefixRe = regexp.MustCompile(common.GroupPrefixPattern)
	hashRe        = regexp.MustCompile(common.HashPattern)
)

// Touch probes the store. The first successful result is cached for the
// lifetime of the client.
func (c *StoreClient) Touch(ctx context.Context) (map[string]any, error) {
	c.mu.Lock()
	touched := c.touched
	c.mu.Unlock()
	if touched != nil {
		return maps.Clone(touched), nil
	}

	v, err := c.call(ctx, api.NewRequest(http.MethodGet, "/touch", nil), contract.ShapeObject)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.touched == nil {
		c.touched = v.(map[string]any)
	}
	return maps.Clone(c.touched), nil
}

// Login authenticates and adopts the returned token. An empty result means
// the store issued no token.
func (c *StoreClient) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	payload := map[string]string{"username": username, "password": password}
	v, err := c.call(ctx, api.NewRequest(http.MethodPost, "/auth/login", payload), contract.ShapeString.Nullable())
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}

	token := v.(string)
	if token != "" {
		c.SetToken(token)
	}
	return token, nil
}

// Logout ends the session on the store. The local token is kept.
func (c *StoreClient) Logout(ctx context.Context) (bool, error) {
	v, err := c.call(ctx, api.NewRequest(http.MethodPost, "/auth/logout", nil), contract.ShapeBool)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Get returns the line, or nil when it does not exist.
func (c *StoreClient) Get(ctx context.Context, linetype, id string) (Line, error) {
	v, err := c.call(ctx, api.NewRequest(http.MethodGet, api.Path(linetype, id), nil), contract.ShapeObject.Nullable())
	if err != nil || v == nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// Save stores lines and returns them as the store saved them. Nothing is sent
// for an empty slice.
func (c *StoreClient) Save(ctx context.Context, lines []any) ([]any, error) {
	if len(lines) == 0 {
		return []any{}, nil
	}
	return c.callArray(ctx, api.NewRequest(http.MethodPost, "/", lines))
}

func (c *StoreClient) Delete(ctx context.Context, linetype, id string) ([]any, error) {
	return c.callArray(ctx, api.NewRequest(http.MethodDelete, api.Path(linetype, id), nil))
}

// Unlink detaches the line from parent.
func (c *StoreClient) Unlink(ctx context.Context, linetype, id, parent string) ([]any, error) {
	payload := []map[string]string{{"id": id, "parent": parent}}
	return c.callArray(ctx, api.NewRequest(http.MethodPost, api.Path(linetype, "unlink"), payload))
}

// Preview returns lines as they would be saved, without saving them.
func (c *StoreClient) Preview(ctx context.Context, lines []any) ([]any, error) {
	return c.callArray(ctx, api.NewRequest(http.MethodPost, "/preview", lines))
}

func (c *StoreClient) Fields(ctx context.Context, linetype string) ([]any, error) {
	return c.callArray(ctx, api.NewRequest(http.MethodGet, api.Path("fields", linetype), nil))
}

// Record fetches raw record content. Content type and filename come from the
// headers of this response only.
func (c *StoreClient) Record(ctx context.Context, table, id string) (*RecordResult, error) {
	resp, err := c.roundTrip(ctx, api.NewRequest(http.MethodGet, api.Path("record", table, id), nil))
	if err != nil {
		return nil, err
	}
	return &RecordResult{
		Content:     resp.Body,
		ContentType: resp.ContentType(),
		Filename:    resp.Filename(),
	}, nil
}

// Groups lists the groups of a report whose names start with prefix.
func (c *StoreClient) Groups(ctx context.Context, report, prefix string, min api.MinVersion) ([]string, error) {
	if !groupPrefixRe.MatchString(prefix) {
		return nil, fmt.Errorf("%w: invalid group prefix %q", common.ErrValidation, prefix)
	}
	headers, err := c.minVersionHeader(min)
	if err != nil {
		return nil, err
	}

	path := api.Path("report", report, "groups")
	if prefix != "" {
		path = api.Path("report", report, "groups", prefix)
	}

	v, err := c.call(ctx, api.NewRequest(http.MethodGet, path, nil).With(headers...), contract.ShapeArray)
	if err != nil {
		return nil, err
	}

	items := v.([]any)
	groups := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &common.ContractError{
				Expected: "array of string",
				Actual:   "array containing " + contract.KindOf(item),
			}
		}
		groups = append(groups, s)
	}
	return groups, nil
}

// Report returns a report group as decoded JSON. An empty group selects the
// report's top level. The names of the report's listing endpoints are not
// valid groups.
func (c *StoreClient) Report(ctx context.Context, report, group string, min api.MinVersion) (any, error) {
	if isReservedGroup(group) {
		return nil, fmt.Errorf("%w: %q is not a valid group name", common.ErrValidation, group)
	}

	headers, err := c.minVersionHeader(min)
	if err != nil {
		return nil, err
	}

	path := api.Path("report", report)
	if group != "" {
		path = api.Path("report", report, group)
	}
	return c.call(ctx, api.NewRequest(http.MethodGet, path, nil).With(headers...), contract.ShapeAny)
}

func isReservedGroup(group string) bool {
	return group == "groups" || group == "linetypes"
}

// Linetypes lists linetypes, for one report when report is not empty.
func (c *StoreClient) Linetypes(ctx context.Context, report string) ([]any, error) {
	path := "/linetypes"
	if report != "" {
		path = api.Path("report", report, "linetypes")
	}
	return c.callArray(ctx, api.NewRequest(http.MethodGet, path, nil))
}

func (c *StoreClient) Reports(ctx context.Context) ([]any, error) {
	return c.callArray(ctx, api.NewRequest(http.MethodGet, "/reports", nil))
}

// H2N maps a line hash to its sequence number. ok is false when the hash is
// unknown.
func (c *StoreClient) H2N(ctx context.Context, hash string) (n int64, ok bool, err error) {
	if !hashRe.MatchString(hash) {
		return 0, false, fmt.Errorf("%w: malformed hash %q", common.ErrValidation, hash)
	}

	v, err := c.call(ctx, api.NewRequest(http.MethodGet, api.Path("h2n", hash), nil), contract.ShapeInt.Nullable())
	if err != nil || v == nil {
		return 0, false, err
	}

	n, err = v.(json.Number).Int64()
	if err != nil {
		return 0, false, &common.ContractError{Expected: "int", Actual: "out of range int", Summary: v.(json.Number).String()}
	}
	return n, true, nil
}

// N2H maps a sequence number back to its line hash.
func (c *StoreClient) N2H(ctx context.Context, n int64) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("%w: sequence number must be positive", common.ErrValidation)
	}
	v, err := c.call(ctx, api.NewRequest(http.MethodGet, api.Path("n2h", strconv.FormatInt(n, 10)), nil), contract.ShapeString)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Refresh asks the store for its current version. A well-formed result is
// adopted as the client's version.
func (c *StoreClient) Refresh(ctx context.Context) (string, error) {
	v, err := c.call(ctx, api.NewRequest(http.MethodGet, "/refresh", nil), contract.ShapeString)
	if err != nil {
		return "", err
	}

	version := v.(string)
	c.versions.adopt(version)
	return version, nil
}

func (c *StoreClient) callArray(ctx context.Context, req *api.Request) ([]any, error) {
	v, err := c.call(ctx, req, contract.ShapeArray)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}
