package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/jarsclient/internal/api"
	"github.com/dmitrijs2005/jarsclient/internal/client/client"
	"github.com/dmitrijs2005/jarsclient/internal/common"
	"github.com/dmitrijs2005/jarsclient/internal/memstore"
)

func newStore(t *testing.T) *memstore.Store {
	t.Helper()

	seed, err := memstore.LoadSeed("../../memstore/testdata/seed.json")
	require.NoError(t, err)
	s, err := memstore.New(seed, memstore.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return s
}

// backends returns a client per backend kind, each over its own store.
func backends(t *testing.T) map[string]client.Client {
	t.Helper()

	srv := httptest.NewServer(client.NewLocalHandler(newStore(t)))
	t.Cleanup(srv.Close)

	remote, err := client.NewHTTP(srv.URL)
	require.NoError(t, err)

	return map[string]client.Client{
		"http":  remote,
		"local": client.NewLocal(newStore(t)),
	}
}

func TestBackends_Session(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			touched, err := c.Touch(ctx)
			require.NoError(t, err)
			assert.Equal(t, false, touched["authenticated"])

			_, err = c.Reports(ctx)
			require.ErrorIs(t, err, common.ErrInvalidToken)

			_, err = c.Login(ctx, "alice", "nope")
			require.ErrorIs(t, err, common.ErrorUnauthorized)

			tok, err := c.Login(ctx, "alice", "wonderland")
			require.NoError(t, err)
			assert.Equal(t, tok, c.Token())

			reports, err := c.Reports(ctx)
			require.NoError(t, err)
			assert.Equal(t, []any{"ledger"}, reports)

			ok, err := c.Logout(ctx)
			require.NoError(t, err)
			assert.True(t, ok)

			_, err = c.Reports(ctx)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestBackends_Lines(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := c.Login(ctx, "bob", "builder")
			require.NoError(t, err)

			start, err := c.Refresh(ctx)
			require.NoError(t, err)
			assert.Equal(t, start, c.Version())

			saved, err := c.Save(ctx, []any{map[string]any{"type": "transaction", "account": "cash", "amount": 12.5}})
			require.NoError(t, err)
			require.Len(t, saved, 1)
			id := saved[0].(map[string]any)["id"].(string)

			afterSave := c.Version()
			assert.NotEqual(t, start, afterSave)
			assert.True(t, api.IsVersionToken(afterSave))

			line, err := c.Get(ctx, "transaction", id)
			require.NoError(t, err)
			assert.Equal(t, "cash", line["account"])

			missing, err := c.Get(ctx, "transaction", "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			_, err = c.Get(ctx, "spaceship", "1")
			require.ErrorIs(t, err, common.ErrorNotFound)

			preview, err := c.Preview(ctx, []any{map[string]any{"type": "note", "text": "draft"}})
			require.NoError(t, err)
			assert.Len(t, preview, 1)

			deleted, err := c.Delete(ctx, "transaction", id)
			require.NoError(t, err)
			assert.Len(t, deleted, 1)
			assert.NotEqual(t, afterSave, c.Version())

			_, err = c.Delete(ctx, "transaction", id)
			require.ErrorIs(t, err, common.ErrorNotFound)

			_, err = c.Unlink(ctx, "note", "n1", "p1")
			var re *common.RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, common.KindException, re.Kind)
			assert.Equal(t, "Not implemented", re.Message)
		})
	}
}

func TestBackends_Reports(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := c.Login(ctx, "alice", "wonderland")
			require.NoError(t, err)
			_, err = c.Refresh(ctx)
			require.NoError(t, err)

			groups, err := c.Groups(ctx, "ledger", "team-a", api.CurrentVersion())
			require.NoError(t, err)
			assert.Equal(t, []string{"team-a"}, groups)

			_, err = c.Groups(ctx, "ledger", "../etc", api.MinVersion{})
			require.ErrorIs(t, err, common.ErrValidation)

			_, err = c.Groups(ctx, "ledger", "", api.ExplicitVersion(strings.Repeat("e", 64)))
			require.ErrorIs(t, err, common.ErrVersionConflict)

			group, err := c.Report(ctx, "ledger", "2024-01", api.CurrentVersion())
			require.NoError(t, err)
			assert.IsType(t, []any{}, group)

			none, err := c.Report(ctx, "ledger", "1999-01", api.MinVersion{})
			require.NoError(t, err)
			assert.Nil(t, none)

			lts, err := c.Linetypes(ctx, "ledger")
			require.NoError(t, err)
			assert.Equal(t, []any{"transaction"}, lts)

			fields, err := c.Fields(ctx, "transaction")
			require.NoError(t, err)
			assert.Len(t, fields, 3)
		})
	}
}

func TestBackends_RecordsAndHashes(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := c.Login(ctx, "alice", "wonderland")
			require.NoError(t, err)

			rec, err := c.Record(ctx, "statements", "jan")
			require.NoError(t, err)
			assert.Equal(t, "text/csv", rec.ContentType)
			assert.Equal(t, "jan.csv", rec.Filename)

			raw, err := c.Record(ctx, "statements", "raw")
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 1, 2}, raw.Content)
			assert.Empty(t, raw.Filename)

			hash, err := c.N2H(ctx, 1)
			require.NoError(t, err)
			n, ok, err := c.H2N(ctx, hash)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestBackends_Relay(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			payload, err := api.ParsePayload([]byte(`{"username":"alice","password":"wonderland"}`))
			require.NoError(t, err)
			tok, err := c.ExecuteJSON(ctx, api.NewRequest(http.MethodPost, "/auth/login", payload))
			require.NoError(t, err)
			c.SetToken(tok.(string))

			resp, err := c.Execute(ctx, api.NewRequest(http.MethodGet, "/reports", nil))
			require.NoError(t, err)
			assert.JSONEq(t, `["ledger"]`, string(resp.Body))
			assert.NotEmpty(t, resp.Version())

			_, err = c.Execute(ctx, api.NewRequest(http.MethodGet, "/no/such/route/here", nil))
			require.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}
