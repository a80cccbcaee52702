package memstore

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(`{
		"session_ttl": "30m",
		"users": [{"username": "u", "password_hash": "$2a$04$abc"}],
		"lines": [{"type": "note", "amount": 10.50}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, seed.SessionTTL.Duration)
	assert.Equal(t, "$2a$04$abc", seed.Users[0].PasswordHash)
	assert.Equal(t, json.Number("10.50"), seed.Lines[0]["amount"])
}

func TestParseSeed_Invalid(t *testing.T) {
	_, err := ParseSeed(strings.NewReader(`{"users": 5}`))
	require.Error(t, err)

	_, err = LoadSeed("testdata/missing.json")
	require.Error(t, err)
}

func TestNew_RejectsBadSeed(t *testing.T) {
	_, err := New(&Seed{Users: []SeedUser{{Password: "x"}}})
	require.Error(t, err)

	_, err = New(&Seed{Records: map[string]map[string]SeedRecord{
		"t": {"r": {Content: "!!!", Base64: true}},
	}})
	require.Error(t, err)
}

func TestNew_EmptySeed(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	assert.Len(t, s.version, 64)
	assert.Equal(t, DefaultSessionTTL, s.sessions.ttl)
}
