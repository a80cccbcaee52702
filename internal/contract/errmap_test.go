package contract

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jarsclient/internal/common"
)

func TestMapError_AllowListedKind(t *testing.T) {
	err := MapError(http.StatusNotFound, []byte(`{"exception":"NotFoundException","message":"missing"}`))

	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, common.KindNotFound, re.Kind)
	assert.Equal(t, "missing", re.Message)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, err, common.ErrRemote)
}

func TestMapError_NamespacedKind(t *testing.T) {
	err := MapError(http.StatusUnauthorized, []byte(`{"exception":"jars\\contract\\BadTokenException","message":"expired"}`))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestMapError_GenericException(t *testing.T) {
	err := MapError(http.StatusInternalServerError, []byte(`{"exception":"Exception"}`))

	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, common.KindException, re.Kind)
	assert.Equal(t, DefaultErrorMessage, re.Message)
}

func TestMapError_FallsBackToTransport(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "outside pattern", body: `{"exception":"System\\Eval","message":"missing"}`},
		{name: "other namespace", body: `{"exception":"evil\\NotFoundException"}`},
		{name: "unknown kind", body: `{"exception":"DiskFullException"}`},
		{name: "lowercase", body: `{"exception":"notFoundException"}`},
		{name: "no exception field", body: `{"message":"hi"}`},
		{name: "not json", body: `<h1>502 Bad Gateway</h1>`},
		{name: "empty", body: ``},
		{name: "wrong type", body: `{"exception":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError(http.StatusBadGateway, []byte(tt.body))

			var te *common.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, http.StatusBadGateway, te.StatusCode)
			assert.ErrorIs(t, err, common.ErrTransport)
			assert.False(t, errors.Is(err, common.ErrRemote))
		})
	}
}

func TestErrorBody_RoundTripsThroughMapError(t *testing.T) {
	status, body := ErrorBody(common.NewRemoteError(common.KindConflict, "version %s is unknown", "abc"))
	assert.Equal(t, http.StatusConflict, status)

	err := MapError(status, body)
	var re *common.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, common.KindConflict, re.Kind)
	assert.Equal(t, "version abc is unknown", re.Message)
}

func TestErrorBody_PlainErrorIsGeneric(t *testing.T) {
	status, body := ErrorBody(errors.New("db is on fire"))
	assert.Equal(t, http.StatusInternalServerError, status)

	var p map[string]string
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "Exception", p["exception"])
	assert.Equal(t, DefaultErrorMessage, p["message"])
}
