package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/searchrelay/internal/server/middleware"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
		CodeTimeout:            http.StatusGatewayTimeout,
		CodeExternalService:    http.StatusBadGateway,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
		CodeInternal:           http.StatusInternalServerError,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestRespondWithErrorUsesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDContextKey, "req-123"))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, NewNotFoundError("missing"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "missing", body.Error.Message)
	assert.Equal(t, "req-123", body.Error.RequestID)
}

func TestEnsureEnvelopeWrapsPlainErrors(t *testing.T) {
	env := EnsureEnvelope(stderrors.New("disk on fire"))

	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "disk on fire", env.Context["wrapped_error"])

	nilEnv := EnsureEnvelope(nil)
	assert.Equal(t, CodeInternal, nilEnv.Code)
}

func TestWrapInternalCarriesCorrelationID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDContextKey, "corr-1")
	env := WrapInternal(ctx, stderrors.New("boom"), "server error")

	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.Equal(t, "boom", env.Context["wrapped_error"])
}

func TestEnsureCorrelationIDFallback(t *testing.T) {
	env := EnsureCorrelationID(NewInternalError("x"), nil)
	assert.NotEmpty(t, env.CorrelationID)
	assert.Nil(t, EnsureCorrelationID(nil, nil))
}
