package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1})))
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectStatus int
		expectType   string
	}{
		{
			name:         "validation api error",
			err:          ErrValidation("from", "must not exceed to"),
			expectStatus: http.StatusBadRequest,
			expectType:   TypeValidation,
		},
		{
			name:         "not found app error",
			err:          NewNotFoundError("value for PL/2019"),
			expectStatus: http.StatusNotFound,
			expectType:   TypeDataNotFound,
		},
		{
			name:         "source unavailable",
			err:          fmt.Errorf("wrap: %w", NewSourceUnavailableError("vehicles", "ev.xlsx", nil)),
			expectStatus: http.StatusServiceUnavailable,
			expectType:   TypeSourceUnavailable,
		},
		{
			name:         "context cancelled",
			err:          context.Canceled,
			expectStatus: http.StatusGatewayTimeout,
			expectType:   TypeTimeout,
		},
		{
			name:         "unknown error",
			err:          fmt.Errorf("boom"),
			expectStatus: http.StatusInternalServerError,
			expectType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			req := httptest.NewRequest(http.MethodGet, "/api/sources/vehicles/value", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.expectStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectType, body["type"])
			assert.Equal(t, float64(tt.expectStatus), body["status"])
			assert.Equal(t, "/api/sources/vehicles/value", body["instance"])
			assert.Contains(t, body, "trace_id")
		})
	}
}

func TestErrorHandler_HandleNilError(t *testing.T) {
	h := newTestHandler()
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("error_code", "NOT_FOUND")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "NOT_FOUND", body["error_code"])
	assert.NotContains(t, body, "detail")
	assert.Equal(t, "/x", body["instance"])
}
