package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondValidationError(rec, ErrCodeMissingField, "movieId is required", "movieId")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, ErrorResponse{Error: ErrCodeMissingField, Message: "movieId is required", Field: "movieId"}, decode(t, rec))
}

func TestRespondInternalErrorIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondInternalError(rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, ErrCodeInternalError, body.Error)
	assert.Equal(t, "internal server error", body.Message)
}

func TestRespondErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithDetails(rec, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, "try again", map[string]any{"retryable": true})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, true, decode(t, rec).Details["retryable"])
}
