package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenboard/lumenboard/internal/domain"
)

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{domain.ErrMissingEntityID, http.StatusBadRequest},
		{domain.ErrUnsupportedFormat, http.StatusBadRequest},
		{domain.ErrEntityNotFound, http.StatusNotFound},
		{domain.ErrSourceNotFound, http.StatusNotFound},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrEmbeddingProvider, http.StatusBadGateway},
		{domain.ErrStorageOperationFail, http.StatusInternalServerError},
		{domain.NewDomainError(domain.ErrCodeInternalError, "boom"), http.StatusInternalServerError},
		{domain.NewDomainError("SOMETHING_ELSE", "odd"), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DomainErrorToHTTP(tt.err), "%v", tt.err)
	}
}

func TestDomainErrorToHTTP_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("scan failed: %w", domain.ErrEntityNotFound)
	assert.Equal(t, http.StatusNotFound, DomainErrorToHTTP(wrapped))
}

func TestHandleError_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domain.ErrEntityNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "entity not found in embeddings index", resp.Error)
	assert.Equal(t, domain.ErrCodeNotFound, resp.Code)
}

func TestHandleError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("something broke"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "something broke", resp.Error)
	assert.Empty(t, resp.Code)
}

func TestError_OmitsCode(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "entityId is required")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"entityId is required"}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
