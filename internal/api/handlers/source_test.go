package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumenboard/lumenboard/internal/domain"
)

type MockSourceReader struct {
	mock.Mock
}

func (m *MockSourceReader) GetByID(ctx context.Context, sourceID string) (*domain.KnowledgeSource, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeSource), args.Error(1)
}

func getSource(handler *SourceHandler, id string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get("/sources/{id}", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/sources/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSourceHandler_Get(t *testing.T) {
	mockRepo := new(MockSourceReader)
	handler := NewSourceHandler(mockRepo)

	updated := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	mockRepo.On("GetByID", mock.Anything, "src-1").Return(
		domain.NewKnowledgeSource("src-1", domain.SourceStatusCompleted, updated), nil)

	rec := getSource(handler, "src-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SourceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "src-1", resp.SourceID)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "2026-08-15T09:30:00Z", resp.LastUpdated)
	mockRepo.AssertExpectations(t)
}

func TestSourceHandler_GetNotFound(t *testing.T) {
	mockRepo := new(MockSourceReader)
	handler := NewSourceHandler(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrSourceNotFound)

	rec := getSource(handler, "ghost")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ErrCodeNotFound, resp.Code)
}
