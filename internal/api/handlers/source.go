package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumenboard/lumenboard/internal/api"
	"github.com/lumenboard/lumenboard/internal/domain"
)

type SourceReader interface {
	GetByID(ctx context.Context, sourceID string) (*domain.KnowledgeSource, error)
}

type SourceHandler struct {
	sources SourceReader
}

func NewSourceHandler(sources SourceReader) *SourceHandler {
	return &SourceHandler{sources: sources}
}

type SourceResponse struct {
	SourceID    string `json:"sourceId"`
	Status      string `json:"status"`
	LastUpdated string `json:"lastUpdated"`
}

// Get handles GET /sources/{id}.
func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	src, err := h.sources.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SourceResponse{
		SourceID:    src.SourceID,
		Status:      string(src.Status),
		LastUpdated: src.LastUpdated.UTC().Format(time.RFC3339),
	})
}
