package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lumenboard/lumenboard/internal/api"
	"github.com/lumenboard/lumenboard/internal/domain"
	"github.com/lumenboard/lumenboard/internal/service"
)

// queryPreviewMaxChars bounds the cache key echoed by the stats endpoint.
const queryPreviewMaxChars = 50

type SimilarityService interface {
	Similar(ctx context.Context, entityID string, opts domain.SearchOptions) (*service.SimilarOutput, error)
	CacheStats() service.CacheStats
	ClearCache()
}

type SimilarityHandler struct {
	svc SimilarityService
}

func NewSimilarityHandler(svc SimilarityService) *SimilarityHandler {
	return &SimilarityHandler{svc: svc}
}

type SimilarRequest struct {
	EntityID     string   `json:"entityId"`
	TopK         int      `json:"topK,omitempty"`
	Domain       string   `json:"domain,omitempty"`
	EntityType   string   `json:"entityType,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty"`
	UsePrecision bool     `json:"usePrecision,omitempty"`
}

type EntityResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	EntityType  string `json:"entityType"`
	Domain      string `json:"domain"`
}

type SearchResultResponse struct {
	EntityID   string         `json:"entityId"`
	Entity     EntityResponse `json:"entity"`
	Similarity float64        `json:"similarity"`
	MatchType  string         `json:"matchType"`
}

type SimilarQueryResponse struct {
	EntityID   string `json:"entityId"`
	EntityName string `json:"entityName"`
}

type SimilarMetaResponse struct {
	Count     int     `json:"count"`
	TopK      int     `json:"topK"`
	Threshold float64 `json:"threshold"`
}

type SimilarResponse struct {
	Results []SearchResultResponse `json:"results"`
	Query   SimilarQueryResponse   `json:"query"`
	Meta    SimilarMetaResponse    `json:"meta"`
}

// Similar handles POST /similar.
func (h *SimilarityHandler) Similar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.EntityID == "" {
		api.Error(w, http.StatusBadRequest, "entityId is required")
		return
	}

	opts := domain.SearchOptions{
		TopK:         req.TopK,
		Domain:       req.Domain,
		EntityType:   req.EntityType,
		UsePrecision: req.UsePrecision,
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}

	output, err := h.svc.Similar(r.Context(), req.EntityID, opts)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]SearchResultResponse, len(output.Results))
	for i, res := range output.Results {
		results[i] = SearchResultResponse{
			EntityID: res.EntityID,
			Entity: EntityResponse{
				Name:        res.Metadata.Name,
				Description: res.Metadata.Description,
				EntityType:  res.Metadata.EntityType,
				Domain:      res.Metadata.Domain,
			},
			Similarity: res.Similarity,
			MatchType:  string(res.MatchType),
		}
	}

	api.JSON(w, http.StatusOK, SimilarResponse{
		Results: results,
		Query: SimilarQueryResponse{
			EntityID:   output.Query.EntityID,
			EntityName: output.Query.EntityName,
		},
		Meta: SimilarMetaResponse{
			Count:     len(results),
			TopK:      output.Options.TopK,
			Threshold: output.Options.Threshold,
		},
	})
}

type CacheEntryResponse struct {
	Query        string  `json:"query"`
	AgeMinutes   float64 `json:"ageMinutes"`
	ResultsCount int     `json:"resultsCount"`
}

type CacheStatsResponse struct {
	Success bool `json:"success"`
	Stats   struct {
		CacheSize int                  `json:"cacheSize"`
		Entries   []CacheEntryResponse `json:"entries"`
	} `json:"stats"`
}

// CacheStats handles GET /cache-stats.
func (h *SimilarityHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.CacheStats()

	var resp CacheStatsResponse
	resp.Success = true
	resp.Stats.CacheSize = stats.Size
	resp.Stats.Entries = make([]CacheEntryResponse, len(stats.Entries))
	for i, e := range stats.Entries {
		query := e.Query
		if len(query) > queryPreviewMaxChars {
			query = query[:queryPreviewMaxChars]
		}
		resp.Stats.Entries[i] = CacheEntryResponse{
			Query:        query,
			AgeMinutes:   e.Age.Minutes(),
			ResultsCount: e.ResultsCount,
		}
	}

	api.JSON(w, http.StatusOK, resp)
}

type CacheClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ClearCache handles DELETE /cache-stats.
func (h *SimilarityHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCache()
	api.JSON(w, http.StatusOK, CacheClearResponse{
		Success: true,
		Message: "search cache cleared",
	})
}
