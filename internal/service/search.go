package service

import (
	"context"

	"github.com/lumenboard/lumenboard/internal/domain"
	"github.com/lumenboard/lumenboard/internal/telemetry"
)

// SimilaritySearcher defines the vector store operations the query service
// depends on.
type SimilaritySearcher interface {
	FindSimilar(ctx context.Context, entityID string, opts domain.SearchOptions) ([]domain.SearchResult, error)
	Get(ctx context.Context, entityID string) (*domain.EmbeddingRecord, error)
}

// SimilarQuery echoes the resolved query context back to the caller.
type SimilarQuery struct {
	EntityID   string
	EntityName string
}

// SimilarOutput is the result of one similarity query.
type SimilarOutput struct {
	Results []domain.SearchResult
	Query   SimilarQuery
	Options domain.SearchOptions
	Cached  bool
}

// SearchService is the request-facing similarity façade: cache-first lookup
// over the vector store. A cache miss triggers exactly one underlying scan;
// only successful results are cached.
type SearchService struct {
	store    SimilaritySearcher
	cache    *SearchCache
	defaults domain.SearchOptions
}

// NewSearchService creates a new SearchService instance
func NewSearchService(store SimilaritySearcher, cache *SearchCache) *SearchService {
	return NewSearchServiceWithDefaults(store, cache, domain.DefaultSearchOptions())
}

// NewSearchServiceWithDefaults creates a SearchService whose unset query
// knobs fall back to the given defaults instead of the package constants.
func NewSearchServiceWithDefaults(store SimilaritySearcher, cache *SearchCache, defaults domain.SearchOptions) *SearchService {
	return &SearchService{store: store, cache: cache, defaults: defaults.Normalize()}
}

// Similar returns entities similar to the given one. NotFound from the store
// is surfaced directly; no fallback result is substituted for a missing
// entity.
func (s *SearchService) Similar(ctx context.Context, entityID string, opts domain.SearchOptions) (*SimilarOutput, error) {
	if entityID == "" {
		return nil, domain.ErrMissingEntityID
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.Similar", telemetry.SpanAttributes{
		EntityID:  entityID,
		Operation: "similar",
	})
	defer span.End()

	if opts.TopK <= 0 {
		opts.TopK = s.defaults.TopK
	}
	if opts.Threshold <= 0 {
		opts.Threshold = s.defaults.Threshold
	}
	opts = opts.Normalize()
	key := CacheKey(entityID, opts)

	if results, ok := s.cache.Get(key); ok {
		return s.buildOutput(ctx, entityID, opts, results, true), nil
	}

	results, err := s.store.FindSimilar(ctx, entityID, opts)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	s.cache.Put(key, results)

	return s.buildOutput(ctx, entityID, opts, results, false), nil
}

func (s *SearchService) buildOutput(ctx context.Context, entityID string, opts domain.SearchOptions, results []domain.SearchResult, cached bool) *SimilarOutput {
	entityName := entityID
	if rec, err := s.store.Get(ctx, entityID); err == nil && rec.Metadata.Name != "" {
		entityName = rec.Metadata.Name
	}

	return &SimilarOutput{
		Results: results,
		Query: SimilarQuery{
			EntityID:   entityID,
			EntityName: entityName,
		},
		Options: opts,
		Cached:  cached,
	}
}

// CacheStats exposes the cache snapshot for the stats endpoint.
func (s *SearchService) CacheStats() CacheStats {
	return s.cache.Stats()
}

// ClearCache purges the search cache.
func (s *SearchService) ClearCache() {
	s.cache.Clear()
}
