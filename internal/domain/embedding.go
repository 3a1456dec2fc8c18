package domain

import (
	"fmt"
	"time"
)

// MatchType classifies a similarity result.
type MatchType string

const (
	// MatchTypeExact marks near-identical vectors (similarity >= ExactMatchThreshold).
	MatchTypeExact MatchType = "exact"
	// MatchTypeApproximate marks every other match above the query threshold.
	MatchTypeApproximate MatchType = "approximate"
)

// ExactMatchThreshold is the similarity above which two vectors are
// considered effectively identical.
const ExactMatchThreshold = 0.999

// EntityMetadata describes the entity an embedding was generated for.
type EntityMetadata struct {
	Name        string
	Description string
	EntityType  string
	Domain      string
}

// EmbeddingRecord is one stored embedding. Records are never mutated in
// place: re-ingestion replaces the record wholesale under the same EntityID.
type EmbeddingRecord struct {
	EntityID  string
	SourceID  string
	Vector    []float32
	Metadata  EntityMetadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEmbeddingRecord creates a new EmbeddingRecord instance
func NewEmbeddingRecord(entityID, sourceID string, vector []float32, metadata EntityMetadata, createdAt time.Time) *EmbeddingRecord {
	return &EmbeddingRecord{
		EntityID:  entityID,
		SourceID:  sourceID,
		Vector:    vector,
		Metadata:  metadata,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ValidateEmbeddingRecord validates an EmbeddingRecord instance
func ValidateEmbeddingRecord(r *EmbeddingRecord) error {
	if r == nil {
		return fmt.Errorf("embedding record cannot be nil")
	}

	if r.EntityID == "" {
		return fmt.Errorf("embedding record EntityID is required")
	}

	if len(r.Vector) == 0 {
		return fmt.Errorf("embedding record Vector is required")
	}

	return nil
}

// SearchResult is one scored entry of a similarity query. Derived, never
// persisted.
type SearchResult struct {
	EntityID   string
	Metadata   EntityMetadata
	Similarity float64
	MatchType  MatchType
}

// Default similarity query parameters.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

// SearchOptions enumerates every similarity query knob with its default.
// Domain and EntityType are filters; empty means unfiltered.
type SearchOptions struct {
	TopK         int
	Domain       string
	EntityType   string
	Threshold    float64
	UsePrecision bool
}

// DefaultSearchOptions returns the documented query defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		TopK:      DefaultTopK,
		Threshold: DefaultThreshold,
	}
}

// Normalize fills zero-valued knobs with their defaults.
func (o SearchOptions) Normalize() SearchOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}
