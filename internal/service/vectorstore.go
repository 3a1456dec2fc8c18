package service

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/lumenboard/lumenboard/internal/domain"
)

// EmbeddingRecordRepository defines the durable layer behind the vector
// store. Each record is replaced independently; the store is never rewritten
// wholesale.
type EmbeddingRecordRepository interface {
	Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error
	ListAll(ctx context.Context) ([]*domain.EmbeddingRecord, error)
}

// VectorStore answers nearest-neighbor queries over an in-memory index of
// embedding records, write-through to a durable repository. Queries scan all
// candidates (O(n*D)); fine at the corpus sizes this system serves.
type VectorStore struct {
	repo EmbeddingRecordRepository

	mu      sync.RWMutex
	records map[string]*domain.EmbeddingRecord
}

// NewVectorStore creates an empty VectorStore backed by repo. Call Open to
// load persisted records before serving queries.
func NewVectorStore(repo EmbeddingRecordRepository) *VectorStore {
	return &VectorStore{
		repo:    repo,
		records: make(map[string]*domain.EmbeddingRecord),
	}
}

// Open loads every persisted record into the index.
func (s *VectorStore) Open(ctx context.Context) error {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*domain.EmbeddingRecord, len(records))
	for _, rec := range records {
		s.records[rec.EntityID] = rec
	}
	return nil
}

// Close releases the in-memory index. The durable layer is untouched.
func (s *VectorStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*domain.EmbeddingRecord)
}

// Len returns the number of indexed records.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Upsert persists the record and replaces any indexed record with the same
// entity ID. The in-memory swap is atomic per entity: a concurrent query
// observes either the old record or the new one, never a partial write.
func (s *VectorStore) Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error {
	if err := domain.ValidateEmbeddingRecord(rec); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid embedding record", err)
	}

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[rec.EntityID] = rec
	s.mu.Unlock()
	return nil
}

// Get returns the record for the given entity ID.
func (s *VectorStore) Get(ctx context.Context, entityID string) (*domain.EmbeddingRecord, error) {
	s.mu.RLock()
	rec, ok := s.records[entityID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return rec, nil
}

// FindSimilar computes cosine similarity between the source entity's vector
// and every candidate matching the optional domain/entityType filters, drops
// candidates below the threshold, and returns at most TopK results ordered
// by similarity descending (ties broken by ascending entity ID). The source
// entity is excluded from its own result set. Fails with the not-found error
// class when the entity is not indexed.
func (s *VectorStore) FindSimilar(ctx context.Context, entityID string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	source, ok := s.records[entityID]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}

	results := make([]domain.SearchResult, 0, opts.TopK)
	for id, candidate := range s.records {
		if id == entityID {
			continue
		}
		if opts.Domain != "" && candidate.Metadata.Domain != opts.Domain {
			continue
		}
		if opts.EntityType != "" && candidate.Metadata.EntityType != opts.EntityType {
			continue
		}

		similarity := cosineSimilarity(source.Vector, candidate.Vector, opts.UsePrecision)
		if similarity < opts.Threshold {
			continue
		}

		matchType := domain.MatchTypeApproximate
		if similarity >= domain.ExactMatchThreshold {
			matchType = domain.MatchTypeExact
		}

		results = append(results, domain.SearchResult{
			EntityID:   id,
			Metadata:   candidate.Metadata,
			Similarity: similarity,
			MatchType:  matchType,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].EntityID < results[j].EntityID
	})

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	return results, nil
}

// cosineSimilarity returns the cosine similarity between a and b, clamped to
// [0, 1]. The precision flag selects float64 accumulation over the float32
// fast path; both produce the same ordering for well-separated scores.
func cosineSimilarity(a, b []float32, usePrecision bool) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var sim float64
	if usePrecision {
		var dot, normA, normB float64
		for i := 0; i < n; i++ {
			av := float64(a[i])
			bv := float64(b[i])
			dot += av * bv
			normA += av * av
			normB += bv * bv
		}
		if normA == 0 || normB == 0 {
			return 0
		}
		sim = dot / (math.Sqrt(normA) * math.Sqrt(normB))
	} else {
		var dot, normA, normB float32
		for i := 0; i < n; i++ {
			dot += a[i] * b[i]
			normA += a[i] * a[i]
			normB += b[i] * b[i]
		}
		if normA == 0 || normB == 0 {
			return 0
		}
		sim = float64(dot) / (math.Sqrt(float64(normA)) * math.Sqrt(float64(normB)))
	}

	// Cosine lands in [-1, 1]; scores below zero carry no ranking value here.
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
