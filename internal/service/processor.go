package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumenboard/lumenboard/internal/domain"
	"github.com/lumenboard/lumenboard/internal/extract"
	"github.com/lumenboard/lumenboard/internal/telemetry"
)

// ChunkExtractor converts raw document bytes into ordered text chunks.
type ChunkExtractor interface {
	ExtractChunks(content []byte, format extract.Format) ([]string, error)
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorUpserter defines the vector store operations the processor uses.
type VectorUpserter interface {
	Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error
}

// SourceStatusRepository is the narrow contract with the external metadata
// store: read/write ingestion status, nothing else.
type SourceStatusRepository interface {
	SetStatus(ctx context.Context, sourceID string, status domain.SourceStatus) error
}

// DocumentArchive stores raw uploaded documents. Optional.
type DocumentArchive interface {
	PutDocument(ctx context.Context, key string, content []byte, contentType string) error
}

const (
	defaultEntityType = "chunk"
	defaultDomainTag  = "knowledge"

	// chunkDescriptionMaxChars bounds the metadata excerpt per chunk.
	chunkDescriptionMaxChars = 200
)

// ProcessInput describes one uploaded document.
type ProcessInput struct {
	Content     []byte
	Filename    string
	ContentType string
	SourceID    string
	Domain      string
	EntityType  string
}

// DocumentProcessor orchestrates extraction, embedding, and storage for one
// uploaded document and reports per-source lifecycle status.
type DocumentProcessor struct {
	extractor ChunkExtractor
	embedder  EmbeddingClient
	store     VectorUpserter
	sources   SourceStatusRepository
	archive   DocumentArchive
}

// NewDocumentProcessor creates a new DocumentProcessor instance
func NewDocumentProcessor(
	extractor ChunkExtractor,
	embedder EmbeddingClient,
	store VectorUpserter,
	sources SourceStatusRepository,
) *DocumentProcessor {
	return NewDocumentProcessorWithArchive(extractor, embedder, store, sources, nil)
}

// NewDocumentProcessorWithArchive creates a DocumentProcessor that also
// archives raw document bytes before processing.
func NewDocumentProcessorWithArchive(
	extractor ChunkExtractor,
	embedder EmbeddingClient,
	store VectorUpserter,
	sources SourceStatusRepository,
	archive DocumentArchive,
) *DocumentProcessor {
	return &DocumentProcessor{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		sources:   sources,
		archive:   archive,
	}
}

// Process ingests one document under the given source ID and returns the
// generated document ID. The source is marked processing at the start and
// ends in exactly one of completed/failed. Chunks are embedded and stored in
// order, one at a time; on any failure the run stops, the source is marked
// failed, and the original error is returned. Chunks stored before the
// failure are not rolled back; a retry under the same source ID overwrites
// them because chunk entity IDs are deterministic and the store upserts.
func (p *DocumentProcessor) Process(ctx context.Context, input ProcessInput) (string, error) {
	if input.SourceID == "" {
		return "", domain.ErrMissingSourceID
	}
	if len(input.Content) == 0 {
		return "", domain.ErrMissingFile
	}

	format, err := extract.ParseFormat(input.Filename)
	if err != nil {
		return "", err
	}

	ctx, span := telemetry.StartSpan(ctx, "DocumentProcessor.Process", telemetry.SpanAttributes{
		SourceID:  input.SourceID,
		Operation: "ingest",
	})
	defer span.End()

	documentID := uuid.NewString()

	if err := p.sources.SetStatus(ctx, input.SourceID, domain.SourceStatusProcessing); err != nil {
		return "", err
	}

	if err := p.run(ctx, input, format, documentID); err != nil {
		span.SetError(err)
		if statusErr := p.sources.SetStatus(ctx, input.SourceID, domain.SourceStatusFailed); statusErr != nil {
			telemetry.CaptureError(ctx, statusErr)
		}
		return "", err
	}

	if err := p.sources.SetStatus(ctx, input.SourceID, domain.SourceStatusCompleted); err != nil {
		return "", err
	}

	return documentID, nil
}

func (p *DocumentProcessor) run(ctx context.Context, input ProcessInput, format extract.Format, documentID string) error {
	if p.archive != nil {
		key := fmt.Sprintf("sources/%s/%s", input.SourceID, documentID)
		if err := p.archive.PutDocument(ctx, key, input.Content, input.ContentType); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to archive document", err)
		}
	}

	chunks, err := p.extractor.ExtractChunks(input.Content, format)
	if err != nil {
		return err
	}

	entityType := input.EntityType
	if entityType == "" {
		entityType = defaultEntityType
	}
	domainTag := input.Domain
	if domainTag == "" {
		domainTag = defaultDomainTag
	}

	now := time.Now().UTC()
	for i, chunk := range chunks {
		vector, err := p.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return err
		}

		rec := domain.NewEmbeddingRecord(
			chunkEntityID(input.SourceID, i),
			input.SourceID,
			vector,
			domain.EntityMetadata{
				Name:        fmt.Sprintf("%s #%d", input.Filename, i+1),
				Description: chunkExcerpt(chunk),
				EntityType:  entityType,
				Domain:      domainTag,
			},
			now,
		)

		if err := p.store.Upsert(ctx, rec); err != nil {
			return err
		}
	}

	return nil
}

// chunkEntityID is deterministic per source and chunk index so re-ingestion
// replaces rather than duplicates.
func chunkEntityID(sourceID string, index int) string {
	return fmt.Sprintf("%s:%04d", sourceID, index)
}

func chunkExcerpt(chunk string) string {
	runes := []rune(chunk)
	if len(runes) <= chunkDescriptionMaxChars {
		return chunk
	}
	return string(runes[:chunkDescriptionMaxChars])
}
