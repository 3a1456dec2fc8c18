package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumenboard/lumenboard/internal/domain"
	"github.com/lumenboard/lumenboard/internal/extract"
)

// MockChunkExtractor is a mock implementation of ChunkExtractor
type MockChunkExtractor struct {
	mock.Mock
}

func (m *MockChunkExtractor) ExtractChunks(content []byte, format extract.Format) ([]string, error) {
	args := m.Called(content, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// recordingUpserter collects stored records in order.
type recordingUpserter struct {
	records []*domain.EmbeddingRecord
	failAt  int // 1-based index of the call that fails; 0 means never
}

func (u *recordingUpserter) Upsert(ctx context.Context, rec *domain.EmbeddingRecord) error {
	if u.failAt > 0 && len(u.records)+1 == u.failAt {
		return errors.New("upsert failed")
	}
	u.records = append(u.records, rec)
	return nil
}

// statusRecorder tracks the source status transition sequence.
type statusRecorder struct {
	statuses []domain.SourceStatus
	failOn   domain.SourceStatus
}

func (r *statusRecorder) SetStatus(ctx context.Context, sourceID string, status domain.SourceStatus) error {
	if r.failOn != "" && status == r.failOn {
		return errors.New("status write failed")
	}
	r.statuses = append(r.statuses, status)
	return nil
}

// fakeArchive stores documents in memory.
type fakeArchive struct {
	objects map[string][]byte
	putErr  error
}

func (a *fakeArchive) PutDocument(ctx context.Context, key string, content []byte, contentType string) error {
	if a.putErr != nil {
		return a.putErr
	}
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[key] = content
	return nil
}

func TestDocumentProcessor_ProcessHappyPath(t *testing.T) {
	ctx := context.Background()
	content := []byte("%PDF-1.4 fake")

	extractor := new(MockChunkExtractor)
	extractor.On("ExtractChunks", content, extract.FormatPDF).
		Return([]string{"first chunk text", "second chunk text"}, nil)

	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "first chunk text").Return([]float32{1, 0}, nil)
	embedder.On("GenerateEmbedding", mock.Anything, "second chunk text").Return([]float32{0, 1}, nil)

	upserter := &recordingUpserter{}
	statuses := &statusRecorder{}

	processor := NewDocumentProcessor(extractor, embedder, upserter, statuses)
	documentID, err := processor.Process(ctx, ProcessInput{
		Content:  content,
		Filename: "report.pdf",
		SourceID: "src-1",
		Domain:   "energy",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, documentID)

	assert.Equal(t, []domain.SourceStatus{
		domain.SourceStatusProcessing,
		domain.SourceStatusCompleted,
	}, statuses.statuses)

	require.Len(t, upserter.records, 2)
	assert.Equal(t, "src-1:0000", upserter.records[0].EntityID)
	assert.Equal(t, "src-1:0001", upserter.records[1].EntityID)
	assert.Equal(t, "src-1", upserter.records[0].SourceID)
	assert.Equal(t, "report.pdf #1", upserter.records[0].Metadata.Name)
	assert.Equal(t, "first chunk text", upserter.records[0].Metadata.Description)
	assert.Equal(t, "energy", upserter.records[0].Metadata.Domain)
	assert.Equal(t, "chunk", upserter.records[0].Metadata.EntityType, "entity type defaults when unset")

	extractor.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestDocumentProcessor_ProcessValidation(t *testing.T) {
	processor := NewDocumentProcessor(new(MockChunkExtractor), new(MockEmbeddingClient), &recordingUpserter{}, &statusRecorder{})

	t.Run("missing source ID", func(t *testing.T) {
		_, err := processor.Process(context.Background(), ProcessInput{Content: []byte("x"), Filename: "a.pdf"})
		assert.ErrorIs(t, err, domain.ErrMissingSourceID)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := processor.Process(context.Background(), ProcessInput{Filename: "a.pdf", SourceID: "src"})
		assert.ErrorIs(t, err, domain.ErrMissingFile)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := processor.Process(context.Background(), ProcessInput{Content: []byte("x"), Filename: "a.txt", SourceID: "src"})
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeUnsupportedFormat, domainErr.Code)
	})
}

func TestDocumentProcessor_MidRunFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	content := []byte("doc")

	extractor := new(MockChunkExtractor)
	extractor.On("ExtractChunks", content, extract.FormatPDF).
		Return([]string{"one", "two", "three"}, nil)

	providerErr := domain.ErrRateLimited
	embedder := new(MockEmbeddingClient)
	embedder.On("GenerateEmbedding", mock.Anything, "one").Return([]float32{1}, nil)
	embedder.On("GenerateEmbedding", mock.Anything, "two").Return(nil, providerErr)

	upserter := &recordingUpserter{}
	statuses := &statusRecorder{}

	processor := NewDocumentProcessor(extractor, embedder, upserter, statuses)
	_, err := processor.Process(ctx, ProcessInput{Content: content, Filename: "doc.pdf", SourceID: "src-2"})
	assert.ErrorIs(t, err, providerErr)

	assert.Equal(t, []domain.SourceStatus{
		domain.SourceStatusProcessing,
		domain.SourceStatusFailed,
	}, statuses.statuses)

	// the chunk stored before the failure stays; retries overwrite it
	require.Len(t, upserter.records, 1)
	assert.Equal(t, "src-2:0000", upserter.records[0].EntityID)
	embedder.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, "three")
}

func TestDocumentProcessor_ExtractionFailureMarksFailed(t *testing.T) {
	extractor := new(MockChunkExtractor)
	extractor.On("ExtractChunks", mock.Anything, extract.FormatDOCX).
		Return(nil, domain.ErrUnsupportedFormat)

	statuses := &statusRecorder{}
	processor := NewDocumentProcessor(extractor, new(MockEmbeddingClient), &recordingUpserter{}, statuses)

	_, err := processor.Process(context.Background(), ProcessInput{Content: []byte("not a zip"), Filename: "a.docx", SourceID: "src-3"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Equal(t, domain.SourceStatusFailed, statuses.statuses[len(statuses.statuses)-1])
}

func TestDocumentProcessor_EmptyDocumentCompletes(t *testing.T) {
	extractor := new(MockChunkExtractor)
	extractor.On("ExtractChunks", mock.Anything, extract.FormatPDF).Return([]string{}, nil)

	statuses := &statusRecorder{}
	upserter := &recordingUpserter{}
	processor := NewDocumentProcessor(extractor, new(MockEmbeddingClient), upserter, statuses)

	documentID, err := processor.Process(context.Background(), ProcessInput{Content: []byte("x"), Filename: "empty.pdf", SourceID: "src-4"})
	require.NoError(t, err)
	assert.NotEmpty(t, documentID)
	assert.Empty(t, upserter.records)
	assert.Equal(t, domain.SourceStatusCompleted, statuses.statuses[len(statuses.statuses)-1])
}

func TestDocumentProcessor_ArchivesBeforeProcessing(t *testing.T) {
	content := []byte("doc bytes")

	extractor := new(MockChunkExtractor)
	extractor.On("ExtractChunks", content, extract.FormatPDF).Return([]string{}, nil)

	archive := &fakeArchive{}
	processor := NewDocumentProcessorWithArchive(extractor, new(MockEmbeddingClient), &recordingUpserter{}, &statusRecorder{}, archive)

	documentID, err := processor.Process(context.Background(), ProcessInput{Content: content, Filename: "a.pdf", SourceID: "src-5", ContentType: "application/pdf"})
	require.NoError(t, err)

	require.Len(t, archive.objects, 1)
	stored, ok := archive.objects["sources/src-5/"+documentID]
	require.True(t, ok)
	assert.Equal(t, content, stored)
}

func TestDocumentProcessor_ArchiveFailureMarksFailed(t *testing.T) {
	extractor := new(MockChunkExtractor)

	archive := &fakeArchive{putErr: errors.New("bucket unavailable")}
	statuses := &statusRecorder{}
	processor := NewDocumentProcessorWithArchive(extractor, new(MockEmbeddingClient), &recordingUpserter{}, statuses, archive)

	_, err := processor.Process(context.Background(), ProcessInput{Content: []byte("x"), Filename: "a.pdf", SourceID: "src-6"})
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeStorage, domainErr.Code)
	assert.Equal(t, domain.SourceStatusFailed, statuses.statuses[len(statuses.statuses)-1])
	extractor.AssertNotCalled(t, "ExtractChunks", mock.Anything, mock.Anything)
}

func TestChunkExcerpt(t *testing.T) {
	short := "short description"
	assert.Equal(t, short, chunkExcerpt(short))

	long := strings.Repeat("ab", 200)
	excerpt := chunkExcerpt(long)
	assert.Equal(t, 200, len([]rune(excerpt)))
	assert.True(t, strings.HasPrefix(long, excerpt))
}
