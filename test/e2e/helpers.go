//go:build e2e

package e2e

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenboard/lumenboard/internal/api/handlers"
	"github.com/lumenboard/lumenboard/internal/extract"
	"github.com/lumenboard/lumenboard/internal/repository"
	"github.com/lumenboard/lumenboard/internal/server"
	"github.com/lumenboard/lumenboard/internal/service"
	"github.com/lumenboard/lumenboard/internal/storage"
	"github.com/lumenboard/lumenboard/internal/testutil"
)

// stubEmbedder produces deterministic vectors so similarity ordering is
// stable without a real provider. Chunks mentioning the same keyword land
// close together.
type stubEmbedder struct {
	dimensions int
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)
	for i, r := range text {
		vec[(i+int(r))%s.dimensions] += float32(r%13) + 1
	}
	return vec, nil
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	RustFSC    *testutil.RustFSContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	S3Client   *storage.S3Client
	Store      *service.VectorStore
	HTTPClient *http.Client
}

// SetupE2EEnv creates a full test environment: containers, migrations, and an
// in-process HTTP server wired with real repositories and a stub embedder.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	embeddingRepo := repository.NewEmbeddingRepository(pool)
	sourceRepo := repository.NewSourceRepository(pool)

	store := service.NewVectorStore(embeddingRepo)
	if err := store.Open(ctx); err != nil {
		t.Fatalf("failed to open vector store: %v", err)
	}

	cache := service.NewSearchCache(service.DefaultCacheTTL)
	searchSvc := service.NewSearchService(store, cache)

	processor := service.NewDocumentProcessorWithArchive(
		extract.NewExtractor(),
		&stubEmbedder{dimensions: 1536},
		store,
		sourceRepo,
		s3Client,
	)

	router := server.NewRouter(server.RouterConfig{
		SimilarityHandler: handlers.NewSimilarityHandler(searchSvc),
		UploadHandler:     handlers.NewUploadHandler(processor),
		SourceHandler:     handlers.NewSourceHandler(sourceRepo),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		Server:     srv,
		S3Client:   s3Client,
		Store:      store,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// PostJSON sends a JSON request and returns the raw response.
func (e *E2ETestEnv) PostJSON(path string, body interface{}) (*http.Response, []byte) {
	payload, err := json.Marshal(body)
	if err != nil {
		e.T.Fatalf("failed to marshal request: %v", err)
	}

	resp, err := e.HTTPClient.Post(e.Server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

// Get sends a GET request and returns the raw response.
func (e *E2ETestEnv) Get(path string) (*http.Response, []byte) {
	resp, err := e.HTTPClient.Get(e.Server.URL + path)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

// Delete sends a DELETE request and returns the raw response.
func (e *E2ETestEnv) Delete(path string) (*http.Response, []byte) {
	req, err := http.NewRequest(http.MethodDelete, e.Server.URL+path, nil)
	if err != nil {
		e.T.Fatalf("failed to build request: %v", err)
	}
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

// UploadDocument posts a multipart upload and returns the raw response.
func (e *E2ETestEnv) UploadDocument(filename string, content []byte, fields map[string]string) (*http.Response, []byte) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		e.T.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		e.T.Fatalf("failed to write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			e.T.Fatalf("failed to write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		e.T.Fatalf("failed to close writer: %v", err)
	}

	resp, err := e.HTTPClient.Post(e.Server.URL+"/upload", writer.FormDataContentType(), &buf)
	if err != nil {
		e.T.Fatalf("upload failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}
	return resp, raw
}

// BuildDOCX assembles a minimal Word document with one paragraph per entry.
func BuildDOCX(t *testing.T, paragraphs []string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create document.xml: %v", err)
	}

	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&doc, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	doc.WriteString(`</w:body></w:document>`)

	if _, err := f.Write(doc.Bytes()); err != nil {
		t.Fatalf("failed to write document.xml: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}
