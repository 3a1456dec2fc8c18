package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumenboard/lumenboard/internal/domain"
	"github.com/lumenboard/lumenboard/internal/service"
)

type MockDocumentProcessor struct {
	mock.Mock
}

func (m *MockDocumentProcessor) Process(ctx context.Context, input service.ProcessInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler_Success(t *testing.T) {
	mockProc := new(MockDocumentProcessor)
	handler := NewUploadHandler(mockProc)

	content := []byte("%PDF-1.4 content")
	mockProc.On("Process", mock.Anything, mock.MatchedBy(func(input service.ProcessInput) bool {
		return input.SourceID == "src-1" &&
			input.Filename == "report.pdf" &&
			bytes.Equal(input.Content, content) &&
			input.Domain == "energy" &&
			input.EntityType == "chunk"
	})).Return("doc-123", nil)

	req := multipartUpload(t, "report.pdf", content, map[string]string{
		"sourceId":   "src-1",
		"domain":     "energy",
		"entityType": "chunk",
	})
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "doc-123", resp.DocumentID)
	mockProc.AssertExpectations(t)
}

func TestUploadHandler_MissingSourceID(t *testing.T) {
	handler := NewUploadHandler(new(MockDocumentProcessor))

	req := multipartUpload(t, "report.pdf", []byte("x"), nil)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sourceId is required", resp.Error)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	handler := NewUploadHandler(new(MockDocumentProcessor))

	req := multipartUpload(t, "", nil, map[string]string{"sourceId": "src-1"})
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "file is required", resp.Error)
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	handler := NewUploadHandler(new(MockDocumentProcessor))

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte(`{"sourceId":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadHandler_ProcessorErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusBadRequest, domain.ErrCodeUnsupportedFormat},
		{"provider failure", domain.ErrEmbeddingProvider, http.StatusBadGateway, domain.ErrCodeEmbeddingProvider},
		{"throttled", domain.ErrRateLimited, http.StatusTooManyRequests, domain.ErrCodeRateLimited},
		{"storage failure", domain.ErrStorageOperationFail, http.StatusInternalServerError, domain.ErrCodeStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProc := new(MockDocumentProcessor)
			mockProc.On("Process", mock.Anything, mock.Anything).Return("", tt.err)
			handler := NewUploadHandler(mockProc)

			req := multipartUpload(t, "report.pdf", []byte("x"), map[string]string{"sourceId": "src-1"})
			rec := httptest.NewRecorder()
			handler.Upload(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
