package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/lumenboard/lumenboard/internal/api"
	"github.com/lumenboard/lumenboard/internal/service"
)

// uploadMemoryLimit caps the multipart parse buffer; larger files spill to disk.
const uploadMemoryLimit = 10 << 20

type DocumentProcessorService interface {
	Process(ctx context.Context, input service.ProcessInput) (string, error)
}

type UploadHandler struct {
	processor DocumentProcessorService
}

func NewUploadHandler(processor DocumentProcessorService) *UploadHandler {
	return &UploadHandler{processor: processor}
}

type UploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
}

// Upload handles POST /upload (multipart form: file, sourceId).
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	sourceID := r.FormValue("sourceId")
	if sourceID == "" {
		api.Error(w, http.StatusBadRequest, "sourceId is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	input := service.ProcessInput{
		Content:     content,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SourceID:    sourceID,
		Domain:      r.FormValue("domain"),
		EntityType:  r.FormValue("entityType"),
	}

	documentID, err := h.processor.Process(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, UploadResponse{
		Success:    true,
		DocumentID: documentID,
	})
}
