package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenboard/lumenboard/internal/api"
	"github.com/lumenboard/lumenboard/internal/api/handlers"
	"github.com/lumenboard/lumenboard/internal/api/middleware"
)

type RouterConfig struct {
	SimilarityHandler *handlers.SimilarityHandler
	UploadHandler     *handlers.UploadHandler
	SourceHandler     *handlers.SourceHandler
}

// maxBodyBytes bounds request bodies; uploads carry whole documents.
const maxBodyBytes int64 = 25 * 1024 * 1024

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/similar", cfg.SimilarityHandler.Similar)
	r.Post("/upload", cfg.UploadHandler.Upload)

	r.Route("/cache-stats", func(r chi.Router) {
		r.Get("/", cfg.SimilarityHandler.CacheStats)
		r.Delete("/", cfg.SimilarityHandler.ClearCache)
	})

	r.Get("/sources/{id}", cfg.SourceHandler.Get)

	return r
}
