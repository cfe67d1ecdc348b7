package server

import (
	"net/http"

	"github.com/akolanti/DocAssistant/internal/adapter/utils"
	"github.com/akolanti/DocAssistant/internal/handlers"
	"github.com/akolanti/DocAssistant/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the API behind the middleware pipeline. mcpHandler may be
// nil.
func NewRouter(h *handlers.Handler, pipeline *middleware.Pipeline, mcpHandler http.Handler) *chi.Mux {
	r := utils.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(pipeline.Wrap)

		r.Get("/", h.RootHandler)
		r.Get("/health", h.HealthHandler)

		r.Route("/upload", func(r chi.Router) {
			r.Post("/", h.UploadHandler)
			r.Post("/async", h.UploadAsyncHandler)
			r.Get("/stats", h.StatsHandler)
			r.Get("/list-documents", h.ListDocumentsHandler)
			r.Get("/debug-embeddings", h.DebugEmbeddingsHandler)
			r.Delete("/chunks", h.DeleteChunksHandler)
			r.Delete("/clear-all", h.ClearAllHandler)
		})

		r.Route("/ask", func(r chi.Router) {
			r.Post("/", h.AskHandler)
			r.Post("/simple", h.AskSimpleHandler)
			r.Post("/async", h.AskAsyncHandler)
			r.Get("/health", h.AskHealthHandler)
		})

		r.Get("/status/{id}", h.GetStatusHandler)

		if mcpHandler != nil {
			r.Handle("/mcp", mcpHandler)
		}
	})
	return r
}
