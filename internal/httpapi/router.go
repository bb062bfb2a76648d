package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter returns API router. metricsHandler is mounted on /metrics when not nil
func NewRouter(h *ReconstructHandler, allowedOrigins []string, metricsHandler http.Handler) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Reconstruction-ID"},
	}))

	r.Get("/health", Health)
	r.Post("/v1/reconstruct", h.Reconstruct)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	return r
}
