package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"panorama-rule-finder/internal/parser"
)

// SnapshotSource hands out the current policy snapshot. The file-backed
// cache and the database provider both satisfy it.
type SnapshotSource interface {
	Get() (*parser.Snapshot, error)
	Invalidate()
}

// NewRouter creates the HTTP router. cache may be nil when the snapshot
// source is not file-backed; config upload is disabled in that case.
func NewRouter(source SnapshotSource, cache *parser.SnapshotCache, uploadDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(logging)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	h := &handler{source: source, cache: cache, uploadDir: uploadDir}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/matches", h.Matches)
		r.Get("/snapshot", h.Snapshot)
		r.Post("/config", h.UploadConfig)
	})

	return r
}
