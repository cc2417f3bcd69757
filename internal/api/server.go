// Package api is the viewer's HTTP surface: it reads the archive document
// and run ledger and renders nothing itself.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
	"github.com/kmaurinjones/joyfulbytes/internal/store"
)

// ArchiveReader provides read access to the archive document.
type ArchiveReader interface {
	Read() (model.Archive, error)
}

// Server holds the viewer HTTP handlers and dependencies.
type Server struct {
	archive   ArchiveReader
	runs      store.RunReader
	imagesDir string
	router    chi.Router
}

// New creates a viewer server. runs may be nil when no ledger is available;
// the run-history endpoints then report 404.
func New(archive ArchiveReader, runs store.RunReader, imagesDir string) *Server {
	s := &Server{archive: archive, runs: runs, imagesDir: imagesDir}
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/archive", s.handleListArchive)
	r.Get("/api/archive/{date}", s.handleGetEntry)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/{id}/attempts", s.handleListAttempts)

	fs := http.StripPrefix("/images/", http.FileServer(http.Dir(s.imagesDir)))
	r.Get("/images/*", fs.ServeHTTP)

	s.router = r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
