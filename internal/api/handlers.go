package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// ---------------------------------------------------------------------------
// GET /api/archive
// ---------------------------------------------------------------------------

// handleListArchive returns the available date keys, newest first.
func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := s.archive.Read()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read archive")
		return
	}

	dates := make([]string, 0, len(archive))
	for date := range archive {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

// ---------------------------------------------------------------------------
// GET /api/archive/{date}
// ---------------------------------------------------------------------------

// handleGetEntry returns the entry for a date key, or an explicit no-data
// response when the date has no entry.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	archive, err := s.archive.Read()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read archive")
		return
	}

	entry, ok := archive[date]
	if !ok {
		writeError(w, http.StatusNotFound, "no data for date "+date)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ---------------------------------------------------------------------------
// GET /api/runs
// ---------------------------------------------------------------------------

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run ledger not available")
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// ---------------------------------------------------------------------------
// GET /api/runs/{id}/attempts
// ---------------------------------------------------------------------------

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run ledger not available")
		return
	}

	id := chi.URLParam(r, "id")
	attempts, err := s.runs.ListAttempts(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []model.ImageAttempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}
