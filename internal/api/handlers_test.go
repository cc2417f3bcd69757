package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// fakeArchive serves a fixed archive document.
type fakeArchive struct {
	archive model.Archive
	err     error
}

func (f *fakeArchive) Read() (model.Archive, error) {
	return f.archive, f.err
}

// fakeLedger serves fixed run history.
type fakeLedger struct {
	runs     []model.Run
	attempts map[string][]model.ImageAttempt
}

func (f *fakeLedger) ListRuns(_ context.Context, _ int) ([]model.Run, error) {
	return f.runs, nil
}

func (f *fakeLedger) ListAttempts(_ context.Context, runID string) ([]model.ImageAttempt, error) {
	return f.attempts[runID], nil
}

func testArchive() model.Archive {
	return model.Archive{
		"2024-03-04": {Date: "March 04, 2024", StoryURL: "https://example.com/older"},
		"2024-03-05": {Date: "March 05, 2024", StoryURL: "https://example.com/newer", StorySummary: "summary"},
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListArchive_NewestFirst(t *testing.T) {
	s := New(&fakeArchive{archive: testArchive()}, nil, t.TempDir())

	rec := get(t, s, "/api/archive")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Dates []string `json:"dates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Dates) != 2 || body.Dates[0] != "2024-03-05" || body.Dates[1] != "2024-03-04" {
		t.Errorf("dates = %v, want newest first", body.Dates)
	}
}

func TestGetEntry(t *testing.T) {
	s := New(&fakeArchive{archive: testArchive()}, nil, t.TempDir())

	rec := get(t, s, "/api/archive/2024-03-05")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entry map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["story_url"] != "https://example.com/newer" {
		t.Errorf("entry = %v", entry)
	}
}

func TestGetEntry_NoData(t *testing.T) {
	s := New(&fakeArchive{archive: testArchive()}, nil, t.TempDir())

	rec := get(t, s, "/api/archive/2019-01-01")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Error("missing error message")
	}
}

func TestListRuns_NoLedger(t *testing.T) {
	s := New(&fakeArchive{archive: model.Archive{}}, nil, t.TempDir())

	if rec := get(t, s, "/api/runs"); rec.Code != http.StatusNotFound {
		t.Errorf("/api/runs status = %d, want 404 without a ledger", rec.Code)
	}
	if rec := get(t, s, "/api/runs/x/attempts"); rec.Code != http.StatusNotFound {
		t.Errorf("/api/runs/x/attempts status = %d, want 404 without a ledger", rec.Code)
	}
}

func TestListRuns_WithLedger(t *testing.T) {
	url := "https://example.com/story"
	ledger := &fakeLedger{
		runs: []model.Run{{ID: "run-1", Status: model.RunStatusSuccess, StoryURL: &url, Attempts: 2}},
		attempts: map[string][]model.ImageAttempt{
			"run-1": {
				{RunID: "run-1", Attempt: 1, MeanScore: 6.5},
				{RunID: "run-1", Attempt: 2, MeanScore: 8.75, Accepted: true},
			},
		},
	}
	s := New(&fakeArchive{archive: model.Archive{}}, ledger, t.TempDir())

	rec := get(t, s, "/api/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var runs []model.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("runs = %v", runs)
	}

	rec = get(t, s, "/api/runs/run-1/attempts")
	if rec.Code != http.StatusOK {
		t.Fatalf("attempts status = %d", rec.Code)
	}
	var attempts []model.ImageAttempt
	if err := json.Unmarshal(rec.Body.Bytes(), &attempts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(attempts) != 2 || !attempts[1].Accepted {
		t.Errorf("attempts = %v", attempts)
	}
}

func TestListAttempts_UnknownRunIsEmptyList(t *testing.T) {
	ledger := &fakeLedger{attempts: map[string][]model.ImageAttempt{}}
	s := New(&fakeArchive{archive: model.Archive{}}, ledger, t.TempDir())

	rec := get(t, s, "/api/runs/unknown/attempts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty JSON list", got)
	}
}
