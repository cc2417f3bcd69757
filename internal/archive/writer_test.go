package archive

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

func testStory(url, datePublished string) model.ChosenStory {
	return model.ChosenStory{
		RankedCandidate: model.RankedCandidate{
			Candidate: model.Candidate{
				Title:         "Greenhouse rebuilt",
				URL:           url,
				Snippet:       "Neighbors rebuilt the greenhouse.",
				DatePublished: datePublished,
				Raw: map[string]any{
					"name":          "Greenhouse rebuilt",
					"url":           url,
					"datePublished": datePublished,
					"provider":      "Example News",
				},
			},
			Rank: 9.12,
		},
		Text: "full article text",
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-05T10:15:30.123456Z", "March 05, 2024"},
		{"2024-03-05T10:15:30Z", "March 05, 2024"},
		{"2024-03-05", "March 05, 2024"},
	}
	for _, c := range cases {
		got, err := NormalizeDate(c.in)
		if err != nil {
			t.Errorf("NormalizeDate(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := NormalizeDate("last Tuesday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestWriter_WriteAndRead(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	summary := model.NewSummary("Sault Ste. Marie -- The greenhouse is back.")
	story := testStory("https://example.com/story", "2024-03-05T10:15:30Z")
	if err := w.Write("2024-03-05", story, summary, "data/images/x-1.png"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	archive, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	entry, ok := archive["2024-03-05"]
	if !ok {
		t.Fatal("entry for 2024-03-05 missing")
	}
	if entry.Date != "March 05, 2024" {
		t.Errorf("Date = %q, want %q", entry.Date, "March 05, 2024")
	}
	if entry.StoryURL != "https://example.com/story" {
		t.Errorf("StoryURL = %q", entry.StoryURL)
	}
	if entry.StorySummary != summary.Text {
		t.Errorf("StorySummary = %q", entry.StorySummary)
	}
	// Provider-specific fields from the candidate survive the round trip.
	if entry.Extra["provider"] != "Example News" {
		t.Errorf("Extra[provider] = %v, want merged candidate field", entry.Extra["provider"])
	}
}

func TestWriter_SameDateOverwrites(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	first := testStory("https://example.com/first", "2024-03-05T10:15:30Z")
	second := testStory("https://example.com/second", "2024-03-05T18:00:00Z")

	if err := w.Write("2024-03-05", first, model.NewSummary("first summary"), "img-1.png"); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := w.Write("2024-03-05", second, model.NewSummary("second summary"), "img-2.png"); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	archive, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(archive) != 1 {
		t.Fatalf("archive entries = %d, want exactly 1 per date", len(archive))
	}
	entry := archive["2024-03-05"]
	if entry.StoryURL != "https://example.com/second" {
		t.Errorf("StoryURL = %q, want the second run's data", entry.StoryURL)
	}
	if entry.ImagePath != "img-2.png" {
		t.Errorf("ImagePath = %q, want img-2.png", entry.ImagePath)
	}
}

func TestWriter_BadPublishDateAbandonsWrite(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	story := testStory("https://example.com/story", "not a date")
	err = w.Write("2024-03-05", story, model.NewSummary("summary"), "img.png")
	if !errors.Is(err, ErrBadPublishDate) {
		t.Fatalf("err = %v, want ErrBadPublishDate", err)
	}

	archive, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(archive) != 0 {
		t.Errorf("archive entries = %d, want 0 after abandoned write", len(archive))
	}
}

func TestWriter_SaveImage(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	data := []byte("image-bytes")
	path, err := w.SaveImage("20240305-101530", 3, "png", data)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if filepath.Base(path) != "20240305-101530-3.png" {
		t.Errorf("image name = %q, want run-stamp and attempt number", filepath.Base(path))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(got) != "image-bytes" {
		t.Errorf("image content = %q", got)
	}

	latest, err := os.ReadFile(filepath.Join(dir, "most-recent-image.png"))
	if err != nil {
		t.Fatalf("read latest image: %v", err)
	}
	if string(latest) != "image-bytes" {
		t.Errorf("latest image content = %q", latest)
	}
}

func TestWriter_DocumentIsValidJSON(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	story := testStory("https://example.com/story", "2024-03-05")
	if err := w.Write("2024-03-05", story, model.NewSummary("summary"), "img.png"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(w.DocumentPath())
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("document is not a JSON object of entries: %v", err)
	}
	if doc["2024-03-05"]["story_url"] != "https://example.com/story" {
		t.Errorf("document entry = %v", doc["2024-03-05"])
	}
}

func TestWriter_ReadMissingDocument(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	archive, err := w.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(archive) != 0 {
		t.Errorf("archive = %v, want empty", archive)
	}
}
