// Package archive persists accepted daily results: a single JSON document
// keyed by run date, the per-attempt image file, and an always-overwritten
// "most recent" image copy.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

const (
	documentName    = "generated-map.json"
	imagesDirName   = "images"
	latestImageName = "most-recent-image.png"
)

// ErrBadPublishDate reports that the chosen story's publication date
// matched none of the accepted formats. The archive write is abandoned but
// the caller does not treat this as run-fatal; already-written image files
// stay in place.
var ErrBadPublishDate = errors.New("publication date matched no known format")

// Writer owns the on-disk archive layout under a single data directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, creating the images
// subdirectory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Join(dir, imagesDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// DocumentPath returns the path of the archive document.
func (w *Writer) DocumentPath() string {
	return filepath.Join(w.dir, documentName)
}

// ImagesDir returns the directory holding per-attempt image files.
func (w *Writer) ImagesDir() string {
	return filepath.Join(w.dir, imagesDirName)
}

// SaveImage writes the accepted attempt's image under the images directory,
// named by run timestamp and attempt number, and refreshes the
// most-recent-image copy. It returns the per-attempt path.
func (w *Writer) SaveImage(runStamp string, attempt int, fileType string, data []byte) (string, error) {
	name := fmt.Sprintf("%s-%d.%s", runStamp, attempt, fileType)
	path := filepath.Join(w.ImagesDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(w.dir, latestImageName), data); err != nil {
		return "", fmt.Errorf("write latest image: %w", err)
	}
	return path, nil
}

// Write merges an entry for the given calendar date into the archive
// document, overwriting any prior entry for that date. The document is
// replaced atomically so a crash mid-write leaves either the old or the new
// archive, never a torn one.
func (w *Writer) Write(dateKey string, story model.ChosenStory, summary model.Summary, imagePath string) error {
	displayDate, err := NormalizeDate(story.DatePublished)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadPublishDate, story.DatePublished)
	}

	archive, err := w.Read()
	if err != nil {
		return err
	}

	archive[dateKey] = model.ArchiveEntry{
		Date:         displayDate,
		ImagePath:    imagePath,
		StorySummary: summary.Text,
		StoryURL:     story.URL,
		Extra:        story.Raw,
	}

	data, err := json.MarshalIndent(archive, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if err := writeFileAtomic(w.DocumentPath(), data); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Read loads the archive document, returning an empty archive when the
// document does not exist yet.
func (w *Writer) Read() (model.Archive, error) {
	data, err := os.ReadFile(w.DocumentPath())
	if errors.Is(err, os.ErrNotExist) {
		return model.Archive{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	var archive model.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	return archive, nil
}

// NormalizeDate parses a publication date string, trying full
// fractional-seconds ISO, then whole-second ISO, then date-only, in that
// order, and renders it as "Month DD, YYYY".
func NormalizeDate(s string) (string, error) {
	layouts := []string{
		"2006-01-02T15:04:05.9999999Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	}
	for i, layout := range layouts {
		value := s
		if i == len(layouts)-1 {
			// Date-only: keep just the date portion of a longer string.
			if idx := len("2006-01-02"); len(value) > idx {
				value = value[:idx]
			}
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("January 02, 2006"), nil
		}
	}
	return "", fmt.Errorf("unparseable date %q", s)
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it over the target.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
