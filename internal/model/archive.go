package model

import "encoding/json"

// ArchiveEntry is one day's accepted result in the archive document.
// Extra carries the remaining provider fields from the chosen candidate so
// the viewer sees everything the search hit contained.
type ArchiveEntry struct {
	Date         string `json:"date"`
	ImagePath    string `json:"image_path"`
	StorySummary string `json:"story_summary"`
	StoryURL     string `json:"story_url"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON flattens Extra into the entry object, with the named fields
// taking precedence over same-named provider fields.
func (e ArchiveEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+4)
	for k, v := range e.Extra {
		out[k] = v
	}
	out["date"] = e.Date
	out["image_path"] = e.ImagePath
	out["story_summary"] = e.StorySummary
	out["story_url"] = e.StoryURL
	return json.Marshal(out)
}

// UnmarshalJSON restores the named fields and keeps everything else in Extra.
func (e *ArchiveEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["date"].(string); ok {
		e.Date = v
	}
	if v, ok := raw["image_path"].(string); ok {
		e.ImagePath = v
	}
	if v, ok := raw["story_summary"].(string); ok {
		e.StorySummary = v
	}
	if v, ok := raw["story_url"].(string); ok {
		e.StoryURL = v
	}
	delete(raw, "date")
	delete(raw, "image_path")
	delete(raw, "story_summary")
	delete(raw, "story_url")
	e.Extra = raw
	return nil
}

// Archive maps YYYY-MM-DD date keys to entries. At most one entry per date;
// a new run for the same date overwrites the prior entry.
type Archive map[string]ArchiveEntry
