package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// Summarizer condenses validated story text into a bounded narrative
// summary. A single best-effort call: there is no retry loop here, and an
// empty or malformed response is an error the caller treats as run-fatal.
type Summarizer struct {
	model ModelClient
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(mc ModelClient) *Summarizer {
	return &Summarizer{model: mc}
}

// Summarize produces the story summary and its derived word count.
func (s *Summarizer) Summarize(ctx context.Context, storyText string) (model.Summary, error) {
	raw, err := s.model.Complete(ctx, buildSummarizePrompt(storyText))
	if err != nil {
		return model.Summary{}, fmt.Errorf("summarize: %w", err)
	}

	var resp summaryResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		return model.Summary{}, fmt.Errorf("summarize: parsing response: %w", err)
	}
	if resp.Summary == "" {
		return model.Summary{}, fmt.Errorf("summarize: empty summary in response")
	}

	return model.NewSummary(resp.Summary), nil
}
