package engine

import (
	"context"
	"strings"
)

// ModelClient abstracts single-shot text scoring/generation calls. Every
// prompt asks for one line of strict JSON; responses that fail to parse are
// dropped or surfaced at the calling layer's discretion.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VisionClient abstracts image-scoring calls: raw image bytes plus an
// instruction prompt in, the model's text response out.
type VisionClient interface {
	ScoreImage(ctx context.Context, image []byte, prompt string) (string, error)
}

// ImageClient abstracts the image-generation backend: prompt in, raw image
// bytes out.
type ImageClient interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// rankResponse is the scoring backend's contract for candidate ranking.
type rankResponse struct {
	Ranking     float64 `json:"ranking"`
	Explanation string  `json:"explanation"`
}

// summaryResponse is the scoring backend's contract for summarization.
type summaryResponse struct {
	Summary string `json:"summary"`
}

// promptResponse is the scoring backend's contract for prompt building.
type promptResponse struct {
	FullPrompt string `json:"full_prompt"`
}

// suitabilityResponse is the scoring backend's contract for the optional
// content gate.
type suitabilityResponse struct {
	Suitable    bool   `json:"suitable"`
	Explanation string `json:"explanation"`
}

// extractJSON strips markdown code fences that models sometimes wrap
// around JSON despite instructions not to.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if after, found := strings.CutPrefix(s, "```json"); found {
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	if after, found := strings.CutPrefix(s, "```"); found {
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	return s
}
