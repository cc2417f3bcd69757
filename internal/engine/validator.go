package engine

import (
	"context"
	"encoding/json"
	"log/slog"
)

// ContentValidator is the optional second-stage gate that confirms fetched
// text is a usable article before the pipeline commits to it.
type ContentValidator struct {
	model ModelClient
}

// NewContentValidator creates a ContentValidator.
func NewContentValidator(mc ModelClient) *ContentValidator {
	return &ContentValidator{model: mc}
}

// Suitable returns the backend's suitability verdict for the text. Any
// backend or parse failure counts as a negative verdict, which the caller
// treats exactly like a fetch failure: move on to the next candidate.
func (v *ContentValidator) Suitable(ctx context.Context, text string) bool {
	raw, err := v.model.Complete(ctx, buildContentValidationPrompt(text))
	if err != nil {
		slog.Warn("content validation call failed", "error", err)
		return false
	}

	var resp suitabilityResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		slog.Warn("content validation response unparseable", "error", err)
		return false
	}
	if !resp.Suitable {
		slog.Info("content rejected by validator", "explanation", resp.Explanation)
	}
	return resp.Suitable
}
