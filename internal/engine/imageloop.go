package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// ErrNoImageAccepted is returned when the attempt budget is exhausted
// without any image clearing the score threshold.
var ErrNoImageAccepted = errors.New("no image accepted within attempt budget")

// loopState names the phases of one generation attempt.
type loopState string

const (
	stateBuildingPrompt loopState = "BUILDING_PROMPT"
	stateGenerating     loopState = "GENERATING"
	stateValidating     loopState = "VALIDATING"
	stateAccepted       loopState = "ACCEPTED"
	stateRetry          loopState = "RETRY"
	stateError          loopState = "ERROR"
)

// GeneratedImage is the accepted output of the loop: the image bytes, the
// prompt that produced them, and which attempt succeeded.
type GeneratedImage struct {
	Data    []byte
	Prompt  string
	Attempt int
	Scores  model.Feedback
}

// AttemptScore summarizes one generate-validate cycle for the run ledger.
type AttemptScore struct {
	Attempt   int
	MeanScore float64
	Accepted  bool
}

// ImageLoop drives the generate-validate cycle: build a prompt (folding in
// feedback from the prior attempt), generate an image, score it, and either
// accept or carry the per-criterion scores forward as feedback.
type ImageLoop struct {
	model       ModelClient
	image       ImageClient
	vision      VisionClient
	maxAttempts int
	threshold   float64
}

// NewImageLoop creates an ImageLoop with the given attempt budget and
// acceptance threshold.
func NewImageLoop(mc ModelClient, ic ImageClient, vc VisionClient, maxAttempts int, threshold float64) *ImageLoop {
	return &ImageLoop{
		model:       mc,
		image:       ic,
		vision:      vc,
		maxAttempts: maxAttempts,
		threshold:   threshold,
	}
}

// Run executes up to maxAttempts cycles for the story summary. On success
// it returns the accepted image; on budget exhaustion it returns
// ErrNoImageAccepted together with the scores of every attempt. A backend
// error aborts only the attempt it occurred in: feedback is reset and the
// loop moves on to the next attempt.
func (l *ImageLoop) Run(ctx context.Context, summary model.Summary) (*GeneratedImage, []AttemptScore, error) {
	var feedback model.Feedback
	var history []AttemptScore

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, history, err
		}
		slog.Info("image attempt starting", "attempt", attempt, "max_attempts", l.maxAttempts, "state", stateBuildingPrompt)

		prompt, err := l.buildPrompt(ctx, summary, feedback)
		if err != nil {
			slog.Warn("image attempt aborted", "attempt", attempt, "state", stateError, "error", err)
			feedback = nil
			continue
		}

		slog.Info("generating image", "attempt", attempt, "state", stateGenerating)
		data, err := l.image.Generate(ctx, prompt)
		if err != nil {
			slog.Warn("image attempt aborted", "attempt", attempt, "state", stateError, "error", err)
			feedback = nil
			continue
		}

		slog.Info("validating image", "attempt", attempt, "state", stateValidating)
		scores, err := l.validate(ctx, data, prompt)
		if err != nil {
			slog.Warn("image attempt aborted", "attempt", attempt, "state", stateError, "error", err)
			feedback = nil
			continue
		}

		mean := scores.Mean()
		slog.Info("image scored", "attempt", attempt, "mean", fmt.Sprintf("%.2f", mean), "text_mean", fmt.Sprintf("%.2f", scores.TextMean()))

		if mean > l.threshold {
			slog.Info("image accepted", "attempt", attempt, "state", stateAccepted)
			history = append(history, AttemptScore{Attempt: attempt, MeanScore: mean, Accepted: true})
			return &GeneratedImage{Data: data, Prompt: prompt, Attempt: attempt, Scores: scores}, history, nil
		}

		slog.Info("image below threshold, retrying with feedback", "attempt", attempt, "state", stateRetry)
		history = append(history, AttemptScore{Attempt: attempt, MeanScore: mean})
		feedback = scores
	}

	return nil, history, ErrNoImageAccepted
}

func (l *ImageLoop) buildPrompt(ctx context.Context, summary model.Summary, feedback model.Feedback) (string, error) {
	raw, err := l.model.Complete(ctx, buildImagePrompt(summary.Text, feedback.WeakAreas(l.threshold)))
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	var resp promptResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		return "", fmt.Errorf("build prompt: parsing response: %w", err)
	}
	if resp.FullPrompt == "" {
		return "", fmt.Errorf("build prompt: empty prompt in response")
	}
	return resp.FullPrompt, nil
}

func (l *ImageLoop) validate(ctx context.Context, data []byte, prompt string) (model.Feedback, error) {
	raw, err := l.vision.ScoreImage(ctx, data, buildImageValidationPrompt(prompt))
	if err != nil {
		return nil, fmt.Errorf("validate image: %w", err)
	}

	var scores model.Feedback
	if err := json.Unmarshal([]byte(extractJSON(raw)), &scores); err != nil {
		return nil, fmt.Errorf("validate image: parsing response: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("validate image: no criteria scores in response")
	}
	return scores, nil
}
