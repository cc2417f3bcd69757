package store

import (
	"context"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// RunRecorder is the write side of the run ledger, used by the pipeline.
type RunRecorder interface {
	CreateRun(ctx context.Context, run model.Run) error
	FinishRun(ctx context.Context, id, status string, errorInfo *string) error
	SetRunStory(ctx context.Context, id, storyURL, storyTitle string, rank float64) error
	RecordAttempt(ctx context.Context, a model.ImageAttempt) error
}

// RunReader is the read side of the run ledger, used by the viewer API.
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	ListAttempts(ctx context.Context, runID string) ([]model.ImageAttempt, error)
}
