package model

import (
	"encoding/json"
	"time"
)

// Run status constants
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// Run is one pipeline invocation recorded in the ledger.
type Run struct {
	ID         string   `json:"id"`
	StartedAt  string   `json:"started_at"`
	FinishedAt *string  `json:"finished_at,omitempty"`
	Status     string   `json:"status"`
	StoryURL   *string  `json:"story_url,omitempty"`
	StoryTitle *string  `json:"story_title,omitempty"`
	StoryRank  *float64 `json:"story_rank,omitempty"`
	Attempts   int      `json:"attempts"`
	ErrorInfo  *string  `json:"error_info,omitempty"`
}

// NewRun creates a Run in RUNNING state.
func NewRun(id string) Run {
	return Run{
		ID:        id,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    RunStatusRunning,
	}
}

// ImageAttempt is one generate-validate cycle recorded in the ledger.
type ImageAttempt struct {
	RunID     string  `json:"run_id"`
	Attempt   int     `json:"attempt"`
	MeanScore float64 `json:"mean_score"`
	Accepted  bool    `json:"accepted"`
	CreatedAt string  `json:"created_at"`
}

// ErrorInfo holds structured failure information for a Run.
type ErrorInfo struct {
	FailedStep string `json:"failed_step"`
	Message    string `json:"message"`
	FailedAt   string `json:"failed_at"`
}

// ToJSON serializes ErrorInfo to a JSON string.
func (e ErrorInfo) ToJSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}
