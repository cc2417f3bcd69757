package pipeline

import "errors"

// Run-fatal conditions. Each terminates the run without an archive entry.
var (
	// ErrNoCandidates means extraction produced nothing to rank.
	ErrNoCandidates = errors.New("no valid candidates extracted from search results")

	// ErrNoUsableStory means no ranked candidate yielded enough validated
	// content to commit to.
	ErrNoUsableStory = errors.New("no candidate yielded usable validated content")

	// ErrNoSummary means summarization produced no output.
	ErrNoSummary = errors.New("summarization yielded no output")
)

// StepError wraps an error with the pipeline step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepName returns the failed step, for ledger error info.
func (e *StepError) StepName() string {
	return e.Step
}
