// Package pipeline orchestrates one daily run: search, extract, rank,
// select a story, summarize it, generate an illustration, and archive the
// result. The run is strictly sequential; only ranking fans out internally.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kmaurinjones/joyfulbytes/internal/engine"
	"github.com/kmaurinjones/joyfulbytes/internal/model"
	"github.com/kmaurinjones/joyfulbytes/internal/search"
	"github.com/kmaurinjones/joyfulbytes/internal/store"
)

// StoryRanker scores candidates and returns the survivors in input order.
type StoryRanker interface {
	Rank(ctx context.Context, candidates []model.Candidate) []model.RankedCandidate
}

// ContentFetcher retrieves page text and applies the content-length policy.
type ContentFetcher interface {
	Text(ctx context.Context, url string) string
	Usable(text string) bool
}

// ContentValidator is the optional suitability gate on fetched text.
type ContentValidator interface {
	Suitable(ctx context.Context, text string) bool
}

// Summarizer condenses story text into the display/generation summary.
type Summarizer interface {
	Summarize(ctx context.Context, storyText string) (model.Summary, error)
}

// ImageLoop runs the generate-validate cycle for a summary.
type ImageLoop interface {
	Run(ctx context.Context, summary model.Summary) (*engine.GeneratedImage, []engine.AttemptScore, error)
}

// ArchiveWriter persists the accepted image and the dated archive entry.
type ArchiveWriter interface {
	SaveImage(runStamp string, attempt int, fileType string, data []byte) (string, error)
	Write(dateKey string, story model.ChosenStory, summary model.Summary, imagePath string) error
}

// Deps are the collaborators a Pipeline needs. Validator and Ledger may be
// nil: the suitability gate is optional and the ledger is best-effort.
type Deps struct {
	Searcher   search.Searcher
	Ranker     StoryRanker
	Fetcher    ContentFetcher
	Validator  ContentValidator
	Summarizer Summarizer
	ImageLoop  ImageLoop
	Archive    ArchiveWriter
	Ledger     store.RunRecorder
}

// Pipeline executes one run from search terms to archive entry.
type Pipeline struct {
	deps     Deps
	queries  []string
	fileType string

	// now is swappable in tests to pin the run date.
	now func() time.Time
}

// New creates a Pipeline over the given search queries.
func New(deps Deps, queries []string, fileType string) *Pipeline {
	return &Pipeline{deps: deps, queries: queries, fileType: fileType, now: time.Now}
}

// Outcome describes a successful run.
type Outcome struct {
	RunID     string
	DateKey   string
	StoryURL  string
	ImagePath string
	Attempts  int
}

// Run executes the full pipeline once. It returns a *StepError naming the
// failed stage on any run-fatal condition.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	start := p.now()
	runStamp := start.Format("20060102-150405")
	run := model.NewRun(uuid.New().String())
	p.recordStart(ctx, run)
	slog.Info("run started", "run_id", run.ID, "queries", len(p.queries))

	outcome, err := p.run(ctx, run.ID, runStamp, start)
	if err != nil {
		p.recordFinish(ctx, run.ID, model.RunStatusFailed, err)
		return nil, err
	}
	outcome.RunID = run.ID
	p.recordFinish(ctx, run.ID, model.RunStatusSuccess, nil)
	return outcome, nil
}

func (p *Pipeline) run(ctx context.Context, runID, runStamp string, start time.Time) (*Outcome, error) {
	// Search: per-query failures are logged and skipped.
	var payloads []map[string]any
	for _, query := range p.queries {
		payload, err := p.deps.Searcher.Search(ctx, query)
		if err != nil {
			slog.Error("search query failed, skipping", "query", query, "error", err)
			continue
		}
		payloads = append(payloads, payload)
	}

	candidates := search.ExtractCandidates(payloads)
	slog.Info("extracted candidates", "count", len(candidates))
	if len(candidates) == 0 {
		return nil, &StepError{Step: "extract", Err: ErrNoCandidates}
	}

	// Rank and sort descending; dropped scoring calls just thin the list.
	ranked := p.deps.Ranker.Rank(ctx, candidates)
	engine.SortByRank(ranked)
	slog.Info("ranked candidates", "count", len(ranked))
	if len(ranked) > 0 {
		slog.Info("top candidate", "rank", fmt.Sprintf("%.2f", ranked[0].Rank), "title", ranked[0].Title)
	}

	chosen, err := p.selectStory(ctx, ranked)
	if err != nil {
		return nil, &StepError{Step: "select", Err: err}
	}
	slog.Info("story chosen", "url", chosen.URL, "rank", fmt.Sprintf("%.2f", chosen.Rank))
	if p.deps.Ledger != nil {
		if err := p.deps.Ledger.SetRunStory(ctx, runID, chosen.URL, chosen.Title, chosen.Rank); err != nil {
			slog.Warn("ledger: set run story failed", "error", err)
		}
	}

	summary, err := p.deps.Summarizer.Summarize(ctx, chosen.Text)
	if err != nil {
		return nil, &StepError{Step: "summarize", Err: fmt.Errorf("%w: %v", ErrNoSummary, err)}
	}
	slog.Info("summary generated", "words", summary.WordCount)

	img, attempts, loopErr := p.deps.ImageLoop.Run(ctx, summary)
	p.recordAttempts(ctx, runID, attempts)
	if loopErr != nil {
		return nil, &StepError{Step: "image", Err: loopErr}
	}

	imagePath, err := p.deps.Archive.SaveImage(runStamp, img.Attempt, p.fileType, img.Data)
	if err != nil {
		return nil, &StepError{Step: "archive", Err: err}
	}

	// Archive-document failures (notably unparseable publication dates) are
	// reported but do not fail the run; the image files stay in place.
	dateKey := start.Format("2006-01-02")
	if err := p.deps.Archive.Write(dateKey, *chosen, summary, imagePath); err != nil {
		slog.Error("archive write abandoned", "date", dateKey, "error", err)
	} else {
		slog.Info("archive updated", "date", dateKey)
	}

	return &Outcome{
		DateKey:   dateKey,
		StoryURL:  chosen.URL,
		ImagePath: imagePath,
		Attempts:  img.Attempt,
	}, nil
}

// selectStory walks candidates in rank order and commits to the first whose
// fetched text clears the length policy and, when configured, the
// suitability gate. Summarization is never invoked for rejected candidates.
func (p *Pipeline) selectStory(ctx context.Context, ranked []model.RankedCandidate) (*model.ChosenStory, error) {
	for _, rc := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := p.deps.Fetcher.Text(ctx, rc.URL)
		if !p.deps.Fetcher.Usable(text) {
			slog.Info("candidate skipped: insufficient content", "url", rc.URL)
			continue
		}
		if p.deps.Validator != nil && !p.deps.Validator.Suitable(ctx, text) {
			slog.Info("candidate skipped: failed content validation", "url", rc.URL)
			continue
		}
		return &model.ChosenStory{RankedCandidate: rc, Text: text}, nil
	}
	return nil, ErrNoUsableStory
}

func (p *Pipeline) recordStart(ctx context.Context, run model.Run) {
	if p.deps.Ledger == nil {
		return
	}
	if err := p.deps.Ledger.CreateRun(ctx, run); err != nil {
		slog.Warn("ledger: create run failed", "error", err)
	}
}

func (p *Pipeline) recordAttempts(ctx context.Context, runID string, attempts []engine.AttemptScore) {
	if p.deps.Ledger == nil {
		return
	}
	for _, a := range attempts {
		att := model.ImageAttempt{
			RunID:     runID,
			Attempt:   a.Attempt,
			MeanScore: a.MeanScore,
			Accepted:  a.Accepted,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := p.deps.Ledger.RecordAttempt(ctx, att); err != nil {
			slog.Warn("ledger: record attempt failed", "attempt", a.Attempt, "error", err)
		}
	}
}

func (p *Pipeline) recordFinish(ctx context.Context, runID, status string, runErr error) {
	if p.deps.Ledger == nil {
		return
	}
	var errInfo *string
	if runErr != nil {
		step := "unknown"
		var se *StepError
		if errors.As(runErr, &se) {
			step = se.StepName()
		}
		info := model.ErrorInfo{
			FailedStep: step,
			Message:    runErr.Error(),
			FailedAt:   time.Now().UTC().Format(time.RFC3339),
		}.ToJSON()
		errInfo = &info
	}
	if err := p.deps.Ledger.FinishRun(ctx, runID, status, errInfo); err != nil {
		slog.Warn("ledger: finish run failed", "error", err)
	}
}
