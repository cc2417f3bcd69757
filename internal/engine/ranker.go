package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// Ranker scores candidates against the editorial rubric, fanning out to the
// scoring backend with a bounded worker pool.
type Ranker struct {
	model       ModelClient
	workers     int
	callTimeout time.Duration
}

// NewRanker creates a Ranker. workers bounds in-flight scoring calls;
// callTimeout bounds the wait for each individual call.
func NewRanker(mc ModelClient, workers int, callTimeout time.Duration) *Ranker {
	if workers < 1 {
		workers = 1
	}
	return &Ranker{model: mc, workers: workers, callTimeout: callTimeout}
}

// Rank scores each candidate independently and returns the survivors in the
// original input order. Calls that time out or return unparseable responses
// are logged and omitted rather than retried: partial results are an
// acceptable outcome, not an error.
func (r *Ranker) Rank(ctx context.Context, candidates []model.Candidate) []model.RankedCandidate {
	results := make([]*model.RankedCandidate, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, c := range candidates {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, r.callTimeout)
			defer cancel()

			raw, err := r.model.Complete(callCtx, buildRankingPrompt(c))
			if err != nil {
				slog.Warn("ranking call dropped", "url", c.URL, "error", err)
				return nil
			}

			var resp rankResponse
			if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
				slog.Warn("ranking response unparseable", "url", c.URL, "error", err)
				return nil
			}

			// Each goroutine writes only its own slot.
			results[i] = &model.RankedCandidate{
				Candidate:   c,
				Rank:        resp.Ranking,
				Explanation: resp.Explanation,
			}
			return nil
		})
	}
	g.Wait()

	out := make([]model.RankedCandidate, 0, len(candidates))
	for _, rc := range results {
		if rc != nil {
			out = append(out, *rc)
		}
	}
	return out
}

// SortByRank orders ranked candidates descending by rank. The sort is
// stable, so equally ranked candidates keep their extraction order.
func SortByRank(ranked []model.RankedCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank > ranked[j].Rank
	})
}
