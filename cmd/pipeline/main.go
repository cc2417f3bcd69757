// Command pipeline runs the daily content pipeline once: search for news,
// rank candidates, scrape and summarize the chosen story, generate and
// validate an illustration, and archive the result. It exits non-zero on
// any run-fatal condition.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kmaurinjones/joyfulbytes/internal/archive"
	"github.com/kmaurinjones/joyfulbytes/internal/config"
	"github.com/kmaurinjones/joyfulbytes/internal/engine"
	"github.com/kmaurinjones/joyfulbytes/internal/pipeline"
	"github.com/kmaurinjones/joyfulbytes/internal/scrape"
	"github.com/kmaurinjones/joyfulbytes/internal/search"
	"github.com/kmaurinjones/joyfulbytes/internal/store"
)

func main() {
	configPath := flag.String("config", "joyfulbytes.toml", "path to config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	keys := config.LoadKeys(cfg)

	writer, err := archive.NewWriter(cfg.Data.Dir)
	if err != nil {
		slog.Error("init archive", "error", err)
		os.Exit(1)
	}

	db, err := store.OpenSQLite(filepath.Join(cfg.Data.Dir, "runs.db"))
	if err != nil {
		slog.Error("open run ledger", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ledger, err := store.New(db)
	if err != nil {
		slog.Error("init run ledger", "error", err)
		os.Exit(1)
	}

	// Build backend clients; fall back to stubs when credentials are missing
	// so the pipeline stays runnable end to end in development.
	var (
		searcher    search.Searcher
		modelClient engine.ModelClient
		imageClient engine.ImageClient
		vision      engine.VisionClient
	)
	if keys.UseStubs() {
		slog.Warn("missing API credentials, using stub backends")
		searcher = &search.StubSearcher{}
		modelClient = &engine.StubModelClient{}
		imageClient = &engine.StubImageClient{}
		vision = &engine.StubVisionClient{}
	} else {
		searcher = search.NewClient(keys.Search,
			search.WithCount(cfg.Search.Count),
			search.WithMarket(cfg.Search.Market),
		)
		modelClient = engine.NewOpenAIClient(keys.OpenAI)
		imageClient = engine.NewReplicateClient(keys.Replicate)
		vision = engine.NewAnthropicClient(keys.Anthropic)
	}

	fetcher := scrape.NewFetcher(cfg.FetchTimeout(), cfg.Scrape.MinWords)

	deps := pipeline.Deps{
		Searcher:   searcher,
		Ranker:     engine.NewRanker(modelClient, cfg.Ranking.Workers, cfg.RankCallTimeout()),
		Fetcher:    fetcher,
		Summarizer: engine.NewSummarizer(modelClient),
		ImageLoop:  engine.NewImageLoop(modelClient, imageClient, vision, cfg.Image.MaxAttempts, cfg.Image.ScoreThreshold),
		Archive:    writer,
		Ledger:     ledger,
	}
	if cfg.Ranking.ValidateContent {
		deps.Validator = engine.NewContentValidator(modelClient)
	}

	p := pipeline.New(deps, cfg.Search.Queries, cfg.Image.FileType)

	outcome, err := p.Run(context.Background())
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("run complete",
		"run_id", outcome.RunID,
		"date", outcome.DateKey,
		"story_url", outcome.StoryURL,
		"image", outcome.ImagePath,
		"attempts", outcome.Attempts,
	)
}
