// Command viewer serves the archive document, generated images, and run
// history over HTTP. It holds no business logic: it only reads what the
// pipeline wrote.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kmaurinjones/joyfulbytes/internal/api"
	"github.com/kmaurinjones/joyfulbytes/internal/archive"
	"github.com/kmaurinjones/joyfulbytes/internal/config"
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

	writer, err := archive.NewWriter(cfg.Data.Dir)
	if err != nil {
		slog.Error("init archive", "error", err)
		os.Exit(1)
	}

	// The ledger is optional for viewing: without it the run-history
	// endpoints report not-found.
	var runs store.RunReader
	db, err := store.OpenSQLite(filepath.Join(cfg.Data.Dir, "runs.db"))
	if err != nil {
		slog.Warn("run ledger unavailable", "error", err)
	} else {
		defer db.Close()
		if s, err := store.New(db); err != nil {
			slog.Warn("run ledger unavailable", "error", err)
		} else {
			runs = s
		}
	}

	srv := api.New(writer, runs, writer.ImagesDir())
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")
		httpServer.Shutdown(context.Background())
	}()

	slog.Info("viewer listening", "port", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
