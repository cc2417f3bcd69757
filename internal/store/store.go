// Package store is the SQLite-backed run ledger: one row per pipeline run
// and one per image generation attempt, written by the pipeline binary and
// read by the viewer.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

// Verify at compile time that Store implements the ledger interfaces.
var (
	_ RunRecorder = (*Store)(nil)
	_ RunReader   = (*Store)(nil)
)

// Store provides data access to the SQLite run ledger.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	migrations := []func() error{
		s.migrateV1, // v0 → v1: runs and image_attempts tables
	}

	for i := version; i < currentSchemaVersion; i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) migrateV1() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  TEXT NOT NULL,
			finished_at TEXT,
			status      TEXT NOT NULL,
			story_url   TEXT,
			story_title TEXT,
			story_rank  REAL,
			attempts    INTEGER NOT NULL DEFAULT 0,
			error_info  TEXT
		);
		CREATE TABLE IF NOT EXISTS image_attempts (
			run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			attempt    INTEGER NOT NULL,
			mean_score REAL NOT NULL,
			accepted   INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			PRIMARY KEY (run_id, attempt)
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`)
	return err
}

// CreateRun inserts a new run row.
func (s *Store) CreateRun(ctx context.Context, run model.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, status, attempts)
		VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Status, run.Attempts,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal status and optional error info.
func (s *Store) FinishRun(ctx context.Context, id, status string, errorInfo *string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ?, error_info = ?
		WHERE id = ?`,
		status, now, errorInfo, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: no run with id %s", id)
	}
	return nil
}

// SetRunStory records the chosen story on a run once selection succeeds.
func (s *Store) SetRunStory(ctx context.Context, id, storyURL, storyTitle string, rank float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET story_url = ?, story_title = ?, story_rank = ?
		WHERE id = ?`,
		storyURL, storyTitle, rank, id,
	)
	if err != nil {
		return fmt.Errorf("set run story: %w", err)
	}
	return nil
}

// RecordAttempt inserts one image attempt row and bumps the run's attempt
// counter.
func (s *Store) RecordAttempt(ctx context.Context, a model.ImageAttempt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO image_attempts (run_id, attempt, mean_score, accepted, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.RunID, a.Attempt, a.MeanScore, boolToInt(a.Accepted), a.CreatedAt,
	); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE runs SET attempts = attempts + 1 WHERE id = ?`, a.RunID,
	); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, status, story_url, story_title, story_rank, attempts, error_info
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.StoryURL, &r.StoryTitle, &r.StoryRank, &r.Attempts, &r.ErrorInfo); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListAttempts returns a run's image attempts in attempt order.
func (s *Store) ListAttempts(ctx context.Context, runID string) ([]model.ImageAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, attempt, mean_score, accepted, created_at
		FROM image_attempts WHERE run_id = ? ORDER BY attempt`, runID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.ImageAttempt
	for rows.Next() {
		var a model.ImageAttempt
		var accepted int
		if err := rows.Scan(&a.RunID, &a.Attempt, &a.MeanScore, &accepted, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Accepted = accepted != 0
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
