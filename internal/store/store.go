// Package store handles SQLite persistence of finished counter runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/countup/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			page TEXT NOT NULL,
			element TEXT NOT NULL,
			target REAL NOT NULL,
			final TEXT NOT NULL,
			easing TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			delay_ms INTEGER NOT NULL,
			frames INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_page ON runs(page);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and returns its id.
func (s *Store) InsertRun(ctx context.Context, run model.RunStats) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, ended_at, page, element, target, final, easing, duration_ms, delay_ms, frames)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(timeLayout),
		run.EndedAt.UTC().Format(timeLayout),
		run.Page,
		run.Element,
		run.Target,
		run.Final,
		run.Easing,
		run.DurationMs,
		run.DelayMs,
		run.Frames,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertRuns stores several runs in one transaction.
func (s *Store) InsertRuns(ctx context.Context, runs []model.RunStats) (err error) {
	if len(runs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO runs (started_at, ended_at, page, element, target, final, easing, duration_ms, delay_ms, frames)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, run := range runs {
		if _, err = stmt.ExecContext(ctx,
			run.StartedAt.UTC().Format(timeLayout),
			run.EndedAt.UTC().Format(timeLayout),
			run.Page,
			run.Element,
			run.Target,
			run.Final,
			run.Easing,
			run.DurationMs,
			run.DelayMs,
			run.Frames,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns runs filtered by cfg, oldest first. Last keeps only the
// most recent N runs.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunStats, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Page != "" {
		clauses = append(clauses, "page = ?")
		args = append(args, cfg.Page)
	}
	limit := ""
	if cfg.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, page, element, target, final, easing, duration_ms, delay_ms, frames
		FROM (
			SELECT * FROM runs
			WHERE %s
			ORDER BY ended_at DESC, id DESC
			%s
		)
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunStats
	for rows.Next() {
		var run model.RunStats
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &run.Page, &run.Element, &run.Target, &run.Final, &run.Easing, &run.DurationMs, &run.DelayMs, &run.Frames); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
