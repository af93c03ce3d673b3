// CLAUDE:SUMMARY Run journal on SQLite: run lifecycle, catalog outcomes, and a fetch log fed by the fetch observer.
// CLAUDE:DEPENDS dbopen, idgen, radar/internal/fetch
// Package journal records what each radar cycle did.
//
// The journal is diagnostic only. Catalog files stay the source of truth;
// callers log journal errors and carry on.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/radar/dbopen"
	"github.com/hazyhaar/radar/idgen"
	"github.com/hazyhaar/radar/radar/internal/fetch"
)

// Store wraps the journal database.
type Store struct {
	DB    *sql.DB
	newID idgen.Generator
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	return New(db), nil
}

// New wraps an already-opened database that has Schema applied.
func New(db *sql.DB) *Store {
	return &Store{DB: db, newID: idgen.Prefixed("fl_", idgen.Default)}
}

// Close closes the database.
func (s *Store) Close() error { return s.DB.Close() }

// CatalogResult is one catalog's outcome in a run.
type CatalogResult struct {
	RunID      string
	Catalog    string
	Status     string
	Items      int
	Reason     string
	FinishedAt time.Time
}

// FetchEntry is one row of the fetch log.
type FetchEntry struct {
	ID         string
	RunID      string
	Catalog    string
	URL        string
	Outcome    string // "ok" | "unavailable"
	StatusCode int
	Class      string
	DurationMs int64
	FetchedAt  time.Time
}

// BeginRun inserts a run row.
func (s *Store) BeginRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		runID, startedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: begin run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time) error {
	res, err := dbopen.Exec(ctx, s.DB,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		finishedAt.UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("journal: finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal: finish run: unknown run %q", runID)
	}
	return nil
}

// RecordCatalog stores a catalog outcome. Recording the same catalog twice
// in one run keeps the last result.
func (s *Store) RecordCatalog(ctx context.Context, r CatalogResult) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO catalog_results (run_id, catalog, status, items, reason, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, catalog) DO UPDATE SET
			status = excluded.status, items = excluded.items,
			reason = excluded.reason, finished_at = excluded.finished_at`,
		r.RunID, r.Catalog, r.Status, r.Items, r.Reason, r.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: record catalog %s: %w", r.Catalog, err)
	}
	return nil
}

// RecordFetch stores one fetch attempt.
func (s *Store) RecordFetch(ctx context.Context, a fetch.Attempt) error {
	outcome := "unavailable"
	if a.OK {
		outcome = "ok"
	}
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO fetch_log (id, run_id, catalog, url, outcome, status_code, class, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.newID(), a.RunID, a.Catalog, a.URL, outcome, a.StatusCode, string(a.Class),
		a.Duration.Milliseconds(), a.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: record fetch: %w", err)
	}
	return nil
}

// Observer returns a fetch.Observer writing to the journal. Write errors
// are logged, never returned.
func (s *Store) Observer(logger *slog.Logger) fetch.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, a fetch.Attempt) {
		if err := s.RecordFetch(context.WithoutCancel(ctx), a); err != nil {
			logger.Warn("journal: fetch not recorded", "url", a.URL, "error", err)
		}
	}
}

// FetchHistory returns fetch log entries for url, newest first.
func (s *Store) FetchHistory(ctx context.Context, url string, limit int) ([]FetchEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, run_id, catalog, url, outcome, status_code, class, duration_ms, fetched_at
		FROM fetch_log WHERE url = ?
		ORDER BY fetched_at DESC, rowid DESC LIMIT ?`, url, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: fetch history: %w", err)
	}
	defer rows.Close()

	var out []FetchEntry
	for rows.Next() {
		var e FetchEntry
		var fetchedAt int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Catalog, &e.URL, &e.Outcome,
			&e.StatusCode, &e.Class, &e.DurationMs, &fetchedAt); err != nil {
			return nil, fmt.Errorf("journal: scan fetch log: %w", err)
		}
		e.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastResults returns the catalog results of the most recent runs, newest
// run first, catalogs in recording order within a run.
func (s *Store) LastResults(ctx context.Context, runs int) ([]CatalogResult, error) {
	if runs <= 0 {
		runs = 1
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT c.run_id, c.catalog, c.status, c.items, c.reason, c.finished_at
		FROM catalog_results c
		JOIN (SELECT id, started_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?) r
			ON r.id = c.run_id
		ORDER BY r.started_at DESC, c.rowid ASC`, runs)
	if err != nil {
		return nil, fmt.Errorf("journal: last results: %w", err)
	}
	defer rows.Close()

	var out []CatalogResult
	for rows.Next() {
		var r CatalogResult
		var finishedAt int64
		if err := rows.Scan(&r.RunID, &r.Catalog, &r.Status, &r.Items, &r.Reason, &finishedAt); err != nil {
			return nil, fmt.Errorf("journal: scan catalog result: %w", err)
		}
		r.FinishedAt = time.UnixMilli(finishedAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep runs and deletes older runs, their catalog
// results and their fetch log rows.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	var deleted int64
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		const old = `SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT -1 OFFSET ?`
		if _, err := tx.ExecContext(ctx, `DELETE FROM fetch_log WHERE run_id IN (`+old+`)`, keep); err != nil {
			return err
		}
		// Pragmas apply per connection; do not rely on the cascade.
		if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_results WHERE run_id IN (`+old+`)`, keep); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+old+`)`, keep)
		if err != nil {
			return err
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	return deleted, nil
}
