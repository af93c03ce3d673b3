// CLAUDE:SUMMARY SQLite opener for radar's journal: pragmas carried in the DSN so every pooled connection gets them, schema bootstrap, test helper.
// Package dbopen opens the SQLite files radar keeps next to its JSON
// catalogs.
//
// Pragmas (foreign keys, WAL, busy timeout, synchronous=NORMAL) are passed
// as modernc.org/sqlite `_pragma` DSN parameters, so they hold on every
// connection database/sql opens, not only the first one.
//
//	db, err := dbopen.Open("data/radar.db", dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
//
// In tests:
//
//	db := dbopen.OpenMemory(t, dbopen.WithSchema(schema))
package dbopen

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long a connection waits on a locked database.
const DefaultBusyTimeout = 10 * time.Second

type options struct {
	busyTimeout time.Duration
	mkdirAll    bool
	schemas     []string
}

// Option customises Open.
type Option func(*options)

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) Option { return func(o *options) { o.busyTimeout = d } }

// WithMkdirAll creates the parent directory of the database file.
func WithMkdirAll() Option { return func(o *options) { o.mkdirAll = true } }

// WithSchema queues statements run once after opening, in order.
func WithSchema(stmts ...string) Option {
	return func(o *options) { o.schemas = append(o.schemas, stmts...) }
}

// DSN returns the modernc.org/sqlite data source name for path with
// radar's connection pragmas.
func DSN(path string, busyTimeout time.Duration) string {
	pragmas := []string{
		"foreign_keys(1)",
		"journal_mode(WAL)",
		fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()),
		"synchronous(NORMAL)",
	}
	return "file:" + path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// Open opens the SQLite database at path and applies the queued schema.
func Open(path string, opts ...Option) (*sql.DB, error) {
	return open(path, 0, opts)
}

// OpenMemory opens a private in-memory database for tests. The pool is
// pinned to one connection because each ":memory:" connection is a
// separate database.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := open(":memory:", 1, opts)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func open(path string, maxConns int, opts []Option) (*sql.DB, error) {
	o := options{busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if o.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dbopen: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", DSN(path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("dbopen: open %s: %w", path, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbopen: ping %s: %w", path, err)
	}
	for _, s := range o.schemas {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("dbopen: schema: %w", err)
		}
	}
	return db, nil
}
