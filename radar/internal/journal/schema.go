// CLAUDE:SUMMARY SQLite schema of the radar run journal: runs, per-catalog results, fetch attempts.
package journal

// Schema is applied on every open; statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

CREATE TABLE IF NOT EXISTS catalog_results (
    run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    catalog     TEXT NOT NULL,
    status      TEXT NOT NULL,
    items       INTEGER NOT NULL DEFAULT 0,
    reason      TEXT NOT NULL DEFAULT '',
    finished_at INTEGER NOT NULL,
    PRIMARY KEY (run_id, catalog)
);

CREATE TABLE IF NOT EXISTS fetch_log (
    id          TEXT PRIMARY KEY,
    run_id      TEXT NOT NULL DEFAULT '',
    catalog     TEXT NOT NULL DEFAULT '',
    url         TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    status_code INTEGER NOT NULL DEFAULT 0,
    class       TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    fetched_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_url ON fetch_log(url, fetched_at DESC);
CREATE INDEX IF NOT EXISTS idx_fetch_log_run ON fetch_log(run_id);
`
