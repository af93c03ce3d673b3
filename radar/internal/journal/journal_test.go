package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/radar/dbopen"
	"github.com/hazyhaar/radar/kit"
	"github.com/hazyhaar/radar/radar/internal/fetch"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	return New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema)))
}

var t0 = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

func TestSchemaTables(t *testing.T) {
	// WHAT: Schema creates runs, catalog_results and fetch_log.
	// WHY: Every journal operation depends on them.
	s := openTest(t)
	for _, table := range []string{"runs", "catalog_results", "fetch_log"} {
		var name string
		err := s.DB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "radar.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.BeginRun(context.Background(), "run_1", t0); err != nil {
		t.Fatal(err)
	}
}

func TestRunLifecycle(t *testing.T) {
	// WHAT: Results of the newest runs come back newest run first.
	// WHY: Operators read the last cycle's outcome from the journal.
	s := openTest(t)
	ctx := context.Background()

	for i, run := range []string{"run_a", "run_b"} {
		start := t0.Add(time.Duration(i) * time.Hour)
		if err := s.BeginRun(ctx, run, start); err != nil {
			t.Fatal(err)
		}
		for _, c := range []string{"news", "mcp"} {
			err := s.RecordCatalog(ctx, CatalogResult{RunID: run, Catalog: c, Status: "ok", Items: 10, FinishedAt: start.Add(time.Minute)})
			if err != nil {
				t.Fatal(err)
			}
		}
		if err := s.FinishRun(ctx, run, start.Add(2*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	// Re-recording keeps the latest outcome.
	s.RecordCatalog(ctx, CatalogResult{RunID: "run_b", Catalog: "mcp", Status: "aborted", Reason: "below minimum", FinishedAt: t0.Add(90 * time.Minute)})

	got, err := s.LastResults(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []CatalogResult{
		{RunID: "run_b", Catalog: "news", Status: "ok", Items: 10, FinishedAt: t0.Add(61 * time.Minute)},
		{RunID: "run_b", Catalog: "mcp", Status: "aborted", Reason: "below minimum", FinishedAt: t0.Add(90 * time.Minute)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("last results (-want +got):\n%s", diff)
	}

	all, _ := s.LastResults(ctx, 5)
	if len(all) != 4 || all[0].RunID != "run_b" || all[3].RunID != "run_a" {
		t.Errorf("two runs: got %+v", all)
	}

	if err := s.FinishRun(ctx, "run_missing", t0); err == nil {
		t.Error("finishing an unknown run should fail")
	}
}

func TestObserver_FetchHistory(t *testing.T) {
	// WHAT: The fetch observer writes attempts that FetchHistory returns newest first.
	// WHY: Per-URL reliability is the journal's main diagnostic.
	s := openTest(t)
	obs := s.Observer(nil)
	ctx := kit.WithCatalog(kit.WithRunID(context.Background(), "run_x"), "news")

	url := "https://feeds.example.com/rss"
	obs(ctx, fetch.Attempt{URL: url, RunID: "run_x", Catalog: "news", OK: true, StatusCode: 200, Duration: 120 * time.Millisecond, FetchedAt: t0})
	obs(ctx, fetch.Attempt{URL: url, RunID: "run_x", Catalog: "news", StatusCode: 503, Class: fetch.ClassTemporary, FetchedAt: t0.Add(time.Hour)})
	obs(ctx, fetch.Attempt{URL: "https://other.example.com", OK: true, FetchedAt: t0})

	hist, err := s.FetchHistory(context.Background(), url, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("len: got %d, want 2", len(hist))
	}
	if hist[0].Outcome != "unavailable" || hist[0].Class != "temporary" || hist[0].StatusCode != 503 {
		t.Errorf("newest: got %+v", hist[0])
	}
	if hist[1].Outcome != "ok" || hist[1].DurationMs != 120 || !hist[1].FetchedAt.Equal(t0) {
		t.Errorf("oldest: got %+v", hist[1])
	}
	if hist[0].ID == hist[1].ID || hist[0].ID[:3] != "fl_" {
		t.Errorf("ids: %q %q", hist[0].ID, hist[1].ID)
	}
}

func TestPrune(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for i, run := range []string{"r1", "r2", "r3"} {
		s.BeginRun(ctx, run, t0.Add(time.Duration(i)*time.Hour))
		s.RecordCatalog(ctx, CatalogResult{RunID: run, Catalog: "news", Status: "ok", FinishedAt: t0})
		s.RecordFetch(ctx, fetch.Attempt{URL: "https://x", RunID: run, OK: true, FetchedAt: t0})
	}

	n, err := s.Prune(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	var runs, results, fetches int
	s.DB.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs)
	s.DB.QueryRow(`SELECT COUNT(*) FROM catalog_results`).Scan(&results)
	s.DB.QueryRow(`SELECT COUNT(*) FROM fetch_log`).Scan(&fetches)
	if runs != 2 || results != 2 || fetches != 2 {
		t.Errorf("after prune: runs=%d results=%d fetches=%d", runs, results, fetches)
	}
}
