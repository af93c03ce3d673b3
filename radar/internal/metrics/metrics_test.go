package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/radar/radar/internal/fetch"
)

func TestWriteTextfile(t *testing.T) {
	// WHAT: Observed fetches and catalog outcomes appear in the textfile.
	// WHY: The textfile is the only metrics surface of a one-shot process.
	r := New()
	obs := r.Observer()
	ctx := context.Background()
	obs(ctx, fetch.Attempt{Catalog: "news", OK: true, Duration: 200 * time.Millisecond})
	obs(ctx, fetch.Attempt{Catalog: "news", OK: true})
	obs(ctx, fetch.Attempt{Catalog: "news", Class: fetch.ClassRateLimit})
	obs(ctx, fetch.Attempt{OK: true})

	r.CatalogDone("news", "ok", 10)
	r.CatalogDone("mcp", "aborted", 2)
	r.CycleDone(time.Unix(1_780_000_000, 0))

	path := filepath.Join(t.TempDir(), "radar.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	for _, line := range []string{
		`radar_fetch_total{catalog="news",class="",outcome="ok"} 2`,
		`radar_fetch_total{catalog="news",class="rate_limit",outcome="unavailable"} 1`,
		`radar_fetch_total{catalog="unscoped",class="",outcome="ok"} 1`,
		`radar_catalog_items{catalog="news"} 10`,
		`radar_catalog_runs_total{catalog="mcp",status="aborted"} 1`,
		`radar_catalog_runs_total{catalog="news",status="ok"} 1`,
		`radar_last_cycle_timestamp_seconds 1.78e+09`,
		`radar_fetch_duration_seconds_count{catalog="news"} 3`,
	} {
		if !strings.Contains(text, line) {
			t.Errorf("missing %q in:\n%s", line, text)
		}
	}
	if strings.Contains(text, `radar_catalog_items{catalog="mcp"}`) {
		t.Error("aborted catalog must not report a size")
	}
}
