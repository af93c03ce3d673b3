// CLAUDE:SUMMARY Per-cycle Prometheus metrics (fetch outcomes, catalog sizes and statuses) flushed to a node-exporter textfile.
// Package metrics collects radar cycle metrics in a private Prometheus
// registry and writes them as a textfile at the end of the cycle. The
// process is one-shot, so there is no scrape endpoint.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazyhaar/radar/radar/internal/fetch"
)

// Recorder holds the cycle's collectors.
type Recorder struct {
	reg          *prometheus.Registry
	fetches      *prometheus.CounterVec
	items        *prometheus.GaugeVec
	catalogRuns  *prometheus.CounterVec
	fetchSeconds *prometheus.HistogramVec
	lastCycle    prometheus.Gauge
}

// New registers the radar collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_fetch_total",
			Help: "Fetch attempts by catalog, outcome and failure class.",
		}, []string{"catalog", "outcome", "class"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "radar_catalog_items",
			Help: "Records in the catalog snapshot after the cycle.",
		}, []string{"catalog"}),
		catalogRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_catalog_runs_total",
			Help: "Catalog updates by final status.",
		}, []string{"catalog", "status"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radar_fetch_duration_seconds",
			Help:    "Fetch attempt latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"catalog"}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "radar_last_cycle_timestamp_seconds",
			Help: "Unix time the last cycle finished.",
		}),
	}
	r.reg.MustRegister(r.fetches, r.items, r.catalogRuns, r.fetchSeconds, r.lastCycle)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Observer returns a fetch.Observer counting attempts.
func (r *Recorder) Observer() fetch.Observer {
	return func(_ context.Context, a fetch.Attempt) {
		outcome := "ok"
		if !a.OK {
			outcome = "unavailable"
		}
		catalog := a.Catalog
		if catalog == "" {
			catalog = "unscoped"
		}
		r.fetches.WithLabelValues(catalog, outcome, string(a.Class)).Inc()
		r.fetchSeconds.WithLabelValues(catalog).Observe(a.Duration.Seconds())
	}
}

// CatalogDone records a catalog's final status and, when it committed, its size.
func (r *Recorder) CatalogDone(catalog, status string, items int) {
	r.catalogRuns.WithLabelValues(catalog, status).Inc()
	if status == "ok" {
		r.items.WithLabelValues(catalog).Set(float64(items))
	}
}

// CycleDone stamps the cycle finish time.
func (r *Recorder) CycleDone(at time.Time) {
	r.lastCycle.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the text exposition format,
// atomically, for the node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
