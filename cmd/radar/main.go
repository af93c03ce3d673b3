// CLAUDE:SUMMARY Entry point: one radar cycle over every catalog with JSON slog output; exits non-zero only when a catalog failed.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/radar/radar"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level(env("LOG_LEVEL", "info"))}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := radar.DefaultConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.Getenv)

	svc, err := radar.New(cfg, logger)
	if err != nil {
		slog.Error("radar init", "error", err)
		os.Exit(1)
	}
	rep := svc.RunCycle(ctx)
	svc.Close()

	for _, c := range rep.Catalogs {
		slog.Info("catalog", "name", c.Catalog, "status", c.Status, "items", c.Items, "reason", c.Reason)
	}
	if rep.Failed() {
		os.Exit(1)
	}
}

func level(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
