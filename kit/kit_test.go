package kit

import (
	"context"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run_1")
	if got := GetRunID(ctx); got != "run_1" {
		t.Fatalf("got %q", got)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Fatalf("empty context: got %q", got)
	}
}

func TestCatalogDefault(t *testing.T) {
	if got := GetCatalog(context.Background()); got != "unscoped" {
		t.Fatalf("got %q, want unscoped", got)
	}
	ctx := WithCatalog(context.Background(), "news")
	if got := GetCatalog(ctx); got != "news" {
		t.Fatalf("got %q, want news", got)
	}
}
