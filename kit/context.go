// Package kit carries run-scoped identity through context so observers deep
// in the fetch layer can attribute work to a run and a catalog.
package kit

import "context"

type contextKey string

const (
	RunIDKey   contextKey = "kit_run_id"
	CatalogKey contextKey = "kit_catalog"
)

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

func GetRunID(ctx context.Context) string {
	v, _ := ctx.Value(RunIDKey).(string)
	return v
}

func WithCatalog(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, CatalogKey, name)
}

// GetCatalog returns the catalog name, or "unscoped" when none is set.
func GetCatalog(ctx context.Context) string {
	if v, ok := ctx.Value(CatalogKey).(string); ok && v != "" {
		return v
	}
	return "unscoped"
}
