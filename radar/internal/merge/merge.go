// CLAUDE:SUMMARY Generic priority-ordered dedup/merge with optional stable sort and cap; URL identity keys; capped archives.
// Package merge combines candidate lists from several sources into one
// canonical, deterministic list.
//
// Lists are concatenated in priority order and the first occurrence of each
// identity key wins, so list order is the only tie-break. Any secondary
// ordering is a stable sort over content-derived keys.
package merge

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/hazyhaar/radar/radar/internal/model"
)

// Options parameterizes Merge for one catalog.
type Options[T any] struct {
	// Key returns the identity key. Items with an empty key are dropped.
	Key func(T) string
	// Compare, if set, orders the deduplicated list (stable).
	Compare func(a, b T) int
	// Limit truncates the result; 0 means unlimited.
	Limit int
}

// Merge concatenates lists in priority order, keeps the first occurrence of
// each key, applies the optional stable ordering and truncates.
func Merge[T any](opts Options[T], lists ...[]T) []T {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]T, 0, total)
	seen := make(map[string]struct{}, total)
	for _, l := range lists {
		for _, item := range l {
			k := opts.Key(item)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, item)
		}
	}
	if opts.Compare != nil {
		slices.SortStableFunc(out, opts.Compare)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Archive merges fresh items ahead of existing ones, dedups by key, orders
// by recency descending (stable) and truncates at limit.
func Archive[T any](fresh, existing []T, key func(T) string, recency func(T) time.Time, limit int) []T {
	return Merge(Options[T]{
		Key: key,
		Compare: func(a, b T) int {
			return recency(b).Compare(recency(a))
		},
		Limit: limit,
	}, fresh, existing)
}

// URLKey is the identity key of a URL: query string, fragment and trailing
// slashes removed, lower-cased.
func URLKey(raw string) string {
	k := strings.TrimSpace(raw)
	if i := strings.IndexAny(k, "?#"); i >= 0 {
		k = k[:i]
	}
	k = strings.TrimRight(k, "/")
	return strings.ToLower(k)
}

// NameKey is the identity key of a display name: case-folded with
// whitespace collapsed.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ItemKey keys content items by URL.
func ItemKey(it model.ContentItem) string { return URLKey(it.URL) }

// ItemRecency orders content items by publish date.
func ItemRecency(it model.ContentItem) time.Time { return it.PublishedAt }

// RepositoryKey keys repository records by repository URL.
func RepositoryKey(r model.Repository) string { return URLKey(r.RepoURL) }

// RepositoryRecency orders repository records by last update.
func RepositoryRecency(r model.Repository) time.Time { return r.UpdatedAt }

// RepositoryOrder orders official before community, then stars
// descending, then updatedAt descending.
func RepositoryOrder(a, b model.Repository) int {
	if c := cmp.Compare(provenanceRank(a.Source), provenanceRank(b.Source)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
		return c
	}
	return b.UpdatedAt.Compare(a.UpdatedAt)
}

func provenanceRank(p model.Provenance) int {
	if p == model.Official {
		return 0
	}
	return 1
}
