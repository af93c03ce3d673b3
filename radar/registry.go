// CLAUDE:SUMMARY Repository registry catalog: GitHub search + optional external registry, reachability stamping, ranked merge with previous, hard count gate, archive.
package radar

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/radar/radar/internal/fetch"
	"github.com/hazyhaar/radar/radar/internal/gate"
	"github.com/hazyhaar/radar/radar/internal/merge"
	"github.com/hazyhaar/radar/radar/internal/model"
	"github.com/hazyhaar/radar/radar/internal/search"
)

type registryCatalog struct {
	svc      *Service
	cfg      RegistryConfig
	external search.Registry // nil when not configured
}

func (r *registryCatalog) Name() string { return r.cfg.Name }

// Update merges fresh search results into the previous snapshot. The write
// is refused when the merged catalog is below MinRecords.
func (r *registryCatalog) Update(ctx context.Context) (int, error) {
	if len(r.cfg.Queries) == 0 && r.external == nil {
		return 0, fmt.Errorf("%s: %w", r.cfg.Name, ErrNoSources)
	}
	var prev []model.Repository
	if _, err := r.svc.store.Load(r.cfg.File(), &prev); err != nil {
		return 0, fmt.Errorf("%s: %w", r.cfg.Name, err)
	}

	next, err := r.build(ctx, prev)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", r.cfg.Name, err)
	}
	if err := gate.MinCount(len(next), r.cfg.MinRecords); err != nil {
		return 0, fmt.Errorf("%s: %w", r.cfg.Name, err)
	}
	if err := r.svc.store.Save(r.cfg.File(), next); err != nil {
		return 0, fmt.Errorf("%s: %w", r.cfg.Name, err)
	}

	var archive []model.Repository
	if _, err := r.svc.store.Load(r.cfg.ArchiveFile(), &archive); err != nil {
		return len(next), fmt.Errorf("%s: archive: %w", r.cfg.Name, err)
	}
	archive = merge.Archive(next, archive, merge.RepositoryKey, merge.RepositoryRecency, r.cfg.ArchiveCap)
	if err := r.svc.store.Save(r.cfg.ArchiveFile(), archive); err != nil {
		return len(next), fmt.Errorf("%s: archive: %w", r.cfg.Name, err)
	}
	return len(next), nil
}

// build returns fresh results merged ahead of prev, ranked and truncated.
func (r *registryCatalog) build(ctx context.Context, prev []model.Repository) ([]model.Repository, error) {
	fresh, err := r.discover(ctx)
	if err != nil {
		return nil, err
	}
	fresh = merge.Merge(merge.Options[model.Repository]{Key: merge.RepositoryKey}, fresh)
	if r.cfg.Verify {
		fresh, err = r.verify(ctx, fresh)
		if err != nil {
			return nil, err
		}
	}
	return merge.Merge(merge.Options[model.Repository]{
		Key:     merge.RepositoryKey,
		Compare: merge.RepositoryOrder,
		Limit:   r.cfg.MaxRecords,
	}, fresh, prev), nil
}

// discover runs every query and the external registry concurrently. Query
// order, then external results, fixes merge priority.
func (r *registryCatalog) discover(ctx context.Context) ([]model.Repository, error) {
	log := r.svc.logger.With("catalog", r.cfg.Name)
	gh := r.svc.github.WithPerPage(r.cfg.PerPage)

	results := make([][]search.Candidate, len(r.cfg.Queries)+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.svc.config.Fetch.Concurrency)
	for i, q := range r.cfg.Queries {
		g.Go(func() error {
			cs, err := gh.Search(gctx, q)
			if err != nil {
				log.Warn("registry: search failed", "query", q, "error", err)
				return nil
			}
			results[i] = cs
			return nil
		})
	}
	if r.external != nil {
		g.Go(func() error {
			cs, err := r.external.Search(gctx, r.cfg.External.Query)
			if err != nil {
				log.Warn("registry: external registry failed", "error", err)
				return nil
			}
			results[len(r.cfg.Queries)] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := r.svc.now().UTC()
	var fresh []model.Repository
	for _, cs := range results {
		for _, c := range cs {
			fresh = append(fresh, r.toRepository(c, now))
		}
	}
	log.Debug("registry: discovered", "repositories", len(fresh))
	return fresh, nil
}

func (r *registryCatalog) toRepository(c search.Candidate, now time.Time) model.Repository {
	repo := model.Repository{
		Name:        c.Name,
		RepoURL:     c.URL,
		Description: c.Description,
		Stars:       c.Stars,
		UpdatedAt:   c.UpdatedAt,
		Source:      model.Community,
	}
	if repo.Description == "" {
		repo.Description = r.cfg.DefaultDescription
	}
	if repo.UpdatedAt.IsZero() {
		repo.UpdatedAt = now
	}
	if slices.ContainsFunc(r.cfg.OfficialOwners, func(o string) bool {
		return strings.EqualFold(o, c.Owner)
	}) {
		repo.Source = model.Official
	}
	return repo
}

// verify fetches each repository page once, keeps the reachable ones and
// stamps their verifiedAt.
func (r *registryCatalog) verify(ctx context.Context, repos []model.Repository) ([]model.Repository, error) {
	reachable := make([]bool, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.svc.config.Fetch.Concurrency)
	for i, repo := range repos {
		g.Go(func() error {
			_, ok := r.svc.fetcher.Get(gctx, repo.RepoURL, fetch.Options{}).(fetch.Fetched)
			reachable[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := r.svc.now().UTC()
	out := make([]model.Repository, 0, len(repos))
	for i, repo := range repos {
		if !reachable[i] {
			continue
		}
		repo.VerifiedAt = now
		out = append(out, repo)
	}
	if dropped := len(repos) - len(out); dropped > 0 {
		r.svc.logger.Info("registry: unreachable repositories dropped", "catalog", r.cfg.Name, "dropped", dropped)
	}
	return out, nil
}
