// CLAUDE:SUMMARY News catalog: concurrent feed fetch, RSS/Atom normalization, URL-key dedup, min-count gate, snapshot + capped archive.
package radar

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/radar/radar/internal/feed"
	"github.com/hazyhaar/radar/radar/internal/fetch"
	"github.com/hazyhaar/radar/radar/internal/gate"
	"github.com/hazyhaar/radar/radar/internal/merge"
	"github.com/hazyhaar/radar/radar/internal/model"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

type newsCatalog struct {
	svc *Service
	cfg NewsConfig
}

func (n *newsCatalog) Name() string { return "news" }

// Update rebuilds news.json from the feeds and folds it into the archive.
func (n *newsCatalog) Update(ctx context.Context) (int, error) {
	if len(n.cfg.Feeds) == 0 {
		return 0, fmt.Errorf("news: %w", ErrNoSources)
	}
	items, err := n.build(ctx)
	if err != nil {
		return 0, fmt.Errorf("news: %w", err)
	}
	if err := gate.MinCount(len(items), n.cfg.MinItems); err != nil {
		return 0, fmt.Errorf("news: %w", err)
	}
	if err := n.svc.store.Save(n.cfg.File, items); err != nil {
		return 0, fmt.Errorf("news: %w", err)
	}

	var archive []model.ContentItem
	if _, err := n.svc.store.Load(n.cfg.ArchiveFile, &archive); err != nil {
		return len(items), fmt.Errorf("news: archive: %w", err)
	}
	archive = merge.Archive(items, archive, merge.ItemKey, merge.ItemRecency, n.cfg.ArchiveCap)
	if err := n.svc.store.Save(n.cfg.ArchiveFile, archive); err != nil {
		return len(items), fmt.Errorf("news: archive: %w", err)
	}
	return len(items), nil
}

// build fetches every feed and merges the items in feed order.
func (n *newsCatalog) build(ctx context.Context) ([]model.ContentItem, error) {
	log := n.svc.logger.With("catalog", n.Name())
	perFeed := make([][]model.ContentItem, len(n.cfg.Feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.svc.config.Fetch.Concurrency)
	for i, src := range n.cfg.Feeds {
		g.Go(func() error {
			out := n.svc.fetcher.Get(gctx, src.URL, fetch.Options{Accept: feedAccept})
			f, ok := out.(fetch.Fetched)
			if !ok {
				return nil
			}
			items, err := feed.Parse(f.Body, src.Name, n.svc.now().UTC())
			if err != nil {
				log.Warn("news: feed parse failed", "feed", src.Name, "url", src.URL, "error", err)
				return nil
			}
			log.Debug("news: feed parsed", "feed", src.Name, "items", len(items))
			perFeed[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merge.Merge(merge.Options[model.ContentItem]{
		Key:   merge.ItemKey,
		Limit: n.cfg.MaxItems,
	}, perFeed...), nil
}
