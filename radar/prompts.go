// CLAUDE:SUMMARY Prompts catalog: per-tool concurrent source reads, HTML→markdown, confidence pick, change tracking, carry-forward, capped timeline and candidates.
package radar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/radar/radar/internal/change"
	"github.com/hazyhaar/radar/radar/internal/extract"
	"github.com/hazyhaar/radar/radar/internal/fetch"
	"github.com/hazyhaar/radar/radar/internal/merge"
	"github.com/hazyhaar/radar/radar/internal/model"
	"github.com/hazyhaar/radar/radar/internal/sanitize"
	"github.com/hazyhaar/radar/radar/internal/score"
)

const promptAccept = "text/plain, text/markdown, text/html;q=0.9, */*;q=0.5"

type promptsCatalog struct {
	svc *Service
	cfg PromptsConfig
	md  *converter.Converter
}

func newPromptsCatalog(svc *Service, cfg PromptsConfig) *promptsCatalog {
	return &promptsCatalog{
		svc: svc,
		cfg: cfg,
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (p *promptsCatalog) Name() string { return "prompts" }

// Update refreshes every tool profile and rewrites prompts.json. A tool
// whose sources all fail keeps its previous snapshot.
func (p *promptsCatalog) Update(ctx context.Context) (int, error) {
	if len(p.cfg.Tools) == 0 {
		return 0, fmt.Errorf("prompts: %w", ErrNoSources)
	}
	var prev model.PromptCatalog
	if _, err := p.svc.store.Load(p.cfg.File, &prev); err != nil {
		return 0, fmt.Errorf("prompts: %w", err)
	}
	next, err := p.build(ctx, prev)
	if err != nil {
		return 0, fmt.Errorf("prompts: %w", err)
	}
	if err := p.svc.store.Save(p.cfg.File, next); err != nil {
		return 0, fmt.Errorf("prompts: %w", err)
	}
	return len(next.Tools), nil
}

func (p *promptsCatalog) build(ctx context.Context, prev model.PromptCatalog) (model.PromptCatalog, error) {
	byTool := make(map[string]*model.PromptProfile, len(prev.Tools))
	for i := range prev.Tools {
		byTool[prev.Tools[i].Tool] = &prev.Tools[i]
	}

	next := model.PromptCatalog{GeneratedAt: p.svc.now().UTC()}
	for _, tool := range p.cfg.Tools {
		profile, err := p.buildProfile(ctx, tool, byTool[tool.ID])
		if err != nil {
			return model.PromptCatalog{}, fmt.Errorf("%s: %w", tool.ID, err)
		}
		next.Tools = append(next.Tools, profile)
	}
	return next, nil
}

// sourceRead is the outcome of reading one monitored source.
type sourceRead struct {
	text   string
	report model.MonitoredSource
}

// buildProfile fails only when ctx is cancelled. Unavailable sources
// degrade the profile instead.
func (p *promptsCatalog) buildProfile(ctx context.Context, tool ToolConfig, prev *model.PromptProfile) (model.PromptProfile, error) {
	log := p.svc.logger.With("catalog", p.Name(), "tool", tool.ID)

	reads := make([]sourceRead, len(tool.Sources))
	var found []model.Candidate

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.svc.config.Fetch.Concurrency)
	for i, src := range tool.Sources {
		g.Go(func() error {
			reads[i] = p.readSource(gctx, tool, src)
			return ctx.Err()
		})
	}
	if tool.SearchQuery != "" {
		g.Go(func() error {
			found = p.searchCandidates(gctx, tool)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return model.PromptProfile{}, err
	}

	profile := model.PromptProfile{Tool: tool.ID, DisplayName: tool.DisplayName}
	best := -1
	for i, r := range reads {
		profile.MonitoredSources = append(profile.MonitoredSources, r.report)
		profile.SourceStats.Total++
		if r.report.Status != sourceOK {
			profile.SourceStats.Failed++
			continue
		}
		profile.SourceStats.Reachable++
		if best < 0 || r.report.Confidence > reads[best].report.Confidence {
			best = i
		}
	}

	var prevLatest *model.Snapshot
	var prevTimeline []model.Snapshot
	var prevCandidates []model.Candidate
	if prev != nil {
		prevLatest = &prev.Latest
		prevTimeline = prev.Timeline
		prevCandidates = prev.Candidates
	}

	if best >= 0 {
		profile.SourceStats.BestConfidence = reads[best].report.Confidence
		profile.Latest = p.snapshot(tool, reads[best], prevLatest, profile.SourceStats)
	} else {
		summary := fmt.Sprintf("All %d monitored sources unavailable; showing the last known snapshot.", len(tool.Sources))
		profile.Latest = change.CarryForward(prevLatest, summary)
		log.Warn("prompts: all sources unhealthy, previous snapshot carried forward",
			"sources", len(tool.Sources), "has_previous", prevLatest != nil && prevLatest.ContentHash != "")
	}

	profile.Timeline = prevTimeline
	if profile.Latest.ContentHash != "" {
		profile.Timeline = change.AppendTimeline(prevTimeline, profile.Latest, p.cfg.TimelineCap)
	}
	if profile.Timeline == nil {
		profile.Timeline = []model.Snapshot{}
	}

	profile.Candidates = merge.Merge(merge.Options[model.Candidate]{
		Key:   func(c model.Candidate) string { return merge.URLKey(c.URL) },
		Limit: p.cfg.CandidatesCap,
	}, tool.Pinned, found, prevCandidates)
	if profile.Candidates == nil {
		profile.Candidates = []model.Candidate{}
	}

	log.Debug("prompts: profile built",
		"reachable", profile.SourceStats.Reachable, "status", profile.Latest.Change.Status)
	return profile, nil
}

const (
	sourceOK          = "ok"
	sourceUnavailable = "unavailable"
)

// readSource fetches one source and scores its text. HTML pages are
// narrowed to their main content and converted to markdown first.
func (p *promptsCatalog) readSource(ctx context.Context, tool ToolConfig, src PromptSource) sourceRead {
	rep := model.MonitoredSource{Label: src.Label, URL: src.URL, Type: src.Type, Status: sourceUnavailable}

	var f fetch.Fetched
	switch o := p.svc.fetcher.Get(ctx, src.URL, fetch.Options{Accept: promptAccept}).(type) {
	case fetch.Unavailable:
		rep.Reason = o.Reason()
		return sourceRead{report: rep}
	case fetch.Fetched:
		f = o
	}

	text := f.Text()
	if f.IsHTML() {
		content, err := extract.Main(text, src.Selectors)
		if err != nil {
			rep.Reason = "no content matched selectors"
			return sourceRead{report: rep}
		}
		md, err := p.md.ConvertString(content, converter.WithDomain(src.URL))
		if err != nil {
			rep.Reason = "html conversion failed"
			return sourceRead{report: rep}
		}
		text = md
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	if text == "" {
		rep.Reason = "empty document"
		return sourceRead{report: rep}
	}

	rep.Status = sourceOK
	rep.Confidence = score.Confidence(text, src.Type, tool.Focus)
	return sourceRead{text: text, report: rep}
}

func (p *promptsCatalog) snapshot(tool ToolConfig, r sourceRead, prev *model.Snapshot, stats model.SourceStats) model.Snapshot {
	hash := change.Fingerprint(r.text)
	var prevHash string
	if prev != nil {
		prevHash = prev.ContentHash
	}
	return model.Snapshot{
		SnapshotID:    p.svc.newSnapID(),
		DetectedAt:    p.svc.now().UTC().Truncate(time.Second),
		Title:         fmt.Sprintf("%s system prompt (%s)", tool.DisplayName, r.report.Label),
		URL:           r.report.URL,
		ContentHash:   hash,
		Confidence:    r.report.Confidence,
		Excerpt:       sanitize.Truncate(r.text, p.cfg.ExcerptLen),
		SourceSummary: fmt.Sprintf("%d of %d sources reachable; best confidence %d from %s.", stats.Reachable, stats.Total, r.report.Confidence, r.report.Label),
		CodingFocus:   score.CodingFocus(r.text),
		Change:        model.Change{Status: change.Classify(prevHash, hash), PreviousHash: prevHash},
	}
}

func (p *promptsCatalog) searchCandidates(ctx context.Context, tool ToolConfig) []model.Candidate {
	cs, err := p.svc.github.WithPerPage(p.cfg.SearchPerPage).Search(ctx, tool.SearchQuery)
	if err != nil {
		p.svc.logger.Warn("prompts: candidate search failed", "tool", tool.ID, "error", err)
		return nil
	}
	out := make([]model.Candidate, 0, len(cs))
	for _, c := range cs {
		out = append(out, model.Candidate{Title: c.Name, URL: c.URL, Stars: c.Stars, UpdatedAt: c.UpdatedAt})
	}
	return out
}
