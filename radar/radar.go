// CLAUDE:SUMMARY Service orchestrator: wires fetch/search/persist/journal/metrics and runs every catalog behind a panic-safe boundary.
// CLAUDE:DEPENDS radar/internal/{fetch,search,persist,journal,metrics}, kit, idgen
// CLAUDE:EXPORTS Service, New, ServiceOption, Report, Catalog
package radar

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/hazyhaar/radar/idgen"
	"github.com/hazyhaar/radar/kit"
	"github.com/hazyhaar/radar/radar/internal/fetch"
	"github.com/hazyhaar/radar/radar/internal/journal"
	"github.com/hazyhaar/radar/radar/internal/metrics"
	"github.com/hazyhaar/radar/radar/internal/persist"
	"github.com/hazyhaar/radar/radar/internal/search"
)

// Catalog is one independently updated collection. Update returns the
// number of records committed.
type Catalog interface {
	Name() string
	Update(ctx context.Context) (int, error)
}

// Report summarises one cycle.
type Report struct {
	RunID      string          `json:"runId"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Catalogs   []CatalogReport `json:"catalogs"`
}

// Failed reports whether any catalog failed (aborts do not count).
func (r Report) Failed() bool {
	for _, c := range r.Catalogs {
		if c.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Service runs radar cycles.
type Service struct {
	config       *Config
	logger       *slog.Logger
	store        *persist.Store
	fetcher      *fetch.Client
	github       *search.GitHub
	journal      *journal.Store    // nil when disabled
	metrics      *metrics.Recorder // nil when disabled
	catalogs     []Catalog
	external     map[string]search.Registry
	now          func() time.Time
	newRunID     idgen.Generator
	newSnapID    idgen.Generator
	urlValidator func(string) error
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the generator behind run and snapshot IDs.
func WithIDGenerator(gen idgen.Generator) ServiceOption {
	return func(s *Service) {
		s.newRunID = idgen.Prefixed("run_", gen)
		s.newSnapID = idgen.Prefixed("snap_", gen)
	}
}

// WithURLValidator overrides the fetch URL validator (default: horosafe.ValidateURL).
// Use in tests with httptest servers that listen on loopback addresses.
func WithURLValidator(fn func(string) error) ServiceOption {
	return func(s *Service) { s.urlValidator = fn }
}

// WithExternalRegistry attaches a search backend to the named registry
// catalog, replacing the command configured in YAML.
func WithExternalRegistry(catalog string, r search.Registry) ServiceOption {
	return func(s *Service) { s.external[catalog] = r }
}

// New builds a Service. A nil cfg uses the embedded defaults. The journal
// is opened here when enabled; call Close when done.
func New(cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		def, err := DefaultConfig()
		if err != nil {
			return nil, err
		}
		cfg = def
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		config:    cfg,
		logger:    logger,
		store:     persist.New(cfg.DataDir),
		external:  make(map[string]search.Registry),
		now:       time.Now,
		newRunID:  idgen.RunID,
		newSnapID: idgen.SnapshotID,
	}
	for _, opt := range opts {
		opt(s)
	}

	var observers []fetch.Observer
	if cfg.Journal.Enabled {
		j, err := journal.Open(filepath.Join(cfg.DataDir, cfg.Journal.File))
		if err != nil {
			return nil, fmt.Errorf("radar: open journal: %w", err)
		}
		s.journal = j
		observers = append(observers, j.Observer(logger))
	}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New()
		observers = append(observers, s.metrics.Observer())
	}

	s.fetcher = fetch.New(fetch.Config{
		Timeout:      cfg.Fetch.Timeout,
		MaxBytes:     cfg.Fetch.MaxBytes,
		UserAgent:    cfg.Fetch.UserAgent,
		URLValidator: s.urlValidator,
		Observers:    observers,
		Logger:       logger,
	})
	s.github = search.NewGitHub(s.fetcher, cfg.GitHubAPI, cfg.GitHubToken, 0)

	s.catalogs = append(s.catalogs, &newsCatalog{svc: s, cfg: cfg.News})
	for _, rc := range cfg.Registries {
		ext := s.external[rc.Name]
		if ext == nil && rc.External.Command != "" {
			ext = &search.CommandRegistry{
				Command: rc.External.Command,
				Args:    rc.External.Args,
				Timeout: rc.External.Timeout,
			}
		}
		s.catalogs = append(s.catalogs, &registryCatalog{svc: s, cfg: rc, external: ext})
	}
	s.catalogs = append(s.catalogs,
		&skillsCatalog{svc: s, cfg: cfg.Skills},
		newPromptsCatalog(s, cfg.Prompts),
	)
	return s, nil
}

// Close releases the journal.
func (s *Service) Close() error {
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// Catalogs lists the configured catalogs in run order.
func (s *Service) Catalogs() []Catalog { return s.catalogs }

// Journal returns the run journal, or nil when disabled.
func (s *Service) Journal() *journal.Store { return s.journal }

// RunCycle updates every catalog in order. It never returns early: a
// failure, abort or panic in one catalog is recorded and the next runs.
func (s *Service) RunCycle(ctx context.Context) Report {
	runID := s.newRunID()
	ctx = kit.WithRunID(ctx, runID)
	log := s.logger.With("run_id", runID)
	rep := Report{RunID: runID, StartedAt: s.now().UTC()}

	if s.journal != nil {
		if err := s.journal.BeginRun(context.WithoutCancel(ctx), runID, rep.StartedAt); err != nil {
			log.Warn("radar: journal begin failed", "error", err)
		}
	}
	log.Info("radar: cycle started", "catalogs", len(s.catalogs))

	for _, c := range s.catalogs {
		var cr CatalogReport
		if err := ctx.Err(); err != nil {
			cr = CatalogReport{Catalog: c.Name(), Status: StatusFailed, Reason: err.Error()}
		} else {
			cr = s.runCatalog(kit.WithCatalog(ctx, c.Name()), c)
		}
		rep.Catalogs = append(rep.Catalogs, cr)
		s.record(ctx, runID, cr)
	}

	rep.FinishedAt = s.now().UTC()
	s.finish(context.WithoutCancel(ctx), runID, rep.FinishedAt)
	log.Info("radar: cycle finished", "duration_ms", rep.FinishedAt.Sub(rep.StartedAt).Milliseconds())
	return rep
}

// runCatalog is the per-catalog boundary.
func (s *Service) runCatalog(ctx context.Context, c Catalog) (cr CatalogReport) {
	log := s.logger.With("catalog", c.Name())
	cr.Catalog = c.Name()
	defer func() {
		if r := recover(); r != nil {
			log.Error("radar: catalog panic recovered", "panic", r, "stack", string(debug.Stack()))
			cr.Status = StatusFailed
			cr.Reason = (&PanicError{Catalog: c.Name(), Value: r}).Error()
		}
	}()

	n, err := c.Update(ctx)
	cr.Items = n
	switch {
	case err == nil:
		cr.Status = StatusOK
		log.Info("radar: catalog updated", "items", n)
	case aborted(err):
		cr.Status = StatusAborted
		cr.Reason = err.Error()
		log.Warn("radar: catalog aborted, previous snapshot kept", "reason", err)
	default:
		cr.Status = StatusFailed
		cr.Reason = err.Error()
		log.Error("radar: catalog failed", "error", err)
	}
	return cr
}

func (s *Service) record(ctx context.Context, runID string, cr CatalogReport) {
	if s.metrics != nil {
		s.metrics.CatalogDone(cr.Catalog, string(cr.Status), cr.Items)
	}
	if s.journal == nil {
		return
	}
	err := s.journal.RecordCatalog(context.WithoutCancel(ctx), journal.CatalogResult{
		RunID:      runID,
		Catalog:    cr.Catalog,
		Status:     string(cr.Status),
		Items:      cr.Items,
		Reason:     cr.Reason,
		FinishedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("radar: journal record failed", "catalog", cr.Catalog, "error", err)
	}
}

func (s *Service) finish(ctx context.Context, runID string, at time.Time) {
	if s.journal != nil {
		if err := s.journal.FinishRun(ctx, runID, at); err != nil {
			s.logger.Warn("radar: journal finish failed", "error", err)
		}
		if n, err := s.journal.Prune(ctx, s.config.Journal.KeepRuns); err != nil {
			s.logger.Warn("radar: journal prune failed", "error", err)
		} else if n > 0 {
			s.logger.Debug("radar: journal pruned", "runs", n)
		}
	}
	if s.metrics != nil {
		s.metrics.CycleDone(at)
		path := filepath.Join(s.config.DataDir, s.config.Metrics.File)
		if err := s.metrics.WriteTextfile(path); err != nil {
			s.logger.Warn("radar: metrics not written", "error", err)
		}
	}
}
