// CLAUDE:SUMMARY Service configuration: embedded defaults.yaml decoded with yaml.v3, zero values filled by defaults(), env for paths and secrets.
package radar

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/radar/radar/internal/gate"
	"github.com/hazyhaar/radar/radar/internal/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config configures one radar cycle.
type Config struct {
	// DataDir holds the catalog JSON files, the journal and the metrics textfile.
	DataDir string `yaml:"data_dir"`

	// GitHubAPI overrides the GitHub API base URL (for testing).
	GitHubAPI string `yaml:"github_api"`
	// GitHubToken is read from the environment only.
	GitHubToken string `yaml:"-"`

	Fetch      FetchConfig      `yaml:"fetch"`
	News       NewsConfig       `yaml:"news"`
	Registries []RegistryConfig `yaml:"registries"`
	Skills     SkillsConfig     `yaml:"skills"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Journal    JournalConfig    `yaml:"journal"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// FetchConfig tunes the network access layer.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
	// Concurrency bounds parallel fetches within one catalog.
	Concurrency int `yaml:"concurrency"`
}

// FeedSource is one RSS or Atom feed.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// NewsConfig configures the news catalog.
type NewsConfig struct {
	Feeds       []FeedSource `yaml:"feeds"`
	MaxItems    int          `yaml:"max_items"`
	MinItems    int          `yaml:"min_items"`
	ArchiveCap  int          `yaml:"archive_cap"`
	File        string       `yaml:"file"`
	ArchiveFile string       `yaml:"archive_file"`
}

// ExternalRegistryConfig configures an optional third-party registry CLI.
// Disabled when Command is empty.
type ExternalRegistryConfig struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Query   string        `yaml:"query"`
	Timeout time.Duration `yaml:"timeout"`
}

// RegistryConfig configures one repository registry catalog.
type RegistryConfig struct {
	Name           string   `yaml:"name"`
	Queries        []string `yaml:"queries"`
	PerPage        int      `yaml:"per_page"`
	OfficialOwners []string `yaml:"official_owners"`
	// DefaultDescription fills repositories published without one.
	DefaultDescription string `yaml:"default_description"`
	MaxRecords         int    `yaml:"max_records"`
	MinRecords         int    `yaml:"min_records"`
	ArchiveCap         int    `yaml:"archive_cap"`
	// Verify re-checks each fresh repository URL and stamps verifiedAt.
	Verify   bool                   `yaml:"verify"`
	External ExternalRegistryConfig `yaml:"external"`
}

// File is the snapshot document name.
func (r RegistryConfig) File() string { return r.Name + ".json" }

// ArchiveFile is the archive document name.
func (r RegistryConfig) ArchiveFile() string { return r.Name + "-archive.json" }

// InferenceRule maps a keyword found in a repository to a skill.
type InferenceRule struct {
	Token            string `yaml:"token"`
	Name             string `yaml:"name"`
	PracticalUseCase string `yaml:"practical_use_case"`
}

// SkillsConfig configures the skills catalog.
type SkillsConfig struct {
	Policy  gate.SkillPolicy `yaml:"policy"`
	Curated []model.Skill    `yaml:"curated"`
	// Query searches for repositories whose activity implies new skills.
	Query         string          `yaml:"query"`
	PerPage       int             `yaml:"per_page"`
	Rules         []InferenceRule `yaml:"rules"`
	InferCategory string          `yaml:"infer_category"`
	// MaxInferred caps skills inferred per cycle.
	MaxInferred int    `yaml:"max_inferred"`
	File        string `yaml:"file"`
}

// PromptSource is one document that may hold a tool's system prompt.
type PromptSource struct {
	Label string           `yaml:"label"`
	URL   string           `yaml:"url"`
	Type  model.SourceType `yaml:"type"`
	// Selectors narrow HTML pages to the prompt body. Empty uses the
	// page's main landmark.
	Selectors []string `yaml:"selectors"`
}

// ToolConfig configures one monitored tool.
type ToolConfig struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	// Focus is the tool-specific keyword for confidence scoring.
	Focus       string            `yaml:"focus"`
	Sources     []PromptSource    `yaml:"sources"`
	SearchQuery string            `yaml:"search_query"`
	Pinned      []model.Candidate `yaml:"pinned"`
}

// PromptsConfig configures the prompts catalog.
type PromptsConfig struct {
	Tools         []ToolConfig `yaml:"tools"`
	TimelineCap   int          `yaml:"timeline_cap"`
	CandidatesCap int          `yaml:"candidates_cap"`
	ExcerptLen    int          `yaml:"excerpt_len"`
	SearchPerPage int          `yaml:"search_per_page"`
	File          string       `yaml:"file"`
}

// JournalConfig configures the SQLite run journal.
type JournalConfig struct {
	Enabled  bool   `yaml:"enabled"`
	File     string `yaml:"file"`
	KeepRuns int    `yaml:"keep_runs"`
}

// MetricsConfig configures the Prometheus textfile.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// DefaultConfig decodes the embedded defaults.yaml.
func DefaultConfig() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("radar: decode defaults.yaml: %w", err)
	}
	cfg.defaults()
	return &cfg, nil
}

// ApplyEnv overlays deployment settings from the environment:
// DATA_DIR and GITHUB_TOKEN.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv("DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(getenv("GITHUB_TOKEN")); v != "" {
		c.GitHubToken = v
	}
}

func (c *Config) defaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 10 * 1024 * 1024
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "radar-updater/1.0"
	}
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = 4
	}

	if c.News.MaxItems <= 0 {
		c.News.MaxItems = 10
	}
	if c.News.MinItems <= 0 {
		c.News.MinItems = 1
	}
	if c.News.ArchiveCap <= 0 {
		c.News.ArchiveCap = 500
	}
	if c.News.File == "" {
		c.News.File = "news.json"
	}
	if c.News.ArchiveFile == "" {
		c.News.ArchiveFile = "news-archive.json"
	}

	for i := range c.Registries {
		r := &c.Registries[i]
		if r.PerPage <= 0 {
			r.PerPage = 10
		}
		if r.MaxRecords <= 0 {
			r.MaxRecords = 60
		}
		if r.MinRecords <= 0 {
			r.MinRecords = 1
		}
		if r.ArchiveCap <= 0 {
			r.ArchiveCap = 500
		}
		if r.DefaultDescription == "" {
			r.DefaultDescription = "Repository discovered by automation."
		}
	}

	c.Skills.Policy.Defaults()
	if c.Skills.PerPage <= 0 {
		c.Skills.PerPage = 15
	}
	if c.Skills.InferCategory == "" {
		c.Skills.InferCategory = "AI Capability"
	}
	if c.Skills.MaxInferred <= 0 {
		c.Skills.MaxInferred = 3
	}
	if c.Skills.File == "" {
		c.Skills.File = "skills.json"
	}

	if c.Prompts.TimelineCap <= 0 {
		c.Prompts.TimelineCap = 8
	}
	if c.Prompts.CandidatesCap <= 0 {
		c.Prompts.CandidatesCap = 6
	}
	if c.Prompts.ExcerptLen <= 0 {
		c.Prompts.ExcerptLen = 900
	}
	if c.Prompts.SearchPerPage <= 0 {
		c.Prompts.SearchPerPage = 5
	}
	if c.Prompts.File == "" {
		c.Prompts.File = "prompts.json"
	}

	if c.Journal.File == "" {
		c.Journal.File = "radar.db"
	}
	if c.Journal.KeepRuns <= 0 {
		c.Journal.KeepRuns = 200
	}
	if c.Metrics.File == "" {
		c.Metrics.File = "radar.prom"
	}
}
