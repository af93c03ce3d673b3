// CLAUDE:SUMMARY Single-shot HTTP GET returning Fetched or Unavailable, never an error; SSRF-guarded, size-capped, observed.
// Package fetch is radar's network access layer.
//
// Every call is exactly one attempt. Transport errors, non-2xx statuses,
// blocked URLs and oversize bodies all resolve to Unavailable; callers
// type-switch on the Outcome and degrade (skip the source or keep the
// previous state).
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/radar/horosafe"
	"github.com/hazyhaar/radar/kit"
)

// Outcome is either Fetched or Unavailable.
type Outcome interface {
	outcome()
	Target() string
}

// Fetched is a successful 2xx response.
type Fetched struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Unavailable means the source could not be used this cycle.
type Unavailable struct {
	URL        string
	StatusCode int // 0 when no response was received
	Class      Class
	Detail     string
}

func (Fetched) outcome()     {}
func (Unavailable) outcome() {}

func (f Fetched) Target() string     { return f.URL }
func (u Unavailable) Target() string { return u.URL }

// Text returns the body as a string.
func (f Fetched) Text() string { return string(f.Body) }

// IsHTML reports whether the response declared an HTML content type.
func (f Fetched) IsHTML() bool {
	ct := strings.ToLower(f.ContentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// Reason is a short human-readable explanation.
func (u Unavailable) Reason() string {
	if u.StatusCode > 0 {
		return fmt.Sprintf("%s (http %d)", u.Class, u.StatusCode)
	}
	return string(u.Class)
}

// Attempt describes one fetch for observers.
type Attempt struct {
	URL        string
	RunID      string
	Catalog    string
	OK         bool
	StatusCode int
	Class      Class // empty when OK
	Duration   time.Duration
	FetchedAt  time.Time
}

// Observer is notified once per attempt. Observers must be safe for
// concurrent use and must not block.
type Observer func(ctx context.Context, a Attempt)

// Config configures the client.
type Config struct {
	Timeout   time.Duration // Default: 30s.
	MaxBytes  int64         // Default: horosafe.MaxResponseBody.
	UserAgent string
	// URLValidator runs before the request and on each redirect.
	// Default: horosafe.ValidateURL.
	URLValidator func(string) error
	Observers    []Observer
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = horosafe.MaxResponseBody
	}
	if c.UserAgent == "" {
		c.UserAgent = "radar-updater/1.0"
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Options are per-request settings.
type Options struct {
	Accept  string
	Headers map[string]string
}

// Client performs single-shot GETs.
type Client struct {
	http   *http.Client
	config Config
}

var errBlocked = errors.New("url blocked")

// New creates a Client. Redirects are capped at 5 and re-validated.
func New(cfg Config) *Client {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("%w: redirect: %v", errBlocked, err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Get fetches url once.
func (c *Client) Get(ctx context.Context, url string, opts Options) Outcome {
	start := time.Now()
	out := c.get(ctx, url, opts)

	a := Attempt{
		URL:       url,
		RunID:     kit.GetRunID(ctx),
		Catalog:   kit.GetCatalog(ctx),
		Duration:  time.Since(start),
		FetchedAt: start.UTC(),
	}
	switch o := out.(type) {
	case Fetched:
		a.OK = true
		a.StatusCode = o.StatusCode
	case Unavailable:
		a.StatusCode = o.StatusCode
		a.Class = o.Class
		c.config.Logger.Warn("fetch: source unavailable",
			"url", url, "catalog", a.Catalog, "class", o.Class,
			"status_code", o.StatusCode, "detail", o.Detail)
	}
	for _, obs := range c.config.Observers {
		obs(ctx, a)
	}
	return out
}

func (c *Client) get(ctx context.Context, url string, opts Options) Outcome {
	if err := c.config.URLValidator(url); err != nil {
		return Unavailable{URL: url, Class: ClassBlocked, Detail: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unavailable{URL: url, Class: ClassUnknown, Detail: "new request: " + err.Error()}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if opts.Accept != "" {
		req.Header.Set("Accept", opts.Accept)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cls := classifyError(err)
		if errors.Is(err, errBlocked) {
			cls = ClassBlocked
		}
		return Unavailable{URL: url, Class: cls, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Unavailable{
			URL:        url,
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Detail:     resp.Status,
		}
	}

	body, err := horosafe.LimitedReadAll(resp.Body, c.config.MaxBytes)
	if err != nil {
		cls := classifyError(err)
		if errors.Is(err, horosafe.ErrTooLarge) {
			cls = ClassTooLarge
		}
		return Unavailable{URL: url, StatusCode: resp.StatusCode, Class: cls, Detail: "read body: " + err.Error()}
	}

	return Fetched{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
}
