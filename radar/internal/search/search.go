// CLAUDE:SUMMARY Repository discovery: GitHub search API client and an external-command registry adapter behind one interface.
// CLAUDE:DEPENDS radar/internal/fetch
// CLAUDE:EXPORTS Registry, Candidate, GitHub, NewGitHub, CommandRegistry
// Package search finds candidate repositories for the registry, skills and
// prompt catalogs.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/radar/radar/internal/fetch"
)

var (
	// ErrUnavailable means the search backend could not be reached this cycle.
	ErrUnavailable = errors.New("search: backend unavailable")
	// ErrMalformed means the backend answered with an unparseable payload.
	ErrMalformed = errors.New("search: malformed response")
)

// Candidate is one repository returned by a search backend.
type Candidate struct {
	Name        string // owner/repo
	URL         string
	Description string
	Stars       int
	UpdatedAt   time.Time
	Owner       string
}

// Registry searches one repository index.
type Registry interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Getter is the subset of *fetch.Client used here.
type Getter interface {
	Get(ctx context.Context, url string, opts fetch.Options) fetch.Outcome
}

// DefaultGitHubAPI is the production GitHub API base URL.
const DefaultGitHubAPI = "https://api.github.com"

// GitHub queries GET /search/repositories.
type GitHub struct {
	client  Getter
	baseURL string
	token   string
	perPage int
}

// NewGitHub returns a GitHub search client. baseURL overrides the API base
// (for testing); empty uses production. token is optional.
func NewGitHub(client Getter, baseURL, token string, perPage int) *GitHub {
	if baseURL == "" {
		baseURL = DefaultGitHubAPI
	}
	if perPage <= 0 {
		perPage = 10
	}
	return &GitHub{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		perPage: perPage,
	}
}

// WithPerPage returns a copy of g with a different page size.
func (g *GitHub) WithPerPage(n int) *GitHub {
	cp := *g
	if n > 0 {
		cp.perPage = n
	}
	return &cp
}

// SearchURL builds the search request URL for query.
func (g *GitHub) SearchURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("sort", "updated")
	v.Set("order", "desc")
	v.Set("per_page", strconv.Itoa(g.perPage))
	return g.baseURL + "/search/repositories?" + v.Encode()
}

// Search runs one query. An unreachable API returns ErrUnavailable; an
// unparseable body returns ErrMalformed. Items missing a name or URL are
// skipped.
func (g *GitHub) Search(ctx context.Context, query string) ([]Candidate, error) {
	headers := map[string]string{"X-GitHub-Api-Version": "2022-11-28"}
	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}
	out := g.client.Get(ctx, g.SearchURL(query), fetch.Options{
		Accept:  "application/vnd.github+json",
		Headers: headers,
	})
	switch o := out.(type) {
	case fetch.Fetched:
		return parseSearch(o.Body)
	case fetch.Unavailable:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, o.Reason())
	}
	return nil, ErrUnavailable
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	UpdatedAt   string `json:"updated_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func parseSearch(body []byte) ([]Candidate, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]Candidate, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.FullName == "" || it.HTMLURL == "" {
			continue
		}
		c := Candidate{
			Name:        it.FullName,
			URL:         it.HTMLURL,
			Description: strings.TrimSpace(it.Description),
			Stars:       it.Stars,
			Owner:       it.Owner.Login,
		}
		if t, err := time.Parse(time.RFC3339, it.UpdatedAt); err == nil {
			c.UpdatedAt = t.UTC()
		}
		if c.Owner == "" {
			c.Owner, _, _ = strings.Cut(it.FullName, "/")
		}
		out = append(out, c)
	}
	return out, nil
}
