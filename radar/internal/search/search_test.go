package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/radar/radar/internal/fetch"
)

func testClient() *fetch.Client {
	return fetch.New(fetch.Config{URLValidator: func(string) error { return nil }})
}

const searchBody = `{
  "total_count": 3,
  "items": [
    {"full_name": "modelcontextprotocol/servers", "html_url": "https://github.com/modelcontextprotocol/servers",
     "description": " Reference servers ", "stargazers_count": 900, "updated_at": "2026-03-01T10:00:00Z",
     "owner": {"login": "modelcontextprotocol"}},
    {"full_name": "alice/tool", "html_url": "https://github.com/alice/tool",
     "description": null, "stargazers_count": 4, "updated_at": "not a date", "owner": {}},
    {"full_name": "", "html_url": "https://github.com/x/y"}
  ]
}`

func TestGitHub_Search(t *testing.T) {
	// WHAT: Search sends the versioned headers and maps items to candidates.
	// WHY: Registry and prompt catalogs depend on these fields.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "mcp server" || q.Get("sort") != "updated" || q.Get("order") != "desc" || q.Get("per_page") != "7" {
			t.Errorf("query: got %v", q)
		}
		if r.Header.Get("Accept") != "application/vnd.github+json" {
			t.Errorf("accept: %q", r.Header.Get("Accept"))
		}
		if r.Header.Get("X-GitHub-Api-Version") != "2022-11-28" {
			t.Errorf("api version: %q", r.Header.Get("X-GitHub-Api-Version"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth: %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	g := NewGitHub(testClient(), srv.URL, "tok", 7)
	got, err := g.Search(context.Background(), "mcp server")
	if err != nil {
		t.Fatal(err)
	}
	want := []Candidate{
		{
			Name:        "modelcontextprotocol/servers",
			URL:         "https://github.com/modelcontextprotocol/servers",
			Description: "Reference servers",
			Stars:       900,
			UpdatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Owner:       "modelcontextprotocol",
		},
		{Name: "alice/tool", URL: "https://github.com/alice/tool", Stars: 4, Owner: "alice"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
}

func TestGitHub_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected auth header %q", h)
		}
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	got, err := NewGitHub(testClient(), srv.URL, "", 0).Search(context.Background(), "x")
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestGitHub_Malformed(t *testing.T) {
	// WHAT: A non-JSON body yields ErrMalformed and no candidates.
	// WHY: A broken API page must not poison the catalog.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	got, err := NewGitHub(testClient(), srv.URL, "", 5).Search(context.Background(), "x")
	if !errors.Is(err, ErrMalformed) || got != nil {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestGitHub_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewGitHub(testClient(), srv.URL, "", 5).Search(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestParseLines(t *testing.T) {
	out := "Found 3 servers:\n" +
		"acme-mcp https://github.com/acme/acme-mcp Official Acme server\n" +
		"  bare   https://example.com/bare  \n" +
		"garbage line without url\n"
	want := []Candidate{
		{Name: "acme-mcp", URL: "https://github.com/acme/acme-mcp", Description: "Official Acme server", Owner: "acme"},
		{Name: "bare", URL: "https://example.com/bare"},
	}
	if diff := cmp.Diff(want, ParseLines(out)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCommandRegistry(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := &CommandRegistry{
		Command: "sh",
		Args:    []string{"-c", `echo "srv-{query} https://github.com/o/srv desc"`},
	}
	got, err := r.Search(context.Background(), "db")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "srv-db" || got[0].Owner != "o" {
		t.Errorf("got %+v", got)
	}

	// Output past MaxOutput is discarded without cutting a line in half.
	capped := &CommandRegistry{
		Command:   "sh",
		Args:      []string{"-c", `echo "a https://github.com/o/a"; echo "b https://github.com/o/bbbbbbbbbbbbbbbb"`},
		MaxOutput: 40,
	}
	got, err = capped.Search(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].URL != "https://github.com/o/a" {
		t.Errorf("capped output: got %+v", got)
	}

	fail := &CommandRegistry{Command: "sh", Args: []string{"-c", "exit 3"}}
	if _, err := fail.Search(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("failing command: got %v", err)
	}
	if _, err := (&CommandRegistry{}).Search(context.Background(), "x"); !errors.Is(err, ErrNoCommand) {
		t.Errorf("empty command: got %v", err)
	}
}
