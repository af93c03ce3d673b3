package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hazyhaar/radar/kit"
)

// noopValidator allows all URLs (httptest binds to loopback).
func noopValidator(_ string) error { return nil }

func TestGet_Fetched(t *testing.T) {
	// WHAT: A 200 response yields Fetched with body and content type.
	// WHY: Core success path.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "radar-test" {
			t.Errorf("user-agent: got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("accept: got %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>hello</p>"))
	}))
	defer srv.Close()

	c := New(Config{URLValidator: noopValidator, UserAgent: "radar-test"})
	out := c.Get(context.Background(), srv.URL, Options{Accept: "application/json"})
	f, ok := out.(Fetched)
	if !ok {
		t.Fatalf("got %T, want Fetched", out)
	}
	if f.Text() != "<p>hello</p>" {
		t.Errorf("body: got %q", f.Text())
	}
	if !f.IsHTML() {
		t.Error("IsHTML should be true")
	}
	if f.Target() != srv.URL {
		t.Errorf("target: got %q", f.Target())
	}
}

func TestGet_StatusClasses(t *testing.T) {
	// WHAT: Non-2xx statuses resolve to Unavailable with a class.
	// WHY: Callers degrade instead of handling errors.
	cases := map[int]Class{
		401: ClassAuth,
		403: ClassForbidden,
		404: ClassNotFound,
		410: ClassNotFound,
		429: ClassRateLimit,
		503: ClassTemporary,
		418: ClassUnknown,
	}
	for code, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		out := New(Config{URLValidator: noopValidator}).Get(context.Background(), srv.URL, Options{})
		srv.Close()

		u, ok := out.(Unavailable)
		if !ok {
			t.Fatalf("status %d: got %T, want Unavailable", code, out)
		}
		if u.Class != want || u.StatusCode != code {
			t.Errorf("status %d: got (%s, %d), want %s", code, u.Class, u.StatusCode, want)
		}
		if !strings.Contains(u.Reason(), "http") {
			t.Errorf("status %d: reason %q lacks status", code, u.Reason())
		}
	}
}

func TestGet_SingleAttempt(t *testing.T) {
	// WHAT: A failing source is requested exactly once.
	// WHY: Failures are a degraded mode, never retried within a cycle.
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	New(Config{URLValidator: noopValidator}).Get(context.Background(), srv.URL, Options{})
	if hits != 1 {
		t.Fatalf("hits: got %d, want 1", hits)
	}
}

func TestGet_TransportError(t *testing.T) {
	// WHAT: A closed server yields Unavailable, not a panic or error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := New(Config{URLValidator: noopValidator}).Get(context.Background(), url, Options{})
	u, ok := out.(Unavailable)
	if !ok {
		t.Fatalf("got %T, want Unavailable", out)
	}
	if u.StatusCode != 0 {
		t.Errorf("status: got %d, want 0", u.StatusCode)
	}
}

func TestGet_Blocked(t *testing.T) {
	// WHAT: The URL validator refusing a URL yields ClassBlocked.
	// WHY: SSRF guard must stop the request before it is sent.
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	deny := func(string) error { return errors.New("private address") }
	out := New(Config{URLValidator: deny}).Get(context.Background(), srv.URL, Options{})
	u, ok := out.(Unavailable)
	if !ok || u.Class != ClassBlocked {
		t.Fatalf("got %#v, want blocked", out)
	}
	if called {
		t.Error("server should not be contacted")
	}
}

func TestGet_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	out := New(Config{URLValidator: noopValidator, MaxBytes: 16}).Get(context.Background(), srv.URL, Options{})
	u, ok := out.(Unavailable)
	if !ok || u.Class != ClassTooLarge {
		t.Fatalf("got %#v, want too_large", out)
	}
}

func TestGet_ObserverScope(t *testing.T) {
	// WHAT: Observers receive run and catalog identity from the context.
	// WHY: The journal attributes fetches to catalogs.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var got []Attempt
	c := New(Config{
		URLValidator: noopValidator,
		Observers:    []Observer{func(_ context.Context, a Attempt) { got = append(got, a) }},
	})
	ctx := kit.WithCatalog(kit.WithRunID(context.Background(), "run_1"), "news")
	c.Get(ctx, srv.URL, Options{})

	if len(got) != 1 {
		t.Fatalf("attempts: got %d, want 1", len(got))
	}
	a := got[0]
	if !a.OK || a.RunID != "run_1" || a.Catalog != "news" || a.StatusCode != 200 {
		t.Errorf("unexpected attempt: %+v", a)
	}
}
