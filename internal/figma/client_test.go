package figma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestFileFetchesDocument(t *testing.T) {
	var gotPath, gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Figma-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Design"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "tok", ts.Client())
	doc, err := c.File(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/files/abc123" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotToken != "tok" {
		t.Fatalf("unexpected token header %q", gotToken)
	}
	if string(doc) != `{"name":"Design"}` {
		t.Fatalf("document altered: %s", doc)
	}
}

func TestImageURLsQuery(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"err":null,"images":{"1:2":"https://img.example/a.png"}}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "tok", ts.Client())
	urls, err := c.ImageURLs(context.Background(), "abc", "1:2", "svg", 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/images/abc" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if got := gotQuery.Get("ids"); got != "1:2" {
		t.Fatalf("unexpected ids %q", got)
	}
	if got := gotQuery.Get("format"); got != "svg" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := gotQuery.Get("scale"); got != "0.5" {
		t.Fatalf("unexpected scale %q", got)
	}
	if urls["1:2"] != "https://img.example/a.png" {
		t.Fatalf("unexpected urls %v", urls)
	}

	// Whole scales stringify without a decimal point.
	if _, err := c.ImageURLs(context.Background(), "abc", "1:2", "png", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gotQuery.Get("scale"); got != "2" {
		t.Fatalf("unexpected scale %q", got)
	}
}

func TestImageURLsNullEntry(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"err":null,"images":{"9:9":null}}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "tok", ts.Client())
	urls, err := c.ImageURLs(context.Background(), "abc", "9:9", "png", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if urls["9:9"] != "" {
		t.Fatalf("expected empty url for unrendered node, got %q", urls["9:9"])
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Invalid token"))
	}))
	defer ts.Close()

	c := New(ts.URL, "tok", ts.Client())
	_, err := c.File(context.Background(), "abc")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if apiErr.Body != "Invalid token" {
		t.Fatalf("unexpected body %q", apiErr.Body)
	}
	if !strings.Contains(err.Error(), "figma api status 403") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestMissingTokenShortCircuits(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "", ts.Client())
	if _, err := c.File(context.Background(), "abc"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := c.ImageURLs(context.Background(), "abc", "1:2", "png", 1); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
}

func TestNewDefaults(t *testing.T) {
	c := New("", "tok", nil)
	if c.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url %q", c.BaseURL)
	}
	if c.HTTP == nil {
		t.Fatal("expected a default http client")
	}
	c = New("https://example.com/", "tok", nil)
	if c.BaseURL != "https://example.com" {
		t.Fatalf("trailing slash not trimmed: %q", c.BaseURL)
	}
}
