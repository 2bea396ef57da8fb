package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Lab Blog</title>
    <item>
      <title>New model released</title>
      <link>https://lab.example.com/posts/new-model</link>
      <description>A new frontier model with benchmark results.</description>
      <pubDate>Mon, 10 Aug 2026 08:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Safety update</title>
      <link>https://lab.example.com/posts/safety</link>
      <description></description>
    </item>
  </channel>
</rss>`

func TestFeedAdapterFetchAndNormalize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Atlas-Radar") {
			t.Errorf("unexpected User-Agent %q", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	host, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}

	cfg := domain.SourceConfig{
		ID:         "lab-blog",
		URL:        srv.URL,
		SourceName: "Lab Blog",
		Category:   "Official AI",
		Kind:       domain.KindOfficial,
	}

	a := NewFeedAdapter(srv.Client())
	raw, err := a.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("got %d raw items, want 2", len(raw))
	}
	if !strings.HasPrefix(raw[0].ID, "rss-lab-blog-") {
		t.Errorf("raw id %q missing rss-lab-blog- prefix", raw[0].ID)
	}
	if raw[0].Link != "https://lab.example.com/posts/new-model" {
		t.Errorf("raw link = %q", raw[0].Link)
	}
	if raw[0].ISODate != "2026-08-10T08:30:00Z" {
		t.Errorf("ISODate = %q", raw[0].ISODate)
	}

	items := a.Normalize(raw, cfg)
	if len(items) != 2 {
		t.Fatalf("got %d normalized items, want 2", len(items))
	}
	first := items[0]
	if first.SourceID != "lab-blog" || first.SourceName != "Lab Blog" {
		t.Errorf("source fields = %q / %q", first.SourceID, first.SourceName)
	}
	// The feed URL's host wins; item links only fill in when it is absent.
	if first.SourceDomain != host.Hostname() {
		t.Errorf("SourceDomain = %q, want the feed host %q", first.SourceDomain, host.Hostname())
	}
	if first.Summary != "A new frontier model with benchmark results." {
		t.Errorf("Summary = %q", first.Summary)
	}
	if first.CategoryHint != "Official AI" {
		t.Errorf("CategoryHint = %q", first.CategoryHint)
	}
	if first.Language != "en" {
		t.Errorf("Language = %q", first.Language)
	}
	// Empty description falls back to the title.
	if items[1].Summary != "Safety update" {
		t.Errorf("fallback summary = %q", items[1].Summary)
	}
}

func TestFeedAdapterStableIDs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	cfg := domain.SourceConfig{ID: "lab-blog", URL: srv.URL}
	a := NewFeedAdapter(srv.Client())

	first, err := a.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := a.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("ids differ across runs: %q vs %q", first[0].ID, second[0].ID)
	}
}

func TestFeedAdapterHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewFeedAdapter(srv.Client())
	_, err := a.Fetch(context.Background(), domain.SourceConfig{ID: "down-src", URL: srv.URL})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "HTTP 503 for down-src") {
		t.Errorf("error %q missing status marker", err)
	}
	if got := fetch.ClassifyError(err); got != domain.BucketHTTP5xx {
		t.Errorf("bucket = %q, want %q", got, domain.BucketHTTP5xx)
	}
}

func TestFeedAdapterTimeoutRetryable(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	a := NewFeedAdapter(&http.Client{Timeout: 50 * time.Millisecond})
	_, err := a.Fetch(context.Background(), domain.SourceConfig{ID: "slow-src", URL: srv.URL})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := fetch.ClassifyError(err); got != domain.BucketTimeout {
		t.Errorf("bucket = %q, want %q", got, domain.BucketTimeout)
	}
	if !fetch.IsRetryable(err) {
		t.Error("client timeout must be retryable")
	}
}

func TestFeedAdapterParseError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not xml"))
	}))
	defer srv.Close()

	a := NewFeedAdapter(srv.Client())
	_, err := a.Fetch(context.Background(), domain.SourceConfig{ID: "bad-feed", URL: srv.URL})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got := fetch.ClassifyError(err); got != domain.BucketParseError {
		t.Errorf("bucket = %q, want %q", got, domain.BucketParseError)
	}
}
