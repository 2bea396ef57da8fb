package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title> Frontier Lab Research </title>
  <meta name="description" content="Latest research updates from the lab.">
</head>
<body><h1>Research</h1></body>
</html>`

func TestPageAdapterScrape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	host, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}

	cfg := domain.SourceConfig{
		ID:         "lab-page",
		URL:        srv.URL,
		SourceName: "Frontier Lab",
		Selectors:  []string{"title", `meta[name="description"]`},
		Kind:       domain.KindOfficial,
	}

	a := NewPageAdapter(srv.Client(), []string{host.Hostname()})
	raw, err := a.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("got %d raw items, want exactly 1", len(raw))
	}
	if !strings.HasPrefix(raw[0].ID, "html-lab-page-") {
		t.Errorf("raw id %q missing html-lab-page- prefix", raw[0].ID)
	}
	if raw[0].Title != "Frontier Lab Research" {
		t.Errorf("title = %q", raw[0].Title)
	}
	if raw[0].ContentSnippet != "Latest research updates from the lab." {
		t.Errorf("snippet = %q", raw[0].ContentSnippet)
	}

	items := a.Normalize(raw, cfg)
	if len(items) != 1 {
		t.Fatalf("got %d normalized items, want 1", len(items))
	}
	if items[0].URL != srv.URL {
		t.Errorf("URL = %q, want %q", items[0].URL, srv.URL)
	}
	if items[0].PublishedAt == "" {
		t.Error("PublishedAt should default to fetch time")
	}
	if items[0].CategoryHint != "Official AI" {
		t.Errorf("CategoryHint = %q", items[0].CategoryHint)
	}
}

func TestPageAdapterAllowlistBlocksBeforeNetwork(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := domain.SourceConfig{
		ID:        "blocked-page",
		URL:       srv.URL,
		Selectors: []string{"title"},
	}

	a := NewPageAdapter(srv.Client(), []string{"allowed.example.com"})
	_, err := a.Fetch(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected allowlist rejection")
	}
	if !strings.Contains(err.Error(), "blocked_by_policy") {
		t.Errorf("error %q missing blocked_by_policy marker", err)
	}
	if got := fetch.ClassifyError(err); got != domain.BucketBlocked {
		t.Errorf("bucket = %q, want %q", got, domain.BucketBlocked)
	}
	if called {
		t.Error("blocked fetch must not hit the network")
	}
}

func TestPageAdapterRequiresSelectors(t *testing.T) {
	t.Parallel()

	a := NewPageAdapter(nil, []string{"example.com"})
	_, err := a.Fetch(context.Background(), domain.SourceConfig{
		ID:  "no-selectors",
		URL: "https://example.com/",
	})
	if err == nil {
		t.Fatal("expected selector requirement error")
	}
	if !strings.Contains(err.Error(), "requires selectors") {
		t.Errorf("error = %q", err)
	}
}

func TestScrapePageFallbacks(t *testing.T) {
	t.Parallel()

	title, summary, err := scrapePage([]byte("<html><head></head><body></body></html>"))
	if err != nil {
		t.Fatalf("scrapePage: %v", err)
	}
	if title != domain.PlaceholderTitle {
		t.Errorf("title = %q, want placeholder", title)
	}
	if summary != "" {
		t.Errorf("summary = %q, want empty", summary)
	}
}
