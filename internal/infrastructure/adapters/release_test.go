package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bg1eym/atlas-data/internal/domain"
)

const sampleReleasesAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Release notes from runtime</title>
  <entry>
    <id>tag:github.com,2008:Repository/1/v2.1.0</id>
    <title>v2.1.0</title>
    <link href="https://github.com/acme/runtime/releases/tag/v2.1.0"/>
    <updated>2026-08-12T10:00:00Z</updated>
    <content type="html">Adds streaming inference support.</content>
  </entry>
</feed>`

func TestReleaseFeedURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"https://github.com/acme/runtime", "https://github.com/acme/runtime/releases.atom"},
		{"https://github.com/acme/runtime/", "https://github.com/acme/runtime/releases.atom"},
		{"https://github.com/acme/runtime/releases.atom", "https://github.com/acme/runtime/releases.atom"},
		{"https://github.com/acme/runtime/commits.atom", "https://github.com/acme/runtime/commits.atom"},
	}
	for _, c := range cases {
		if got := releaseFeedURL(c.in); got != c.want {
			t.Errorf("releaseFeedURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReleaseAdapterFetchAndNormalize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/releases.atom") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(sampleReleasesAtom))
	}))
	defer srv.Close()

	cfg := domain.SourceConfig{
		ID:         "acme-runtime",
		URL:        srv.URL + "/acme/runtime",
		SourceName: "acme/runtime",
		Kind:       domain.KindOfficial,
	}

	a := NewReleaseAdapter(srv.Client())
	raw, err := a.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("got %d raw items, want 1", len(raw))
	}
	if !strings.HasPrefix(raw[0].ID, "gh-acme-runtime-") {
		t.Errorf("raw id %q missing gh-acme-runtime- prefix", raw[0].ID)
	}
	if raw[0].Source != "GitHub" {
		t.Errorf("Source = %q", raw[0].Source)
	}

	items := a.Normalize(raw, cfg)
	if len(items) != 1 {
		t.Fatalf("got %d normalized items, want 1", len(items))
	}
	got := items[0]
	if got.SourceDomain != "github.com" {
		t.Errorf("SourceDomain = %q", got.SourceDomain)
	}
	if got.Title != "v2.1.0" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.PublishedAt != "2026-08-12T10:00:00Z" {
		t.Errorf("PublishedAt = %q", got.PublishedAt)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "github" || got.Tags[1] != "release" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.Summary != "Adds streaming inference support." {
		t.Errorf("Summary = %q", got.Summary)
	}
}
