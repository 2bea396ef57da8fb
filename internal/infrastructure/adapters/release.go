package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/bg1eym/atlas-data/internal/adapter"
	"github.com/bg1eym/atlas-data/internal/domain"
)

// ReleaseAdapter treats a repository URL as a release-activity feed by
// appending the releases.atom suffix, then parses it like any feed.
type ReleaseAdapter struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ adapter.Adapter = (*ReleaseAdapter)(nil)

// NewReleaseAdapter wires an HTTP client; nil defaults to a 20s-timeout client.
func NewReleaseAdapter(client *http.Client) *ReleaseAdapter {
	if client == nil {
		client = newHTTPClient(0)
	}
	return &ReleaseAdapter{client: client, parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (g *ReleaseAdapter) Name() domain.AdapterType {
	return domain.AdapterGitHub
}

// Fetch retrieves the repository's release feed.
func (g *ReleaseAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.RawItem, error) {
	raw, err := fetchFeedItems(ctx, g.client, g.parser, releaseFeedURL(cfg.URL), cfg, "gh")
	if err != nil {
		return nil, fmt.Errorf("GitHub fetch failed for %s: %w", cfg.ID, err)
	}
	for i := range raw {
		raw[i].Source = "GitHub"
	}
	return raw, nil
}

// Normalize maps release entries onto the common schema.
func (g *ReleaseAdapter) Normalize(raw []domain.RawItem, cfg domain.SourceConfig) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, len(raw))
	for _, r := range raw {
		itemURL := r.URL
		if itemURL == "" {
			itemURL = r.Link
		}
		items = append(items, domain.NormalizedItem{
			ID:           r.ID,
			SourceID:     cfg.ID,
			Title:        normalizedTitle(r.Title),
			SourceName:   cfg.SourceName,
			SourceDomain: "github.com",
			URL:          strings.TrimSpace(itemURL),
			PublishedAt:  publishedAt(r.ISODate, r.PubDate),
			Summary:      itemSummary(r),
			Language:     "en",
			Tags:         []string{"github", "release"},
			CategoryHint: categoryHint(cfg),
			Kind:         cfg.Kind,
		})
	}
	return items
}

func releaseFeedURL(repoURL string) string {
	if strings.Contains(repoURL, "/releases.atom") || strings.Contains(repoURL, "/commits.atom") {
		return repoURL
	}
	return strings.TrimRight(repoURL, "/") + "/releases.atom"
}
