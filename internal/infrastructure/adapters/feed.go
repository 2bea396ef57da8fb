package adapters

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/bg1eym/atlas-data/internal/adapter"
	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

// FeedAdapter retrieves syndication documents from official blogs, research
// orgs, and media feeds, one item per entry.
type FeedAdapter struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ adapter.Adapter = (*FeedAdapter)(nil)

// NewFeedAdapter wires an HTTP client; nil defaults to a 20s-timeout client.
func NewFeedAdapter(client *http.Client) *FeedAdapter {
	if client == nil {
		client = newHTTPClient(0)
	}
	return &FeedAdapter{client: client, parser: gofeed.NewParser()}
}

// Name identifies the strategy inside the registry.
func (f *FeedAdapter) Name() domain.AdapterType {
	return domain.AdapterRSS
}

// Fetch retrieves and parses the feed document.
func (f *FeedAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.RawItem, error) {
	raw, err := fetchFeedItems(ctx, f.client, f.parser, cfg.URL, cfg, "rss")
	if err != nil {
		return nil, fmt.Errorf("RSS fetch failed for %s: %w", cfg.ID, err)
	}
	return raw, nil
}

// Normalize maps feed entries onto the common schema.
func (f *FeedAdapter) Normalize(raw []domain.RawItem, cfg domain.SourceConfig) []domain.NormalizedItem {
	srcDomain := extractDomain(cfg.URL)
	items := make([]domain.NormalizedItem, 0, len(raw))
	for _, r := range raw {
		itemURL := r.URL
		if itemURL == "" {
			itemURL = r.Link
		}
		itemDomain := srcDomain
		if itemDomain == "" {
			itemDomain = extractDomain(itemURL)
		}
		items = append(items, domain.NormalizedItem{
			ID:           r.ID,
			SourceID:     cfg.ID,
			Title:        normalizedTitle(r.Title),
			SourceName:   cfg.SourceName,
			SourceDomain: itemDomain,
			URL:          itemURL,
			PublishedAt:  publishedAt(r.ISODate, r.PubDate),
			Summary:      itemSummary(r),
			Language:     "en",
			Tags:         []string{},
			CategoryHint: categoryHint(cfg),
			Kind:         cfg.Kind,
		})
	}
	return items
}

// fetchFeedItems is shared by the feed and release-feed adapters: GET the
// document, parse it, and emit one raw item per entry with a
// <prefix>-<source>-<hash> id.
func fetchFeedItems(ctx context.Context, client *http.Client, parser *gofeed.Parser, feedURL string, cfg domain.SourceConfig, prefix string) ([]domain.RawItem, error) {
	body, err := getBody(ctx, client, feedURL, feedAccept, cfg.ID, cfg.Headers)
	if err != nil {
		return nil, err
	}

	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fetch.Tag(domain.BucketParseError, fmt.Errorf("parse feed: %w", err))
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for i, entry := range feed.Items {
		link := entry.Link
		if link == "" {
			link = entry.GUID
		}
		key := link
		if key == "" {
			key = entry.Title
		}
		if key == "" {
			key = strconv.Itoa(i)
		}
		var isoDate string
		if entry.PublishedParsed != nil {
			isoDate = entry.PublishedParsed.UTC().Format(time.RFC3339)
		} else if entry.UpdatedParsed != nil {
			isoDate = entry.UpdatedParsed.UTC().Format(time.RFC3339)
		}
		var creator string
		if len(entry.Authors) > 0 && entry.Authors[0] != nil {
			creator = entry.Authors[0].Name
		}
		items = append(items, domain.RawItem{
			ID:             fmt.Sprintf("%s-%s-%s", prefix, cfg.ID, hashID(key)),
			Title:          entry.Title,
			Link:           link,
			URL:            link,
			Content:        entry.Content,
			ContentSnippet: entry.Description,
			PubDate:        entry.Published,
			ISODate:        isoDate,
			Creator:        creator,
			Source:         link,
		})
	}
	return items, nil
}
