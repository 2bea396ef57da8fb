package adapters

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bg1eym/atlas-data/internal/adapter"
	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
)

const pageAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// PageAdapter scrapes title and meta description from pages that expose no
// feed. Sources must declare selectors and sit on the domain allowlist;
// every fetch emits exactly one item.
type PageAdapter struct {
	client    *http.Client
	allowlist map[string]bool
}

var _ adapter.Adapter = (*PageAdapter)(nil)

// NewPageAdapter wires an HTTP client and the HTML domain allowlist.
func NewPageAdapter(client *http.Client, allowlist []string) *PageAdapter {
	if client == nil {
		client = newHTTPClient(0)
	}
	allowed := make(map[string]bool, len(allowlist))
	for _, d := range allowlist {
		allowed[d] = true
	}
	return &PageAdapter{client: client, allowlist: allowed}
}

// Name identifies the strategy inside the registry.
func (p *PageAdapter) Name() domain.AdapterType {
	return domain.AdapterHTML
}

// Fetch scrapes the configured page. Allowlist rejection happens before any
// network call.
func (p *PageAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.RawItem, error) {
	if len(cfg.Selectors) == 0 {
		return nil, fmt.Errorf("HTML adapter requires selectors for %s", cfg.ID)
	}
	pageDomain := extractDomain(cfg.URL)
	if !p.allowlist[pageDomain] {
		return nil, fetch.Tag(domain.BucketBlocked,
			fmt.Errorf("domain %s not in allowlist (blocked_by_policy)", pageDomain))
	}

	body, err := getBody(ctx, p.client, cfg.URL, pageAccept, cfg.ID, cfg.Headers)
	if err != nil {
		return nil, err
	}

	title, summary, err := scrapePage(body)
	if err != nil {
		return nil, fetch.Tag(domain.BucketParseError, fmt.Errorf("parse page for %s: %w", cfg.ID, err))
	}

	return []domain.RawItem{{
		ID:             fmt.Sprintf("html-%s-%s", cfg.ID, hashID(cfg.URL)),
		Title:          title,
		URL:            cfg.URL,
		Link:           cfg.URL,
		Content:        summary,
		ContentSnippet: summary,
		PubDate:        time.Now().UTC().Format(time.RFC3339),
	}}, nil
}

// Normalize maps the scraped record onto the common schema.
func (p *PageAdapter) Normalize(raw []domain.RawItem, cfg domain.SourceConfig) []domain.NormalizedItem {
	srcDomain := extractDomain(cfg.URL)
	items := make([]domain.NormalizedItem, 0, len(raw))
	for _, r := range raw {
		itemURL := r.URL
		if itemURL == "" {
			itemURL = r.Link
		}
		if itemURL == "" {
			itemURL = cfg.URL
		}
		items = append(items, domain.NormalizedItem{
			ID:           r.ID,
			SourceID:     cfg.ID,
			Title:        normalizedTitle(r.Title),
			SourceName:   cfg.SourceName,
			SourceDomain: srcDomain,
			URL:          strings.TrimSpace(itemURL),
			PublishedAt:  publishedAt("", r.PubDate),
			Summary:      itemSummary(r),
			Language:     "en",
			Tags:         []string{},
			CategoryHint: categoryHint(cfg),
			Kind:         cfg.Kind,
		})
	}
	return items
}

// scrapePage extracts <title> and the meta description. Minimal by design:
// the page adapter produces a single cover item, not an article list.
func scrapePage(body []byte) (title, summary string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = domain.PlaceholderTitle
	}

	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	summary = domain.Truncate(strings.TrimSpace(desc), domain.SummaryMaxLen)
	return title, summary, nil
}
