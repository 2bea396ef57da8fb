// Package adapters implements the feed, page, and release-feed source
// adapters over the common normalized schema.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; Atlas-Radar/1.0; +https://github.com/atlas-radar)"
	fetchTimeout = 20 * time.Second

	defaultCategoryHint = "Official AI"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = fetchTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getBody performs a GET with the shared headers. Non-2xx responses become
// errors whose message carries the status code for bucket classification.
func getBody(ctx context.Context, client *http.Client, rawURL, accept, sourceID string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		wrapped := fmt.Errorf("request %s: %w", sourceID, err)
		if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fetch.Tag(domain.BucketTimeout, wrapped)
		}
		return nil, wrapped
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, sourceID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body for %s: %w", sourceID, err)
	}
	return body, nil
}

// hashID produces a short stable id fragment for a dedup key.
func hashID(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func normalizedTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return domain.PlaceholderTitle
	}
	return t
}

func categoryHint(cfg domain.SourceConfig) string {
	if cfg.Category != "" {
		return cfg.Category
	}
	return defaultCategoryHint
}

func publishedAt(iso, pub string) string {
	if iso != "" {
		return iso
	}
	if pub != "" {
		return pub
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func itemSummary(r domain.RawItem) string {
	s := r.ContentSnippet
	if strings.TrimSpace(s) == "" {
		s = r.Content
	}
	return domain.FallbackSummary(s, r.Title)
}
