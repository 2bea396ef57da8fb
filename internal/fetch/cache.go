package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/ports"
)

// CacheTTL is the freshness window for a source's cache entry.
const CacheTTL = 30 * time.Minute

var idPrefixes = []string{"rss-", "html-", "gh-"}

// Cache is the TTL-gated per-source freshness store. Entries are checked for
// staleness but never evicted; rehydration reads the referenced prior run's
// artifacts through a RunReader. Safe for concurrent use by the batched
// orchestrator goroutines.
type Cache struct {
	path   string
	reader ports.RunReader

	mu  sync.Mutex
	doc cacheDocument
}

type cacheDocument struct {
	Entries   map[string]domain.CacheEntry `json:"entries"`
	UpdatedAt string                       `json:"updated_at"`
}

// LoadCache reads the cache store at path. Absence or corruption degrades to
// an empty cache, never an error.
func LoadCache(path string, reader ports.RunReader) *Cache {
	cache := &Cache{
		path:   path,
		reader: reader,
		doc: cacheDocument{
			Entries:   map[string]domain.CacheEntry{},
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cache
	}
	var doc cacheDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return cache
	}
	if doc.Entries == nil {
		doc.Entries = map[string]domain.CacheEntry{}
	}
	cache.doc = doc
	return cache
}

// Save persists the cache store, creating parent directories as needed.
func (c *Cache) Save() error {
	c.mu.Lock()
	raw, err := json.MarshalIndent(c.doc, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Fresh reports whether the source was fetched within the TTL window.
func (c *Cache) Fresh(sourceID string, now time.Time) bool {
	c.mu.Lock()
	entry, ok := c.doc.Entries[sourceID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	age := now.UnixMilli() - entry.LastFetchTimestamp
	return age < CacheTTL.Milliseconds()
}

// Update refreshes the entry for sourceID after a successful fetch.
func (c *Cache) Update(sourceID, runID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.Entries[sourceID] = domain.CacheEntry{
		SourceID:           sourceID,
		LastFetchTimestamp: now.UnixMilli(),
		LastRunID:          runID,
	}
	c.doc.UpdatedAt = now.UTC().Format(time.RFC3339)
}

// CachedData rehydrates the source's prior raw and normalized items. A read
// or parse failure returns ok=false, forcing a refetch; only an absent
// normalized document degrades to the raw items alone.
func (c *Cache) CachedData(sourceID string) (raw []domain.RawItem, normalized []domain.NormalizedItem, ok bool) {
	c.mu.Lock()
	entry, found := c.doc.Entries[sourceID]
	c.mu.Unlock()
	if !found || entry.LastRunID == "" || c.reader == nil {
		return nil, nil, false
	}

	raw, err := c.reader.ReadRaw(entry.LastRunID, sourceID)
	if err != nil {
		return nil, nil, false
	}

	items, err := c.reader.ReadNormalized(entry.LastRunID)
	if err != nil {
		// A run that never wrote the normalized document still has usable raw
		// items; anything unreadable or corrupt forces a refetch.
		if errors.Is(err, fs.ErrNotExist) {
			return raw, nil, true
		}
		return nil, nil, false
	}

	for _, it := range items {
		if !itemBelongsToSource(it.ID, sourceID) {
			continue
		}
		it.Summary = domain.FallbackSummary(it.Summary, it.Title)
		normalized = append(normalized, it)
	}
	return raw, normalized, true
}

func itemBelongsToSource(id, sourceID string) bool {
	for _, p := range idPrefixes {
		if strings.HasPrefix(id, p+sourceID+"-") {
			return true
		}
	}
	return false
}
