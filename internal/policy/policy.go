// Package policy bounds an aggregated item set with per-source, per-category
// and global caps, deduplicating by URL.
package policy

import (
	"sort"

	"github.com/bg1eym/atlas-data/internal/domain"
)

// Sort directions for the policy output.
const (
	SortPublishedAtDesc = "published_at_desc"
	SortPublishedAtAsc  = "published_at_asc"
)

// Policy holds the caps applied to one run's aggregated items.
type Policy struct {
	PerSourceLimit int    `json:"per_source_limit"`
	PerCategoryCap int    `json:"per_category_cap"`
	GlobalCap      int    `json:"global_cap"`
	SortBy         string `json:"sort_by"`
}

// Default matches the production caps.
var Default = Policy{
	PerSourceLimit: 20,
	PerCategoryCap: 60,
	GlobalCap:      240,
	SortBy:         SortPublishedAtDesc,
}

// Apply limits items under p. Steps: sort by publish time, keep the first
// PerSourceLimit per source, merge in per-source bucket order deduplicating
// by URL (else id), admit under category and global caps walking that merge
// order, then re-sort the admitted set by time.
//
// The admission pass deliberately walks merge order rather than global time
// order; which item wins at a cap boundary depends on that order, and the
// behavior is preserved as-is for compatibility.
func Apply(items []domain.NormalizedItem, p Policy, categoryOf func(domain.NormalizedItem) string) []domain.NormalizedItem {
	sorted := make([]domain.NormalizedItem, len(items))
	copy(sorted, items)
	sortByTime(sorted, p.SortBy)

	var sourceOrder []string
	bySource := map[string][]domain.NormalizedItem{}
	for _, it := range sorted {
		src := it.SourceName
		if src == "" {
			src = "unknown"
		}
		bucket, seen := bySource[src]
		if !seen {
			sourceOrder = append(sourceOrder, src)
		}
		if len(bucket) < p.PerSourceLimit {
			bySource[src] = append(bucket, it)
		}
	}

	var merged []domain.NormalizedItem
	seenURL := map[string]bool{}
	for _, src := range sourceOrder {
		for _, it := range bySource[src] {
			key := it.URL
			if key == "" {
				key = it.ID
			}
			if seenURL[key] {
				continue
			}
			seenURL[key] = true
			merged = append(merged, it)
		}
	}

	var result []domain.NormalizedItem
	catCounts := map[string]int{}
	for _, it := range merged {
		if len(result) >= p.GlobalCap {
			break
		}
		cat := "default"
		if categoryOf != nil {
			cat = categoryOf(it)
			if cat == "" {
				cat = "uncategorized"
			}
		}
		if catCounts[cat] >= p.PerCategoryCap {
			continue
		}
		result = append(result, it)
		catCounts[cat]++
	}

	sortByTime(result, p.SortBy)
	return result
}

func sortByTime(items []domain.NormalizedItem, sortBy string) {
	sort.SliceStable(items, func(i, j int) bool {
		ti := publishedMillis(items[i])
		tj := publishedMillis(items[j])
		if sortBy == SortPublishedAtAsc {
			return ti < tj
		}
		return ti > tj
	})
}

// publishedMillis treats a missing or unparseable timestamp as the minimum.
func publishedMillis(it domain.NormalizedItem) int64 {
	t, ok := domain.ParsePublishedAt(it.PublishedAt)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
