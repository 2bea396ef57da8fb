// Package render selects fairness-balanced highlights and computes summary
// statistics over classified items. Both operations are pure and safely
// recomputable from a persisted classified set.
package render

import (
	"math"
	"sort"
	"time"

	"github.com/bg1eym/atlas-data/internal/classify"
	"github.com/bg1eym/atlas-data/internal/domain"
)

const (
	// DefaultThreshold is the minimum composite score of a structural event.
	DefaultThreshold = 7
	// DefaultTopN is the highlight target count.
	DefaultTopN = 8

	// structuralFloor marks the structural subset in aggregates,
	// independent of the configured highlight threshold.
	structuralFloor = 7

	perFactionQuota = 2
)

// Highlight is one selected item in display form.
type Highlight struct {
	ItemID        string `json:"item_id"`
	Title         string `json:"title"`
	SourceName    string `json:"source_name"`
	URL           string `json:"url"`
	CivPrimaryTag string `json:"civ_primary_tag"`
	RadarCategory string `json:"radar_category,omitempty"`
	ScoreTotal    int    `json:"score_total"`
	SummaryZH     string `json:"summary_zh"`
	PublishedAt   string `json:"published_at,omitempty"`
}

// HighlightsOutput is the highlight selection artifact.
type HighlightsOutput struct {
	StructuralEvents []Highlight `json:"structural_events"`
	Threshold        int         `json:"threshold"`
	GeneratedAt      string      `json:"generated_at"`
}

// AggregatesOutput is the per-faction / per-category / per-source summary.
type AggregatesOutput struct {
	CountsByTag           map[string]int     `json:"counts_by_tag"`
	CountsByRadarCategory map[string]int     `json:"counts_by_radar_category"`
	StructuralCountByTag  map[string]int     `json:"structural_count_by_tag"`
	AvgScoreByTag         map[string]float64 `json:"avg_score_by_tag"`
	CountsBySource        map[string]int     `json:"counts_by_source"`
	StructuralCount       int                `json:"structural_count"`
	TotalCount            int                `json:"total_count"`
}

// TopRadar names the most frequent radar category.
type TopRadar struct {
	ID    string  `json:"id"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// TopCivTag names the most frequent faction tag.
type TopCivTag struct {
	Tag   string  `json:"tag"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// TopSource names the most frequent source.
type TopSource struct {
	Source string  `json:"source"`
	Count  int     `json:"count"`
	Share  float64 `json:"share"`
}

// DistributionOutput summarizes how classifications spread across
// categories, factions, and sources.
type DistributionOutput struct {
	RunID                 string         `json:"run_id"`
	TotalItems            int            `json:"total_items"`
	CountsByRadarCategory map[string]int `json:"counts_by_radar_category"`
	CountsByCivTag        map[string]int `json:"counts_by_civ_tag"`
	CountsBySource        map[string]int `json:"counts_by_source"`
	Top1Radar             *TopRadar      `json:"top1_radar"`
	Top1CivTag            *TopCivTag     `json:"top1_civ_tag"`
	Top1Source            *TopSource     `json:"top1_source"`
}

// Options tunes highlight selection; zero values take the defaults.
type Options struct {
	Threshold int
	TopN      int
}

// Renderer projects classified items using the taxonomy's fixed faction and
// category orders.
type Renderer struct {
	factions   []string
	categories []string
}

// NewRenderer builds a renderer over the taxonomy's display orders.
func NewRenderer(tax classify.Taxonomy) *Renderer {
	return &Renderer{factions: tax.Factions, categories: tax.RadarOrder}
}

// Highlights picks up to TopN structural events, at most two per faction in
// fixed faction order, backfilling from the remaining pool by score and
// recency.
func (r *Renderer) Highlights(items []domain.ClassifiedItem, opts Options, now time.Time) HighlightsOutput {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	structural := make([]domain.ClassifiedItem, 0, len(items))
	for _, it := range items {
		if it.ScoreTotal >= threshold {
			structural = append(structural, it)
		}
	}
	sort.SliceStable(structural, func(i, j int) bool {
		if structural[i].ScoreTotal != structural[j].ScoreTotal {
			return structural[i].ScoreTotal > structural[j].ScoreTotal
		}
		return structural[i].PublishedAt > structural[j].PublishedAt
	})

	byTag := map[string][]domain.ClassifiedItem{}
	for _, it := range structural {
		byTag[it.CivPrimaryTag] = append(byTag[it.CivPrimaryTag], it)
	}

	picked := []Highlight{}
	seen := map[string]bool{}
	for _, tag := range r.factions {
		list := byTag[tag]
		if len(list) > perFactionQuota {
			list = list[:perFactionQuota]
		}
		for _, it := range list {
			if len(picked) >= topN {
				break
			}
			id := highlightIdentity(it)
			if seen[id] {
				continue
			}
			seen[id] = true
			picked = append(picked, toHighlight(it, id))
		}
	}

	remaining := make([]domain.ClassifiedItem, 0, len(structural))
	for _, it := range structural {
		if !seen[highlightIdentity(it)] {
			remaining = append(remaining, it)
		}
	}
	for _, it := range remaining {
		if len(picked) >= topN {
			break
		}
		picked = append(picked, toHighlight(it, highlightIdentity(it)))
	}

	return HighlightsOutput{
		StructuralEvents: picked,
		Threshold:        threshold,
		GeneratedAt:      now.UTC().Format(time.RFC3339),
	}
}

// Aggregates computes counts and averages over the whole classified set,
// independent of the highlight threshold.
func (r *Renderer) Aggregates(items []domain.ClassifiedItem) AggregatesOutput {
	out := AggregatesOutput{
		CountsByTag:           map[string]int{},
		CountsByRadarCategory: map[string]int{},
		StructuralCountByTag:  map[string]int{},
		AvgScoreByTag:         map[string]float64{},
		CountsBySource:        map[string]int{},
		TotalCount:            len(items),
	}
	sumByTag := map[string]int{}
	for _, tag := range r.factions {
		out.CountsByTag[tag] = 0
		out.StructuralCountByTag[tag] = 0
	}
	for _, id := range r.categories {
		out.CountsByRadarCategory[id] = 0
	}

	for _, it := range items {
		out.CountsByTag[it.CivPrimaryTag]++
		sumByTag[it.CivPrimaryTag] += it.ScoreTotal
		if len(it.RadarCategories) > 0 {
			out.CountsByRadarCategory[it.RadarCategories[0].ID]++
		}
		src := it.SourceName
		if src == "" {
			src = "unknown"
		}
		out.CountsBySource[src]++
		if it.ScoreTotal >= structuralFloor {
			out.StructuralCount++
			out.StructuralCountByTag[it.CivPrimaryTag]++
		}
	}

	for _, tag := range r.factions {
		n := out.CountsByTag[tag]
		if n > 0 {
			out.AvgScoreByTag[tag] = math.Round(float64(sumByTag[tag])/float64(n)*10) / 10
		} else {
			out.AvgScoreByTag[tag] = 0
		}
	}
	return out
}

// Distribution summarizes classification spread with top-1 shares.
func (r *Renderer) Distribution(items []domain.ClassifiedItem, runID string) DistributionOutput {
	out := DistributionOutput{
		RunID:                 runID,
		TotalItems:            len(items),
		CountsByRadarCategory: map[string]int{},
		CountsByCivTag:        map[string]int{},
		CountsBySource:        map[string]int{},
	}
	for _, id := range r.categories {
		out.CountsByRadarCategory[id] = 0
	}
	for _, tag := range r.factions {
		out.CountsByCivTag[tag] = 0
	}

	var sourceOrder []string
	for _, it := range items {
		if len(it.RadarCategories) > 0 {
			out.CountsByRadarCategory[it.RadarCategories[0].ID]++
		}
		if it.CivPrimaryTag != "" {
			out.CountsByCivTag[it.CivPrimaryTag]++
		}
		src := it.SourceName
		if src == "" {
			src = "unknown"
		}
		if _, seen := out.CountsBySource[src]; !seen {
			sourceOrder = append(sourceOrder, src)
		}
		out.CountsBySource[src]++
	}

	total := len(items)
	if key, count, share, ok := topCount(r.categories, out.CountsByRadarCategory, total); ok {
		out.Top1Radar = &TopRadar{ID: key, Count: count, Share: share}
	}
	if key, count, share, ok := topCount(r.factions, out.CountsByCivTag, total); ok {
		out.Top1CivTag = &TopCivTag{Tag: key, Count: count, Share: share}
	}
	if key, count, share, ok := topCount(sourceOrder, out.CountsBySource, total); ok {
		out.Top1Source = &TopSource{Source: key, Count: count, Share: share}
	}
	return out
}

// topCount picks the first key with the maximum count, in the given order.
func topCount(order []string, counts map[string]int, total int) (string, int, float64, bool) {
	if len(order) == 0 {
		return "", 0, 0, false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	share := 0.0
	if total > 0 {
		share = float64(counts[best]) / float64(total)
	}
	return best, counts[best], share, true
}

func highlightIdentity(it domain.ClassifiedItem) string {
	if it.ID != "" {
		return it.ID
	}
	if it.URL != "" {
		return it.URL
	}
	return it.Title
}

func toHighlight(it domain.ClassifiedItem, id string) Highlight {
	var radarCategory string
	if len(it.RadarCategories) > 0 {
		radarCategory = it.RadarCategories[0].ID
	}
	return Highlight{
		ItemID:        id,
		Title:         it.Title,
		SourceName:    it.SourceName,
		URL:           it.URL,
		CivPrimaryTag: it.CivPrimaryTag,
		RadarCategory: radarCategory,
		ScoreTotal:    it.ScoreTotal,
		SummaryZH:     it.SummaryZH,
		PublishedAt:   it.PublishedAt,
	}
}
