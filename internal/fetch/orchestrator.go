package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bg1eym/atlas-data/internal/adapter"
	"github.com/bg1eym/atlas-data/internal/domain"
)

const reasonMaxLen = 300

// Result aggregates one run's fetch outputs across all sources.
type Result struct {
	RawBySource map[string][]domain.RawItem
	Normalized  []domain.NormalizedItem
	Coverage    []domain.CoverageReport
	Diagnostics []domain.FetchDiagnostic
}

// Orchestrator dispatches adapters over all enabled sources under bounded
// concurrency: batches are processed strictly in sequence, sources within a
// batch concurrently.
type Orchestrator struct {
	registry     *adapter.Registry
	cache        *Cache
	batchSize    int
	urlOverrides map[string]string
	log          *zap.SugaredLogger
}

// NewOrchestrator builds the fetch stage. batchSize <= 0 defaults to 5.
func NewOrchestrator(registry *adapter.Registry, cache *Cache, batchSize int, urlOverrides map[string]string, log *zap.SugaredLogger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &Orchestrator{
		registry:     registry,
		cache:        cache,
		batchSize:    batchSize,
		urlOverrides: urlOverrides,
		log:          log,
	}
}

// FetchAll processes every enabled source and returns exactly one coverage
// report and one diagnostic per source. Per-source failures never abort the
// run.
func (o *Orchestrator) FetchAll(ctx context.Context, doc domain.SourcesDocument, runID string) Result {
	sources := make([]domain.SourceConfig, 0, len(doc.Sources))
	for _, src := range doc.Sources {
		if !src.Enabled {
			continue
		}
		if override, ok := o.urlOverrides[src.URL]; ok {
			src.URL = override
		}
		sources = append(sources, src)
	}

	result := Result{RawBySource: map[string][]domain.RawItem{}}
	var mu sync.Mutex

	for start := 0; start < len(sources); start += o.batchSize {
		end := start + o.batchSize
		if end > len(sources) {
			end = len(sources)
		}
		g, gctx := errgroup.WithContext(ctx)
		for _, src := range sources[start:end] {
			src := src
			g.Go(func() error {
				o.processSource(gctx, src, runID, &result, &mu)
				return nil
			})
		}
		_ = g.Wait()
	}

	return result
}

func (o *Orchestrator) processSource(ctx context.Context, src domain.SourceConfig, runID string, result *Result, mu *sync.Mutex) {
	start := time.Now()

	if o.cache != nil && o.cache.Fresh(src.ID, start) {
		if raw, normalized, ok := o.cache.CachedData(src.ID); ok {
			o.log.Debugw("skipped source, cache fresh", "source", src.ID)
			status := domain.BucketEmpty
			reason := "no items returned"
			if len(normalized) > 0 {
				status = domain.BucketOK
				reason = ""
			}
			mu.Lock()
			defer mu.Unlock()
			result.RawBySource[src.ID] = raw
			result.Normalized = append(result.Normalized, normalized...)
			result.Coverage = append(result.Coverage, coverageFor(src, status, len(normalized), reason,
				normalizeAdapterName(string(src.FetchType)), sourceFreshnessTS(normalized)))
			result.Diagnostics = append(result.Diagnostics, domain.FetchDiagnostic{
				SourceID:        src.ID,
				PerSourceTimeMS: 0,
				SkippedByCache:  true,
				AdapterUsed:     string(src.FetchType),
				ItemCount:       len(normalized),
				Bucket:          status,
				Reason:          reason,
			})
			return
		}
	}

	var (
		raw         []domain.RawItem
		normalized  []domain.NormalizedItem
		adapterUsed string
	)
	err := WithRetry(ctx, o.log, src.ID, func() error {
		var fErr error
		raw, normalized, adapterUsed, fErr = o.fetchSource(ctx, src)
		return fErr
	})
	elapsed := time.Since(start)

	if err != nil {
		reason := domain.Truncate(err.Error(), reasonMaxLen)
		bucket := ClassifyError(err)
		o.log.Warnw("source failed", "source", src.ID, "bucket", bucket, "error", err)
		mu.Lock()
		defer mu.Unlock()
		result.Coverage = append(result.Coverage, coverageFor(src, bucket, 0, reason,
			normalizeAdapterName(string(src.FetchType)), 0))
		result.Diagnostics = append(result.Diagnostics, domain.FetchDiagnostic{
			SourceID:        src.ID,
			PerSourceTimeMS: elapsed.Milliseconds(),
			SkippedByCache:  false,
			AdapterUsed:     string(src.FetchType),
			ItemCount:       0,
			Bucket:          bucket,
			Reason:          reason,
		})
		return
	}

	o.log.Debugw("source fetched", "source", src.ID, "items", len(normalized), "elapsed", elapsed)

	status := domain.BucketEmpty
	reason := "no items returned"
	if len(normalized) > 0 {
		status = domain.BucketOK
		reason = ""
	}

	mu.Lock()
	defer mu.Unlock()
	result.RawBySource[src.ID] = raw
	result.Normalized = append(result.Normalized, normalized...)
	result.Coverage = append(result.Coverage, coverageFor(src, status, len(normalized), reason,
		normalizeAdapterName(adapterUsed), sourceFreshnessTS(normalized)))
	if o.cache != nil {
		o.cache.Update(src.ID, runID, time.Now())
	}
	result.Diagnostics = append(result.Diagnostics, domain.FetchDiagnostic{
		SourceID:        src.ID,
		PerSourceTimeMS: elapsed.Milliseconds(),
		SkippedByCache:  false,
		AdapterUsed:     adapterUsed,
		ItemCount:       len(normalized),
		Bucket:          status,
		Reason:          reason,
	})
}

// fetchSource dispatches on the declared adapter type. A feed source whose
// feed fetch fails falls back to the page adapter on the same URL.
func (o *Orchestrator) fetchSource(ctx context.Context, src domain.SourceConfig) ([]domain.RawItem, []domain.NormalizedItem, string, error) {
	switch src.FetchType {
	case domain.AdapterRSS:
		feed, err := o.registry.Resolve(domain.AdapterRSS)
		if err != nil {
			return nil, nil, "", err
		}
		raw, fErr := feed.Fetch(ctx, src)
		if fErr == nil {
			return raw, feed.Normalize(raw, src), "rss_atom", nil
		}
		o.log.Warnw("feed fetch failed, falling back to page", "source", src.ID, "error", fErr)
		page, err := o.registry.Resolve(domain.AdapterHTML)
		if err != nil {
			return nil, nil, "", err
		}
		raw, err = page.Fetch(ctx, src)
		if err != nil {
			return nil, nil, "", err
		}
		return raw, page.Normalize(raw, src), "html_feed", nil

	case domain.AdapterHTML:
		page, err := o.registry.Resolve(domain.AdapterHTML)
		if err != nil {
			return nil, nil, "", err
		}
		raw, err := page.Fetch(ctx, src)
		if err != nil {
			return nil, nil, "", err
		}
		return raw, page.Normalize(raw, src), "html_feed", nil

	case domain.AdapterGitHub:
		release, err := o.registry.Resolve(domain.AdapterGitHub)
		if err != nil {
			return nil, nil, "", err
		}
		raw, err := release.Fetch(ctx, src)
		if err != nil {
			return nil, nil, "", err
		}
		return raw, release.Normalize(raw, src), "github_releases", nil

	case domain.AdapterX:
		return nil, nil, "", Tag(domain.BucketBlocked,
			fmt.Errorf("X adapter not configured; use rss/blog/github fallback"))

	default:
		return nil, nil, "", fmt.Errorf("unknown fetch_type: %s", src.FetchType)
	}
}

func coverageFor(src domain.SourceConfig, status domain.FailureBucket, itemCount int, reason, adapterName string, freshness int64) domain.CoverageReport {
	okRate := 0.0
	if status == domain.BucketOK {
		okRate = 1.0
	}
	return domain.CoverageReport{
		SourceID:        src.ID,
		SourceName:      src.SourceName,
		Status:          status,
		Bucket:          status,
		ItemCount:       itemCount,
		Reason:          reason,
		Adapter:         adapterName,
		Kind:            src.Kind,
		Category:        src.Category,
		EditorialWeight: src.EditorialWeight,
		FreshnessTS:     freshness,
		OkRate:          okRate,
		KolProfile:      src.KolProfile,
	}
}

// sourceFreshnessTS is the newest publish timestamp among the items, in
// Unix milliseconds.
func sourceFreshnessTS(items []domain.NormalizedItem) int64 {
	var ts int64
	for _, it := range items {
		if t, ok := domain.ParsePublishedAt(it.PublishedAt); ok {
			if ms := t.UnixMilli(); ms > ts {
				ts = ms
			}
		}
	}
	return ts
}

func normalizeAdapterName(name string) string {
	switch name {
	case "":
		return "unknown"
	case "rss_atom", "rss":
		return "rss"
	case "html_feed", "html":
		return "html"
	case "github_releases", "github":
		return "github"
	default:
		return name
	}
}
