package fetch

import (
	"fmt"
	"testing"
	"time"

	"github.com/bg1eym/atlas-data/internal/domain"
)

func report(id string, status domain.FailureBucket, kind domain.ItemKind, adapterName, reason string) domain.CoverageReport {
	return domain.CoverageReport{
		SourceID: id,
		Status:   status,
		Bucket:   status,
		Kind:     kind,
		Adapter:  adapterName,
		Reason:   reason,
	}
}

func TestBuildCoverageStats(t *testing.T) {
	t.Parallel()

	coverage := []domain.CoverageReport{
		report("a", domain.BucketOK, domain.KindOfficial, "rss_atom", ""),
		report("b", domain.BucketOK, domain.KindOfficial, "rss_atom", ""),
		report("c", domain.BucketHTTP5xx, domain.KindNews, "rss_atom", "HTTP 503 for c"),
		report("d", domain.BucketBlocked, domain.KindCommunity, "html_feed", "domain not in allowlist (blocked_by_policy)"),
	}

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	stats := BuildCoverageStats("run-1", coverage, now)

	if stats.TotalSources != 4 || stats.OkSources != 2 {
		t.Fatalf("counts wrong: %+v", stats)
	}
	if stats.OverallOkRate != 0.5 {
		t.Fatalf("ok rate: %v", stats.OverallOkRate)
	}
	if stats.BlockedShare != 0.25 {
		t.Fatalf("blocked share: %v", stats.BlockedShare)
	}
	if got := stats.ByKind["official"]; got.OK != 2 || got.Total != 2 || got.OkRate != 1 {
		t.Fatalf("by_kind official: %+v", got)
	}
	if got := stats.ByAdapter["rss_atom"]; got.OK != 2 || got.Total != 3 || got.OkRate != 0.6667 {
		t.Fatalf("by_adapter rounding: %+v", got)
	}
	if len(stats.TopFailedSources) != 2 {
		t.Fatalf("failed sources: %+v", stats.TopFailedSources)
	}
	if stats.GeneratedAt != "2026-08-30T09:00:00Z" {
		t.Fatalf("generated_at: %s", stats.GeneratedAt)
	}

	var c *PerSourceStat
	for i := range stats.PerSource {
		if stats.PerSource[i].SourceID == "c" {
			c = &stats.PerSource[i]
		}
	}
	if c == nil || c.HTTPStatus == nil || *c.HTTPStatus != 503 {
		t.Fatalf("http status for c: %+v", c)
	}
	for i := range stats.PerSource {
		if stats.PerSource[i].SourceID == "a" && stats.PerSource[i].HTTPStatus != nil {
			t.Fatal("ok source must have null http_status")
		}
	}
}

func TestBuildCoverageStatsFailedSourcesCapped(t *testing.T) {
	t.Parallel()

	var coverage []domain.CoverageReport
	for i := 0; i < 15; i++ {
		coverage = append(coverage, report(
			fmt.Sprintf("s-%d", i),
			domain.BucketTimeout,
			domain.KindNews,
			"rss_atom",
			"timeout",
		))
	}

	stats := BuildCoverageStats("run-1", coverage, time.Now())
	if len(stats.TopFailedSources) != 10 {
		t.Fatalf("expected cap at 10, got %d", len(stats.TopFailedSources))
	}
}

func TestBuildCoverageStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := BuildCoverageStats("run-1", nil, time.Now())
	if stats.OverallOkRate != 0 || stats.TotalSources != 0 {
		t.Fatalf("empty coverage: %+v", stats)
	}
	if stats.PerSource == nil {
		t.Fatal("per_source must marshal as [] not null")
	}
}
