package relevance

import (
	"testing"

	"github.com/bg1eym/atlas-data/internal/domain"
)

func TestFilterRejectsDenylisted(t *testing.T) {
	t.Parallel()

	items := []domain.NormalizedItem{
		{ID: "1", Title: "New model benchmark results", SourceName: "A"},
		{ID: "2", Title: "Gaza ceasefire talks continue", SourceName: "B"},
		{ID: "3", Title: "Quiet week", Summary: "A property developer expands", SourceName: "C"},
	}

	res := Filter(items)

	if len(res.Allowed) != 1 || res.Allowed[0].ID != "1" {
		t.Fatalf("unexpected allowed set: %+v", res.Allowed)
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("expected 2 rejected, got %d", len(res.Rejected))
	}
	if res.Report.RejectedItemsCount != 2 {
		t.Fatalf("report count mismatch: %d", res.Report.RejectedItemsCount)
	}
}

func TestFilterCaseInsensitive(t *testing.T) {
	t.Parallel()

	res := Filter([]domain.NormalizedItem{
		{ID: "1", Title: "HOSTAGE negotiations stall"},
	})
	if len(res.Rejected) != 1 {
		t.Fatalf("expected case-insensitive match, got %+v", res.Rejected)
	}
}

func TestFilterReportKeywordsDistinct(t *testing.T) {
	t.Parallel()

	res := Filter([]domain.NormalizedItem{
		{ID: "1", Title: "Gaza update one"},
		{ID: "2", Title: "Gaza update two"},
		{ID: "3", Title: "Israel summit"},
	})

	if len(res.Report.KeywordsHit) != 2 {
		t.Fatalf("expected 2 distinct keywords, got %v", res.Report.KeywordsHit)
	}
}

func TestFilterSamplesCappedAtThree(t *testing.T) {
	t.Parallel()

	items := []domain.NormalizedItem{
		{ID: "1", Title: "Gaza a", SourceName: "S1"},
		{ID: "2", Title: "Gaza b", SourceName: "S2"},
		{ID: "3", Title: "Gaza c", SourceName: "S3"},
		{ID: "4", Title: "Gaza d", SourceName: "S4"},
	}

	res := Filter(items)
	if len(res.Report.RejectedSamples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(res.Report.RejectedSamples))
	}
	if res.Report.RejectedSamples[0].Reason != "denylist: Gaza" {
		t.Fatalf("unexpected reason: %s", res.Report.RejectedSamples[0].Reason)
	}
	if res.Report.RejectedItemsCount != 4 {
		t.Fatalf("count should include all rejected: %d", res.Report.RejectedItemsCount)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	t.Parallel()

	res := Filter(nil)
	if len(res.Allowed) != 0 || len(res.Rejected) != 0 {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}
	if res.Report.KeywordsHit == nil || res.Report.RejectedSamples == nil {
		t.Fatal("report slices must marshal as [] not null")
	}
}
