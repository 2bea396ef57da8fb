package fetch

import (
	"math"
	"time"

	"github.com/bg1eym/atlas-data/internal/domain"
)

const maxFailedSources = 10

// GroupStats is the ok-rate breakdown for one kind or adapter.
type GroupStats struct {
	OK     int     `json:"ok"`
	Total  int     `json:"total"`
	OkRate float64 `json:"ok_rate"`
}

// PerSourceStat is the per-source detail row of the coverage statistics.
type PerSourceStat struct {
	SourceID   string               `json:"source_id"`
	SourceName string               `json:"source_name"`
	Status     domain.FailureBucket `json:"status"`
	Bucket     domain.FailureBucket `json:"bucket"`
	HTTPStatus *int                 `json:"http_status"`
	Reason     string               `json:"reason"`
	Kind       string               `json:"kind"`
	Adapter    string               `json:"adapter"`
}

// FailedSource is one entry of the capped failing-source list.
type FailedSource struct {
	SourceID   string               `json:"source_id"`
	SourceName string               `json:"source_name"`
	Bucket     domain.FailureBucket `json:"bucket"`
	Reason     string               `json:"reason"`
	Kind       string               `json:"kind"`
	Adapter    string               `json:"adapter"`
}

// CoverageStats is the aggregate fetch-health summary for one run.
type CoverageStats struct {
	RunID            string                `json:"run_id"`
	GeneratedAt      string                `json:"generated_at"`
	TotalSources     int                   `json:"total_sources"`
	OkSources        int                   `json:"ok_sources"`
	OverallOkRate    float64               `json:"overall_ok_rate"`
	BlockedShare     float64               `json:"blocked_share"`
	ByKind           map[string]GroupStats `json:"by_kind"`
	ByAdapter        map[string]GroupStats `json:"by_adapter"`
	PerSource        []PerSourceStat       `json:"per_source"`
	TopFailedSources []FailedSource        `json:"top_failed_sources"`
}

// BuildCoverageStats computes the aggregate health summary over the run's
// coverage reports.
func BuildCoverageStats(runID string, coverage []domain.CoverageReport, now time.Time) CoverageStats {
	byKind := map[string]okTotal{}
	byAdapter := map[string]okTotal{}
	okCount := 0
	blockedCount := 0

	for _, c := range coverage {
		isOk := c.Status == domain.BucketOK
		if isOk {
			okCount++
		}
		if c.Status == domain.BucketBlocked {
			blockedCount++
		}
		kind := orUnknown(string(c.Kind))
		adapterName := orUnknown(c.Adapter)
		byKind[kind] = byKind[kind].add(isOk)
		byAdapter[adapterName] = byAdapter[adapterName].add(isOk)
	}

	stats := CoverageStats{
		RunID:        runID,
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		TotalSources: len(coverage),
		OkSources:    okCount,
		ByKind:       map[string]GroupStats{},
		ByAdapter:    map[string]GroupStats{},
		PerSource:    make([]PerSourceStat, 0, len(coverage)),
	}
	if len(coverage) > 0 {
		stats.OverallOkRate = round4(float64(okCount) / float64(len(coverage)))
		stats.BlockedShare = round4(float64(blockedCount) / float64(len(coverage)))
	}
	for k, v := range byKind {
		stats.ByKind[k] = v.stats()
	}
	for k, v := range byAdapter {
		stats.ByAdapter[k] = v.stats()
	}

	for _, c := range coverage {
		var httpStatus *int
		if s := ParseHTTPStatus(c.Reason); s != 0 {
			httpStatus = &s
		}
		stats.PerSource = append(stats.PerSource, PerSourceStat{
			SourceID:   c.SourceID,
			SourceName: orSourceID(c.SourceName, c.SourceID),
			Status:     c.Status,
			Bucket:     c.Bucket,
			HTTPStatus: httpStatus,
			Reason:     c.Reason,
			Kind:       orUnknown(string(c.Kind)),
			Adapter:    orUnknown(c.Adapter),
		})

		if c.Status != domain.BucketOK && len(stats.TopFailedSources) < maxFailedSources {
			reason := c.Reason
			if reason == "" {
				reason = "unknown"
			}
			stats.TopFailedSources = append(stats.TopFailedSources, FailedSource{
				SourceID:   c.SourceID,
				SourceName: orSourceID(c.SourceName, c.SourceID),
				Bucket:     c.Bucket,
				Reason:     reason,
				Kind:       orUnknown(string(c.Kind)),
				Adapter:    orUnknown(c.Adapter),
			})
		}
	}

	return stats
}

type okTotal struct {
	ok    int
	total int
}

func (o okTotal) add(isOk bool) okTotal {
	o.total++
	if isOk {
		o.ok++
	}
	return o
}

func (o okTotal) stats() GroupStats {
	rate := 0.0
	if o.total > 0 {
		rate = round4(float64(o.ok) / float64(o.total))
	}
	return GroupStats{OK: o.ok, Total: o.total, OkRate: rate}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orSourceID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
