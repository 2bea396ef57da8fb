package domain

// FailureBucket is the closed set of per-source fetch outcomes.
type FailureBucket string

const (
	BucketOK          FailureBucket = "ok"
	BucketEmpty       FailureBucket = "empty"
	BucketRateLimited FailureBucket = "rate_limited"
	BucketParseError  FailureBucket = "parse_error"
	BucketBlocked     FailureBucket = "blocked"
	BucketTimeout     FailureBucket = "timeout"
	BucketTLS         FailureBucket = "tls"
	BucketDNS         FailureBucket = "dns"
	BucketHTTP4xx     FailureBucket = "http_4xx"
	BucketHTTP5xx     FailureBucket = "http_5xx"
	BucketUnknown     FailureBucket = "unknown"
)

// CoverageReport records the fetch outcome for one source in one run.
// Exactly one report is produced per enabled source.
type CoverageReport struct {
	SourceID        string        `json:"source_id"`
	SourceName      string        `json:"source_name,omitempty"`
	Status          FailureBucket `json:"status"`
	Bucket          FailureBucket `json:"bucket,omitempty"`
	ItemCount       int           `json:"item_count"`
	Reason          string        `json:"reason,omitempty"`
	Adapter         string        `json:"adapter,omitempty"`
	Kind            ItemKind      `json:"kind,omitempty"`
	Category        string        `json:"category,omitempty"`
	EditorialWeight float64       `json:"editorial_weight,omitempty"`
	FreshnessTS     int64         `json:"freshness_ts"`
	OkRate          float64       `json:"ok_rate"`
	KolProfile      *KolProfile   `json:"kol_profile,omitempty"`
}

// FetchDiagnostic captures per-source timing and outcome for one run.
type FetchDiagnostic struct {
	SourceID        string        `json:"source_id"`
	PerSourceTimeMS int64         `json:"per_source_time_ms"`
	SkippedByCache  bool          `json:"skipped_by_cache"`
	AdapterUsed     string        `json:"adapter_used"`
	ItemCount       int           `json:"item_count"`
	Bucket          FailureBucket `json:"bucket"`
	Reason          string        `json:"reason,omitempty"`
}

// CacheEntry is the persisted freshness record for one source. Entries are
// only checked for staleness, never evicted.
type CacheEntry struct {
	SourceID           string `json:"source_id"`
	LastFetchTimestamp int64  `json:"last_fetch_timestamp"`
	LastRunID          string `json:"last_run_id,omitempty"`
	ETag               string `json:"etag,omitempty"`
	LastModified       string `json:"last_modified,omitempty"`
}
