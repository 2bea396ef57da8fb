package domain

import "strings"

// ItemKind partitions sources by editorial origin.
type ItemKind string

const (
	KindOfficial  ItemKind = "official"
	KindNews      ItemKind = "news"
	KindCommunity ItemKind = "community"
	KindReport    ItemKind = "report"
	KindKol       ItemKind = "kol"
)

// AdapterType names a fetch strategy declared on a source.
type AdapterType string

const (
	AdapterRSS    AdapterType = "rss"
	AdapterHTML   AdapterType = "html"
	AdapterGitHub AdapterType = "github"
	AdapterX      AdapterType = "x"
)

// FallbackSignalSource is an alternate feed for a KOL whose primary platform
// cannot be fetched directly.
type FallbackSignalSource struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// KolProfile describes the person behind a kol-kind source.
type KolProfile struct {
	Platform              string                 `json:"platform"`
	HandleOrURL           string                 `json:"handle_or_url"`
	FallbackSignalSources []FallbackSignalSource `json:"fallback_signal_sources,omitempty"`
}

// RateLimit bounds request pacing for a single source.
type RateLimit struct {
	RPS   float64 `json:"rps,omitempty"`
	Burst int     `json:"burst,omitempty"`
}

// SourceConfig is one entry of the sources document. Loaded once per run,
// read-only afterwards.
type SourceConfig struct {
	ID               string            `json:"id"`
	Type             string            `json:"type"`
	FetchType        AdapterType       `json:"fetch_type"`
	URL              string            `json:"url"`
	SourceName       string            `json:"source_name"`
	Enabled          bool              `json:"enabled"`
	CoverageRequired bool              `json:"coverage_required"`
	Kind             ItemKind          `json:"kind,omitempty"`
	Category         string            `json:"category,omitempty"`
	EditorialWeight  float64           `json:"editorial_weight,omitempty"`
	Selectors        []string          `json:"selectors,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
	RateLimit        *RateLimit        `json:"rate_limit,omitempty"`
	KolProfile       *KolProfile       `json:"kol_profile,omitempty"`
}

// SourcesDocument is the read-only input config for a run.
type SourcesDocument struct {
	Sources             []SourceConfig `json:"sources"`
	HTMLDomainAllowlist []string       `json:"html_domain_allowlist,omitempty"`
}

// RawItem is the adapter-specific record before normalization. Field names
// mirror the raw artifact format so prior-run payloads rehydrate unchanged.
type RawItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Link           string `json:"link,omitempty"`
	URL            string `json:"url,omitempty"`
	Content        string `json:"content,omitempty"`
	ContentSnippet string `json:"contentSnippet,omitempty"`
	PubDate        string `json:"pubDate,omitempty"`
	ISODate        string `json:"isoDate,omitempty"`
	Creator        string `json:"creator,omitempty"`
	Source         string `json:"source,omitempty"`
}

// NormalizedItem is the common schema every adapter emits. Summary is never
// empty: it falls back to the title, then a fixed placeholder, and is capped
// at 500 characters. SummaryZH/SummaryZHReason are attached by the localized
// summary stage and absent before it runs.
type NormalizedItem struct {
	ID              string   `json:"id"`
	SourceID        string   `json:"source_id,omitempty"`
	Title           string   `json:"title"`
	SourceName      string   `json:"source_name"`
	SourceDomain    string   `json:"source_domain"`
	URL             string   `json:"url"`
	PublishedAt     string   `json:"published_at"`
	Summary         string   `json:"summary"`
	Language        string   `json:"language"`
	Tags            []string `json:"tags"`
	CategoryHint    string   `json:"category_hint"`
	Kind            ItemKind `json:"kind,omitempty"`
	SummaryZH       string   `json:"summary_zh,omitempty"`
	SummaryZHReason string   `json:"summary_zh_reason,omitempty"`
}

const (
	// PlaceholderTitle replaces a missing item title.
	PlaceholderTitle = "(无标题)"
	// PlaceholderSummary replaces a summary when both snippet and title are empty.
	PlaceholderSummary = "(no summary)"
	// PlaceholderSummaryZH marks a localized summary that could not be produced.
	PlaceholderSummaryZH = "（摘要生成失败）"
	// SummaryMaxLen caps every normalized summary.
	SummaryMaxLen = 500
)

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FallbackSummary applies the summary fallback chain: snippet, title, fixed
// placeholder, truncated to SummaryMaxLen.
func FallbackSummary(summary, title string) string {
	s := strings.TrimSpace(summary)
	if s == "" {
		s = strings.TrimSpace(title)
	}
	if s == "" {
		s = PlaceholderSummary
	}
	return Truncate(s, SummaryMaxLen)
}
