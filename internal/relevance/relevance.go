// Package relevance applies the hard denylist over normalized items:
// any match in title or summary rejects the item outright.
package relevance

import (
	"fmt"
	"regexp"

	"github.com/bg1eym/atlas-data/internal/domain"
)

var denylistRe = regexp.MustCompile(`(?i)Gaza|Hostage|Palestinian|Israel|北加沙|人质|巴勒斯坦|房地产|real-estate|property developer|hostage|palestinians`)

const maxRejectedSamples = 3

// RejectedSample records one rejected item for the report.
type RejectedSample struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Report summarizes what the filter removed.
type Report struct {
	KeywordsHit        []string         `json:"keywords_hit"`
	RejectedItemsCount int              `json:"rejected_items_count"`
	RejectedSamples    []RejectedSample `json:"rejected_samples"`
}

// Result splits the input into allowed and rejected items.
type Result struct {
	Allowed  []domain.NormalizedItem
	Rejected []domain.NormalizedItem
	Report   Report
}

// Filter partitions items by the denylist. Matching is case-insensitive
// over title plus summary; the first match per item is reported.
func Filter(items []domain.NormalizedItem) Result {
	res := Result{
		Allowed:  []domain.NormalizedItem{},
		Rejected: []domain.NormalizedItem{},
		Report: Report{
			KeywordsHit:     []string{},
			RejectedSamples: []RejectedSample{},
		},
	}
	seen := map[string]bool{}
	for _, it := range items {
		text := it.Title + " " + it.Summary
		kw := denylistRe.FindString(text)
		if kw == "" {
			res.Allowed = append(res.Allowed, it)
			continue
		}
		if !seen[kw] {
			seen[kw] = true
			res.Report.KeywordsHit = append(res.Report.KeywordsHit, kw)
		}
		res.Rejected = append(res.Rejected, it)
		if len(res.Report.RejectedSamples) < maxRejectedSamples {
			res.Report.RejectedSamples = append(res.Report.RejectedSamples, RejectedSample{
				Title:  it.Title,
				Source: it.SourceName,
				Reason: fmt.Sprintf("denylist: %s", kw),
			})
		}
	}
	res.Report.RejectedItemsCount = len(res.Rejected)
	return res
}
