package ports

import (
	"context"

	"github.com/bg1eym/atlas-data/internal/domain"
)

// Translator produces a localized rendition of a summary. Implementations are
// best-effort external collaborators; an empty result means "no translation".
type Translator interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// SummaryLocalizer produces zh-CN summaries for a batch of items. It is
// best-effort: the returned slice always has the input length and order.
type SummaryLocalizer interface {
	Apply(ctx context.Context, items []domain.NormalizedItem) []domain.NormalizedItem
}

// ItemArchive persists classified items for history and audit.
type ItemArchive interface {
	ArchivedRuns(ctx context.Context, runIDs []string) (map[string]bool, error)
	SaveClassified(ctx context.Context, runID string, items []domain.ClassifiedItem) error
}

// RunReader reads a prior run's fetch artifacts for cache rehydration.
type RunReader interface {
	ReadRaw(runID, sourceID string) ([]domain.RawItem, error)
	ReadNormalized(runID string) ([]domain.NormalizedItem, error)
}
