package translate

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/ports"
)

const (
	// textByteBudget caps the text sent to the free backends.
	textByteBudget = 450

	defaultBatchSize  = 5
	defaultBatchDelay = 200 * time.Millisecond

	reasonSkipped = "translation_skipped"
	reasonFailed  = "translation_failed"
)

// Stage runs the summary localization pass over normalized items.
// Items keep their order; every item gets a summary_zh, falling back to
// the placeholder with a reason when no engine produced text.
type Stage struct {
	engines    []ports.Translator
	enabled    bool
	batchSize  int
	batchDelay time.Duration
	log        *zap.SugaredLogger
}

// NewStage wires the engine chain. Engines are tried in the given order.
func NewStage(engines []ports.Translator, enabled bool, batchSize int, batchDelay time.Duration, log *zap.SugaredLogger) *Stage {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if batchDelay <= 0 {
		batchDelay = defaultBatchDelay
	}
	return &Stage{
		engines:    engines,
		enabled:    enabled,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		log:        log,
	}
}

// Apply localizes summaries in batches. Disabled stages stamp every item
// with the placeholder instead of calling out.
func (s *Stage) Apply(ctx context.Context, items []domain.NormalizedItem) []domain.NormalizedItem {
	out := make([]domain.NormalizedItem, len(items))
	copy(out, items)

	if !s.enabled {
		for i := range out {
			out[i].SummaryZH = domain.PlaceholderSummaryZH
			out[i].SummaryZHReason = reasonSkipped
		}
		return out
	}

	s.log.Infow("translating summaries", "items", len(out), "batch_size", s.batchSize)

	var mu sync.Mutex
	for start := 0; start < len(out); start += s.batchSize {
		end := start + s.batchSize
		if end > len(out) {
			end = len(out)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				text := out[i].Summary
				if text == "" {
					text = out[i].Title
				}
				zh := s.translateOne(gctx, text)
				mu.Lock()
				if zh != "" {
					out[i].SummaryZH = zh
				} else {
					out[i].SummaryZH = domain.PlaceholderSummaryZH
					out[i].SummaryZHReason = reasonFailed
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if end < len(out) {
			select {
			case <-ctx.Done():
				for i := end; i < len(out); i++ {
					out[i].SummaryZH = domain.PlaceholderSummaryZH
					out[i].SummaryZHReason = reasonFailed
				}
				return out
			case <-time.After(s.batchDelay):
			}
		}
	}

	return out
}

// translateOne trims the text to the byte budget and walks the engine
// chain until one returns a non-empty translation.
func (s *Stage) translateOne(ctx context.Context, text string) string {
	t := trimToBytes(text, textByteBudget)
	if t == "" {
		return ""
	}
	for _, eng := range s.engines {
		zh, err := eng.Translate(ctx, t)
		if err != nil {
			s.log.Debugw("translate engine failed", "engine", eng.Name(), "error", err)
			continue
		}
		if zh != "" {
			return zh
		}
	}
	return ""
}

// trimToBytes drops trailing runes until the string fits the budget.
func trimToBytes(s string, budget int) string {
	t := []rune(strings.TrimSpace(s))
	for len(t) > 0 && len(string(t)) > budget {
		t = t[:len(t)-1]
	}
	return string(t)
}
