// Package usecase orchestrates one full run: fetch, cap, localize,
// filter, classify, render, persist.
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bg1eym/atlas-data/internal/artifacts"
	"github.com/bg1eym/atlas-data/internal/classify"
	"github.com/bg1eym/atlas-data/internal/config"
	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
	"github.com/bg1eym/atlas-data/internal/policy"
	"github.com/bg1eym/atlas-data/internal/ports"
	"github.com/bg1eym/atlas-data/internal/relevance"
	"github.com/bg1eym/atlas-data/internal/render"
)

// PipelineDeps wires the collaborators into the run pipeline.
type PipelineDeps struct {
	Config       config.Config
	Sources      domain.SourcesDocument
	Cache        *fetch.Cache
	Orchestrator *fetch.Orchestrator
	Localizer    ports.SummaryLocalizer
	Classifier   *classify.Classifier
	Renderer     *render.Renderer
	Store        *artifacts.Store
	Archive      ports.ItemArchive
	Logger       *zap.SugaredLogger
}

// Pipeline implements the ingestion-to-artifacts workflow.
type Pipeline struct {
	cfg          config.Config
	sources      domain.SourcesDocument
	cache        *fetch.Cache
	orchestrator *fetch.Orchestrator
	localizer    ports.SummaryLocalizer
	classifier   *classify.Classifier
	renderer     *render.Renderer
	store        *artifacts.Store
	archive      ports.ItemArchive
	log          *zap.SugaredLogger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:          deps.Config,
		sources:      deps.Sources,
		cache:        deps.Cache,
		orchestrator: deps.Orchestrator,
		localizer:    deps.Localizer,
		classifier:   deps.Classifier,
		renderer:     deps.Renderer,
		store:        deps.Store,
		archive:      deps.Archive,
		log:          deps.Logger,
	}
}

// Run executes one complete run under the given id. Per-source fetch
// failures degrade into coverage entries; only an artifact write error
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, runID string) error {
	result := p.orchestrator.FetchAll(ctx, p.sources, runID)

	if p.cache != nil {
		if err := p.cache.Save(); err != nil {
			p.log.Warnw("cache save failed", "error", err)
		}
	}

	pol := policy.Policy{
		PerSourceLimit: p.cfg.Policy.PerSourceLimit,
		PerCategoryCap: p.cfg.Policy.PerCategoryCap,
		GlobalCap:      p.cfg.Policy.GlobalCap,
		SortBy:         p.cfg.Policy.SortBy,
	}
	limited := policy.Apply(result.Normalized, pol, func(it domain.NormalizedItem) string {
		if it.CategoryHint != "" {
			return it.CategoryHint
		}
		return "uncategorized"
	})
	p.log.Infow("policy applied",
		"total", len(result.Normalized),
		"after_policy", len(limited),
		"per_source", pol.PerSourceLimit,
		"global", pol.GlobalCap,
	)

	localized := limited
	if p.localizer != nil {
		localized = p.localizer.Apply(ctx, limited)
	}

	now := time.Now()
	if err := p.store.WriteFetchBundle(runID, artifacts.FetchBundle{
		BySource:        result.RawBySource,
		Items:           localized,
		TotalNormalized: len(result.Normalized),
		Coverage:        result.Coverage,
		Diagnostics:     result.Diagnostics,
		GeneratedAt:     now,
	}); err != nil {
		return fmt.Errorf("write fetch artifacts: %w", err)
	}

	stats := fetch.BuildCoverageStats(runID, result.Coverage, now)
	if err := p.store.WriteCoverageStats(runID, stats); err != nil {
		return fmt.Errorf("write coverage stats: %w", err)
	}
	p.log.Infow("coverage", "ok_rate", stats.OverallOkRate, "total_sources", stats.TotalSources)

	filtered := relevance.Filter(localized)
	if err := p.store.WriteRelevanceReport(runID, filtered.Report); err != nil {
		return fmt.Errorf("write relevance report: %w", err)
	}
	if filtered.Report.RejectedItemsCount > 0 {
		p.log.Infow("relevance filter",
			"rejected", filtered.Report.RejectedItemsCount,
			"keywords", filtered.Report.KeywordsHit,
		)
	}

	classified := p.classifier.ClassifyAll(localized)
	highlights := p.renderer.Highlights(classified, render.Options{
		Threshold: p.cfg.Highlights.Threshold,
		TopN:      p.cfg.Highlights.TopN,
	}, now)
	aggregates := p.renderer.Aggregates(classified)
	distribution := p.renderer.Distribution(classified, runID)

	if err := p.store.WriteCivilization(runID, classified, highlights, aggregates, distribution); err != nil {
		return fmt.Errorf("write classification artifacts: %w", err)
	}
	p.log.Infow("classified",
		"items", len(classified),
		"structural", aggregates.StructuralCount,
		"highlights", len(highlights.StructuralEvents),
	)

	if p.archive != nil {
		archived, err := p.archive.ArchivedRuns(ctx, []string{runID})
		if err != nil {
			p.log.Warnw("archive lookup failed", "error", err)
		}
		if archived[runID] {
			p.log.Infow("run already archived, skipping", "run_id", runID)
		} else if err := p.archive.SaveClassified(ctx, runID, classified); err != nil {
			p.log.Errorw("archive failed", "error", err)
		}
	}

	return nil
}
