package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/bg1eym/atlas-data/internal/adapter"
	"github.com/bg1eym/atlas-data/internal/artifacts"
	"github.com/bg1eym/atlas-data/internal/classify"
	"github.com/bg1eym/atlas-data/internal/config"
	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
	"github.com/bg1eym/atlas-data/internal/render"
)

type fixedAdapter struct{}

func (fixedAdapter) Name() domain.AdapterType { return domain.AdapterRSS }

func (fixedAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.RawItem, error) {
	return []domain.RawItem{
		{ID: "rss-" + cfg.ID + "-1", Title: "OpenAI releases GPT-5", URL: "https://lab.example.com/gpt5", ISODate: "2026-08-20T09:00:00Z"},
		{ID: "rss-" + cfg.ID + "-2", Title: "Gaza coverage roundup", URL: "https://lab.example.com/other", ISODate: "2026-08-20T08:00:00Z"},
	}, nil
}

func (fixedAdapter) Normalize(raw []domain.RawItem, cfg domain.SourceConfig) []domain.NormalizedItem {
	out := make([]domain.NormalizedItem, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.NormalizedItem{
			ID:           r.ID,
			SourceID:     cfg.ID,
			Title:        r.Title,
			SourceName:   cfg.SourceName,
			URL:          r.URL,
			PublishedAt:  r.ISODate,
			Summary:      r.Title,
			Language:     "en",
			Tags:         []string{},
			CategoryHint: "Official AI",
			Kind:         domain.KindOfficial,
		})
	}
	return out
}

type passthroughLocalizer struct{}

func (passthroughLocalizer) Apply(ctx context.Context, items []domain.NormalizedItem) []domain.NormalizedItem {
	out := make([]domain.NormalizedItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].SummaryZH = domain.PlaceholderSummaryZH
		out[i].SummaryZHReason = "translation_skipped"
	}
	return out
}

type recordingArchive struct {
	existing map[string]bool
	runID    string
	items    int
	saves    int
}

func (r *recordingArchive) ArchivedRuns(ctx context.Context, runIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(runIDs))
	for _, id := range runIDs {
		if r.existing[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *recordingArchive) SaveClassified(ctx context.Context, runID string, items []domain.ClassifiedItem) error {
	r.runID = runID
	r.items = len(items)
	r.saves++
	return nil
}

func TestPipelineRunWritesAllArtifacts(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	reg := adapter.NewRegistry()
	reg.Register(fixedAdapter{})

	tax := classify.DefaultTaxonomy()
	store := artifacts.NewStore(outDir)
	cache := fetch.LoadCache(filepath.Join(t.TempDir(), "cache.json"), store)
	log := zap.NewNop().Sugar()
	archive := &recordingArchive{}

	cfg := config.Config{
		Policy:     config.PolicyConfig{PerSourceLimit: 20, PerCategoryCap: 60, GlobalCap: 240, SortBy: "published_at_desc"},
		Highlights: config.HighlightsConfig{Threshold: 7, TopN: 8},
	}
	doc := domain.SourcesDocument{Sources: []domain.SourceConfig{
		{ID: "lab-blog", FetchType: domain.AdapterRSS, SourceName: "Lab Blog", Enabled: true, Kind: domain.KindOfficial},
	}}

	p := NewPipeline(PipelineDeps{
		Config:       cfg,
		Sources:      doc,
		Cache:        cache,
		Orchestrator: fetch.NewOrchestrator(reg, cache, 5, nil, log),
		Localizer:    passthroughLocalizer{},
		Classifier:   classify.New(tax),
		Renderer:     render.NewRenderer(tax),
		Store:        store,
		Archive:      archive,
		Logger:       log,
	})

	runID := "atlas-pipeline-test"
	if err := p.Run(context.Background(), runID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, rel := range []string{
		filepath.Join("atlas-fetch", "sources_raw.json"),
		filepath.Join("atlas-fetch", "items_normalized.json"),
		filepath.Join("atlas-fetch", "provenance.json"),
		"fetch_diagnostics.json",
		"coverage_stats.json",
		"relevance_report.json",
		"classification_distribution.json",
		filepath.Join("civilization", "items_civ.json"),
		filepath.Join("civilization", "highlights.json"),
		filepath.Join("civilization", "aggregates.json"),
	} {
		if _, err := os.Stat(filepath.Join(outDir, runID, rel)); err != nil {
			t.Errorf("missing artifact %s: %v", rel, err)
		}
	}

	if archive.runID != runID || archive.items != 2 {
		t.Errorf("archive got run=%q items=%d", archive.runID, archive.items)
	}

	items, err := store.ReadNormalized(runID)
	if err != nil {
		t.Fatalf("ReadNormalized: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d normalized items, want 2", len(items))
	}
	for _, it := range items {
		if it.SummaryZH != domain.PlaceholderSummaryZH {
			t.Errorf("item %s missing localized summary", it.ID)
		}
	}
}

func TestPipelineRunSkipsArchivedRun(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	reg := adapter.NewRegistry()
	reg.Register(fixedAdapter{})

	tax := classify.DefaultTaxonomy()
	store := artifacts.NewStore(outDir)
	log := zap.NewNop().Sugar()

	runID := "atlas-already-archived"
	archive := &recordingArchive{existing: map[string]bool{runID: true}}

	p := NewPipeline(PipelineDeps{
		Config: config.Config{
			Policy:     config.PolicyConfig{PerSourceLimit: 20, PerCategoryCap: 60, GlobalCap: 240},
			Highlights: config.HighlightsConfig{Threshold: 7, TopN: 8},
		},
		Sources: domain.SourcesDocument{Sources: []domain.SourceConfig{
			{ID: "lab-blog", FetchType: domain.AdapterRSS, Enabled: true},
		}},
		Orchestrator: fetch.NewOrchestrator(reg, nil, 5, nil, log),
		Classifier:   classify.New(tax),
		Renderer:     render.NewRenderer(tax),
		Store:        store,
		Archive:      archive,
		Logger:       log,
	})

	if err := p.Run(context.Background(), runID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if archive.saves != 0 {
		t.Errorf("already-archived run was saved %d times", archive.saves)
	}
}

func TestPipelineRunContinuesWithoutArchive(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	reg := adapter.NewRegistry()
	reg.Register(fixedAdapter{})

	tax := classify.DefaultTaxonomy()
	store := artifacts.NewStore(outDir)
	log := zap.NewNop().Sugar()

	p := NewPipeline(PipelineDeps{
		Config: config.Config{
			Policy:     config.PolicyConfig{PerSourceLimit: 20, PerCategoryCap: 60, GlobalCap: 240},
			Highlights: config.HighlightsConfig{Threshold: 7, TopN: 8},
		},
		Sources: domain.SourcesDocument{Sources: []domain.SourceConfig{
			{ID: "lab-blog", FetchType: domain.AdapterRSS, Enabled: true},
		}},
		Orchestrator: fetch.NewOrchestrator(reg, nil, 5, nil, log),
		Classifier:   classify.New(tax),
		Renderer:     render.NewRenderer(tax),
		Store:        store,
		Logger:       log,
	})

	if err := p.Run(context.Background(), "atlas-no-archive"); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
