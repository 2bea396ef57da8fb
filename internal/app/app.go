// Package app wires configuration into a runnable pipeline instance.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bg1eym/atlas-data/internal/adapter"
	"github.com/bg1eym/atlas-data/internal/artifacts"
	"github.com/bg1eym/atlas-data/internal/classify"
	"github.com/bg1eym/atlas-data/internal/config"
	"github.com/bg1eym/atlas-data/internal/fetch"
	"github.com/bg1eym/atlas-data/internal/infrastructure/adapters"
	"github.com/bg1eym/atlas-data/internal/infrastructure/storage"
	"github.com/bg1eym/atlas-data/internal/infrastructure/translate"
	"github.com/bg1eym/atlas-data/internal/logging"
	"github.com/bg1eym/atlas-data/internal/ports"
	"github.com/bg1eym/atlas-data/internal/render"
	"github.com/bg1eym/atlas-data/internal/usecase"
)

// Application holds the wired pipeline for a single run.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	log      *zap.SugaredLogger
}

// New builds the application. Loading the sources document is the one
// fatal configuration step; everything else degrades.
func New(cfg config.Config, log *zap.SugaredLogger) (*Application, error) {
	if log == nil {
		log = logging.New(cfg.Logging.Level)
	}

	doc, err := config.LoadSources(cfg.Paths.Sources)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	store := artifacts.NewStore(cfg.Paths.OutDir)
	cache := fetch.LoadCache(cfg.Paths.Cache, store)

	registry := adapter.NewRegistry()
	adapters.RegisterAll(registry, doc.HTMLDomainAllowlist, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)

	orchestrator := fetch.NewOrchestrator(registry, cache, cfg.Fetch.BatchSize, cfg.Fetch.URLOverrides, log.With("component", "fetch"))

	timeout := time.Duration(cfg.Translate.TimeoutSeconds) * time.Second
	engines := []ports.Translator{
		translate.NewMyMemory(cfg.Translate.MyMemoryURL, cfg.Translate.MyMemoryEmail, timeout),
		translate.NewLibre(cfg.Translate.LibreURL, cfg.Translate.LibreAPIKey, timeout),
	}
	localizer := translate.NewStage(
		engines,
		cfg.Translate.Enabled,
		cfg.Translate.BatchSize,
		time.Duration(cfg.Translate.BatchDelayMS)*time.Millisecond,
		log.With("component", "translate"),
	)

	tax, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, err
	}
	classifier := classify.New(tax)
	renderer := render.NewRenderer(tax)

	var archive ports.ItemArchive
	if cfg.Archive.DSN != "" {
		db, dbErr := storage.Open(cfg.Archive.DSN)
		if dbErr != nil {
			log.Warnw("archive disabled", "error", dbErr)
		} else {
			archive = storage.NewPostgresArchive(db)
		}
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Config:       cfg,
		Sources:      doc,
		Cache:        cache,
		Orchestrator: orchestrator,
		Localizer:    localizer,
		Classifier:   classifier,
		Renderer:     renderer,
		Store:        store,
		Archive:      archive,
		Logger:       log.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, log: log}, nil
}

// Run executes one pipeline run.
func (a *Application) Run(ctx context.Context, runID string) error {
	a.log.Infow("run starting", "run_id", runID, "out_dir", a.cfg.Paths.OutDir)
	if err := a.pipeline.Run(ctx, runID); err != nil {
		return err
	}
	a.log.Infow("run finished", "run_id", runID)
	return nil
}

func loadTaxonomy(cfg config.Config) (classify.Taxonomy, error) {
	if cfg.Taxonomy.Path == "" {
		return classify.DefaultTaxonomy(), nil
	}
	tax, err := classify.LoadTaxonomy(cfg.Taxonomy.Path)
	if err != nil {
		return classify.Taxonomy{}, fmt.Errorf("load taxonomy: %w", err)
	}
	return tax, nil
}
