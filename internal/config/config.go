package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bg1eym/atlas-data/internal/domain"
)

const (
	configPathEnv    = "ATLAS_CONFIG"
	sourcesPathEnv   = "ATLAS_SOURCES"
	outDirEnv        = "ATLAS_OUT_DIR"
	cachePathEnv     = "ATLAS_CACHE_PATH"
	databaseDSNEnv   = "DATABASE_DSN"
	skipTranslateEnv = "ATLAS_SKIP_TRANSLATE"
	mymemoryEmailEnv = "ATLAS_MYMEMORY_EMAIL"
	logLevelEnv      = "ATLAS_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Paths      PathsConfig      `yaml:"paths"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Policy     PolicyConfig     `yaml:"policy"`
	Translate  TranslateConfig  `yaml:"translate"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy"`
	Highlights HighlightsConfig `yaml:"highlights"`
	Archive    ArchiveConfig    `yaml:"archive"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PathsConfig locates the sources document, cache store, and run output root.
type PathsConfig struct {
	Sources string `yaml:"sources"`
	Cache   string `yaml:"cache"`
	OutDir  string `yaml:"outDir"`
}

// FetchConfig bounds the orchestrator's concurrency and per-call timeout.
type FetchConfig struct {
	BatchSize      int               `yaml:"batchSize"`
	TimeoutSeconds int               `yaml:"timeoutSeconds"`
	URLOverrides   map[string]string `yaml:"urlOverrides"`
}

// PolicyConfig mirrors the fetch policy caps.
type PolicyConfig struct {
	PerSourceLimit int    `yaml:"perSourceLimit"`
	PerCategoryCap int    `yaml:"perCategoryCap"`
	GlobalCap      int    `yaml:"globalCap"`
	SortBy         string `yaml:"sortBy"`
}

// TranslateConfig wires the localized-summary stage.
type TranslateConfig struct {
	Enabled        bool   `yaml:"enabled"`
	BatchSize      int    `yaml:"batchSize"`
	BatchDelayMS   int    `yaml:"batchDelayMs"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MyMemoryURL    string `yaml:"mymemoryUrl"`
	MyMemoryEmail  string `yaml:"mymemoryEmail"`
	LibreURL       string `yaml:"libreUrl"`
	LibreAPIKey    string `yaml:"libreApiKey"`
}

// TaxonomyConfig optionally points at an external taxonomy file; when empty
// the built-in taxonomy is used.
type TaxonomyConfig struct {
	Path string `yaml:"path"`
}

// HighlightsConfig controls the highlight selection stage.
type HighlightsConfig struct {
	Threshold int `yaml:"threshold"`
	TopN      int `yaml:"topN"`
}

// ArchiveConfig enables the optional Postgres archive when a DSN is set.
type ArchiveConfig struct {
	DSN string `yaml:"dsn"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(sourcesPathEnv); v != "" {
		c.Paths.Sources = v
	}
	if v := os.Getenv(outDirEnv); v != "" {
		c.Paths.OutDir = v
	}
	if v := os.Getenv(cachePathEnv); v != "" {
		c.Paths.Cache = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Archive.DSN = v
	}
	if v := os.Getenv(mymemoryEmailEnv); v != "" {
		c.Translate.MyMemoryEmail = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if os.Getenv(skipTranslateEnv) == "1" {
		c.Translate.Enabled = false
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Paths.Sources != "" {
		base.Paths.Sources = override.Paths.Sources
	}
	if override.Paths.Cache != "" {
		base.Paths.Cache = override.Paths.Cache
	}
	if override.Paths.OutDir != "" {
		base.Paths.OutDir = override.Paths.OutDir
	}

	if override.Fetch.BatchSize > 0 {
		base.Fetch.BatchSize = override.Fetch.BatchSize
	}
	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if len(override.Fetch.URLOverrides) > 0 {
		base.Fetch.URLOverrides = override.Fetch.URLOverrides
	}

	if override.Policy.PerSourceLimit > 0 {
		base.Policy.PerSourceLimit = override.Policy.PerSourceLimit
	}
	if override.Policy.PerCategoryCap > 0 {
		base.Policy.PerCategoryCap = override.Policy.PerCategoryCap
	}
	if override.Policy.GlobalCap > 0 {
		base.Policy.GlobalCap = override.Policy.GlobalCap
	}
	if override.Policy.SortBy != "" {
		base.Policy.SortBy = override.Policy.SortBy
	}

	if override.Translate.BatchSize > 0 {
		base.Translate.BatchSize = override.Translate.BatchSize
	}
	if override.Translate.BatchDelayMS > 0 {
		base.Translate.BatchDelayMS = override.Translate.BatchDelayMS
	}
	if override.Translate.TimeoutSeconds > 0 {
		base.Translate.TimeoutSeconds = override.Translate.TimeoutSeconds
	}
	if override.Translate.MyMemoryURL != "" {
		base.Translate.MyMemoryURL = override.Translate.MyMemoryURL
	}
	if override.Translate.MyMemoryEmail != "" {
		base.Translate.MyMemoryEmail = override.Translate.MyMemoryEmail
	}
	if override.Translate.LibreURL != "" {
		base.Translate.LibreURL = override.Translate.LibreURL
	}
	if override.Translate.LibreAPIKey != "" {
		base.Translate.LibreAPIKey = override.Translate.LibreAPIKey
	}

	if override.Taxonomy.Path != "" {
		base.Taxonomy.Path = override.Taxonomy.Path
	}

	if override.Highlights.Threshold > 0 {
		base.Highlights.Threshold = override.Highlights.Threshold
	}
	if override.Highlights.TopN > 0 {
		base.Highlights.TopN = override.Highlights.TopN
	}

	if override.Archive.DSN != "" {
		base.Archive.DSN = override.Archive.DSN
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Paths: PathsConfig{
			Sources: "runtime/atlas/config/sources.json",
			Cache:   "out/cache/fetch_cache.json",
			OutDir:  "out/atlas",
		},
		Fetch: FetchConfig{
			BatchSize:      5,
			TimeoutSeconds: 20,
			URLOverrides: map[string]string{
				"https://github.com/openai/openai/releases.atom": "https://github.com/openai/openai-python/releases.atom",
			},
		},
		Policy: PolicyConfig{
			PerSourceLimit: 20,
			PerCategoryCap: 60,
			GlobalCap:      240,
			SortBy:         "published_at_desc",
		},
		Translate: TranslateConfig{
			Enabled:        true,
			BatchSize:      5,
			BatchDelayMS:   200,
			TimeoutSeconds: 10,
			MyMemoryURL:    "https://api.mymemory.translated.net/get",
			LibreURL:       "https://libretranslate.com/translate",
		},
		Highlights: HighlightsConfig{Threshold: 7, TopN: 8},
	}
}

// defaultHTMLAllowlist applies when the sources document omits one.
var defaultHTMLAllowlist = []string{
	"openai.com",
	"anthropic.com",
	"deepmind.google",
	"github.com",
}

// LoadSources reads the JSON sources document. A missing or malformed
// document is the one fatal configuration error of a run.
func LoadSources(path string) (domain.SourcesDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SourcesDocument{}, fmt.Errorf("read sources %s: %w", path, err)
	}

	var doc domain.SourcesDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.SourcesDocument{}, fmt.Errorf("parse sources %s: %w", path, err)
	}

	if len(doc.HTMLDomainAllowlist) == 0 {
		doc.HTMLDomainAllowlist = append([]string(nil), defaultHTMLAllowlist...)
	}

	return doc, nil
}
