// Package artifacts owns the on-disk layout of a run directory. Every run
// writes the same set of JSON documents under out/<run_id>/; a later run
// reads them back to rehydrate the fetch cache.
package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/fetch"
	"github.com/bg1eym/atlas-data/internal/ports"
	"github.com/bg1eym/atlas-data/internal/relevance"
	"github.com/bg1eym/atlas-data/internal/render"
)

const (
	fetchSubdir = "atlas-fetch"
	civSubdir   = "civilization"
)

// Store reads and writes run artifacts under a base directory.
type Store struct {
	baseDir string
}

var _ ports.RunReader = (*Store)(nil)

// NewStore points the store at the run output root.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// RunDir returns the directory of one run.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// FetchBundle carries everything the fetch stage persists.
type FetchBundle struct {
	BySource        map[string][]domain.RawItem
	Items           []domain.NormalizedItem
	TotalNormalized int
	Coverage        []domain.CoverageReport
	Diagnostics     []domain.FetchDiagnostic
	GeneratedAt     time.Time
}

type sourcesRawDoc struct {
	RunID                string                      `json:"run_id"`
	ItemCount            int                         `json:"item_count"`
	ItemCountAfterPolicy int                         `json:"item_count_after_policy"`
	BySource             map[string][]domain.RawItem `json:"by_source"`
	Coverage             []domain.CoverageReport     `json:"coverage"`
}

type normalizedDoc struct {
	RunID     string                  `json:"run_id"`
	Items     []domain.NormalizedItem `json:"items"`
	ItemCount int                     `json:"item_count"`
}

type provenanceDoc struct {
	RunID                string                  `json:"run_id"`
	PipelineOutputSHA256 string                  `json:"pipeline_output_sha256"`
	RenderInputSHA256    string                  `json:"render_input_sha256"`
	Coverage             []domain.CoverageReport `json:"coverage"`
	Timestamp            string                  `json:"timestamp"`
}

type diagnosticsDoc struct {
	RunID           string            `json:"run_id"`
	PerSourceTimeMS map[string]int64  `json:"per_source_time_ms"`
	SkippedByCache  []string          `json:"skipped_by_cache"`
	AdapterUsed     map[string]string `json:"adapter_used"`
	ItemCount       map[string]int    `json:"item_count"`
}

type itemsCivDoc struct {
	RunID string                  `json:"run_id"`
	Items []domain.ClassifiedItem `json:"items"`
}

// WriteFetchBundle persists sources_raw.json, items_normalized.json,
// provenance.json, and fetch_diagnostics.json for the run.
func (s *Store) WriteFetchBundle(runID string, b FetchBundle) error {
	fetchDir := filepath.Join(s.RunDir(runID), fetchSubdir)

	rawDoc := sourcesRawDoc{
		RunID:                runID,
		ItemCount:            b.TotalNormalized,
		ItemCountAfterPolicy: len(b.Items),
		BySource:             b.BySource,
		Coverage:             b.Coverage,
	}
	rawJSON, err := marshalArtifact(rawDoc)
	if err != nil {
		return fmt.Errorf("marshal sources_raw: %w", err)
	}
	if err := writeFile(filepath.Join(fetchDir, "sources_raw.json"), rawJSON); err != nil {
		return err
	}

	normDoc := normalizedDoc{RunID: runID, Items: b.Items, ItemCount: len(b.Items)}
	normJSON, err := marshalArtifact(normDoc)
	if err != nil {
		return fmt.Errorf("marshal items_normalized: %w", err)
	}
	if err := writeFile(filepath.Join(fetchDir, "items_normalized.json"), normJSON); err != nil {
		return err
	}

	prov := provenanceDoc{
		RunID:                runID,
		PipelineOutputSHA256: sha256Hex(rawJSON),
		RenderInputSHA256:    sha256Hex(normJSON),
		Coverage:             b.Coverage,
		Timestamp:            b.GeneratedAt.UTC().Format(time.RFC3339),
	}
	if err := s.writeJSON(filepath.Join(fetchDir, "provenance.json"), prov); err != nil {
		return err
	}

	diag := diagnosticsDoc{
		RunID:           runID,
		PerSourceTimeMS: map[string]int64{},
		SkippedByCache:  []string{},
		AdapterUsed:     map[string]string{},
		ItemCount:       map[string]int{},
	}
	for _, d := range b.Diagnostics {
		diag.PerSourceTimeMS[d.SourceID] = d.PerSourceTimeMS
		diag.AdapterUsed[d.SourceID] = d.AdapterUsed
		diag.ItemCount[d.SourceID] = d.ItemCount
		if d.SkippedByCache {
			diag.SkippedByCache = append(diag.SkippedByCache, d.SourceID)
		}
	}
	return s.writeJSON(filepath.Join(s.RunDir(runID), "fetch_diagnostics.json"), diag)
}

// WriteCoverageStats persists coverage_stats.json.
func (s *Store) WriteCoverageStats(runID string, stats fetch.CoverageStats) error {
	return s.writeJSON(filepath.Join(s.RunDir(runID), "coverage_stats.json"), stats)
}

// WriteRelevanceReport persists relevance_report.json.
func (s *Store) WriteRelevanceReport(runID string, report relevance.Report) error {
	return s.writeJSON(filepath.Join(s.RunDir(runID), "relevance_report.json"), report)
}

// WriteCivilization persists the classification artifacts: items_civ.json,
// highlights.json, aggregates.json under civilization/, and
// classification_distribution.json at the run root.
func (s *Store) WriteCivilization(runID string, items []domain.ClassifiedItem, highlights render.HighlightsOutput, aggregates render.AggregatesOutput, distribution render.DistributionOutput) error {
	civDir := filepath.Join(s.RunDir(runID), civSubdir)

	if err := s.writeJSON(filepath.Join(civDir, "items_civ.json"), itemsCivDoc{RunID: runID, Items: items}); err != nil {
		return err
	}
	if err := s.writeJSON(filepath.Join(civDir, "highlights.json"), highlights); err != nil {
		return err
	}
	if err := s.writeJSON(filepath.Join(civDir, "aggregates.json"), aggregates); err != nil {
		return err
	}
	return s.writeJSON(filepath.Join(s.RunDir(runID), "classification_distribution.json"), distribution)
}

// ReadRaw returns the prior run's raw items for one source.
func (s *Store) ReadRaw(runID, sourceID string) ([]domain.RawItem, error) {
	path := filepath.Join(s.RunDir(runID), fetchSubdir, "sources_raw.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc sourcesRawDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.BySource[sourceID], nil
}

// ReadNormalized returns the prior run's normalized items.
func (s *Store) ReadNormalized(runID string) ([]domain.NormalizedItem, error) {
	path := filepath.Join(s.RunDir(runID), fetchSubdir, "items_normalized.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc normalizedDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Items, nil
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := marshalArtifact(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

func marshalArtifact(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
