// Package storage persists classified items into Postgres. The archive is
// optional: a nil handle turns every call into a no-op, and failures are
// reported to the caller but never abort a run.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/bg1eym/atlas-data/internal/domain"
	"github.com/bg1eym/atlas-data/internal/ports"
)

// PostgresArchive stores one row per classified item per run.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ItemArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres with the given DSN and pings it.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ArchivedRuns returns the run IDs already present for the given IDs.
func (a *PostgresArchive) ArchivedRuns(ctx context.Context, runIDs []string) (map[string]bool, error) {
	if a.db == nil || len(runIDs) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := a.builder.
		Select("DISTINCT run_id").
		From("classified_items").
		Where(sq.Expr("run_id = ANY(?)", pq.StringArray(runIDs))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archived runs: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		result[id] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveClassified upserts the classified snapshot of every item.
func (a *PostgresArchive) SaveClassified(ctx context.Context, runID string, items []domain.ClassifiedItem) error {
	if a.db == nil || len(items) == 0 {
		return nil
	}

	for _, it := range items {
		var radarCategory string
		var radarScore float64
		if len(it.RadarCategories) > 0 {
			radarCategory = it.RadarCategories[0].ID
			radarScore = it.RadarCategories[0].Score
		}

		query, args, err := a.builder.
			Insert("classified_items").
			Columns(
				"run_id", "item_id", "source_id", "source_name", "title", "url",
				"published_at", "summary", "summary_zh", "radar_category",
				"radar_score", "civ_primary_tag", "civ_secondary_tags",
				"civ_score", "score_total", "need_more_evidence", "rationale_en",
			).
			Values(
				runID, it.ID, it.SourceID, it.SourceName, it.Title, it.URL,
				it.PublishedAt, it.Summary, it.SummaryZH, radarCategory,
				radarScore, it.CivPrimaryTag, pq.StringArray(it.CivSecondaryTags),
				it.CivScore, it.ScoreTotal, it.NeedMoreEvidence, it.RationaleEN,
			).
			Suffix(`ON CONFLICT (run_id, item_id) DO UPDATE
              SET summary_zh = EXCLUDED.summary_zh,
                  radar_category = EXCLUDED.radar_category,
                  radar_score = EXCLUDED.radar_score,
                  civ_primary_tag = EXCLUDED.civ_primary_tag,
                  civ_secondary_tags = EXCLUDED.civ_secondary_tags,
                  civ_score = EXCLUDED.civ_score,
                  score_total = EXCLUDED.score_total,
                  need_more_evidence = EXCLUDED.need_more_evidence,
                  rationale_en = EXCLUDED.rationale_en,
                  updated_at = NOW()`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}

		if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.ID, err)
		}
	}

	return nil
}
