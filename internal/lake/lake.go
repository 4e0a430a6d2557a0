// Package lake runs the SQL transforms between the data-lake stages.
//
// The engine is an embedded analytical SQL session pointed at the object
// store. Each transform is one COPY statement reading the previous stage's
// artifacts and writing the next stage's parquet file.
package lake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/fieldscope/portal/config"
	"github.com/fieldscope/portal/internal/objstore"
)

// Artifact names of the columnar stages
const (
	RawArtifact     = "checklist.parquet"
	CleanedArtifact = "checklist.parquet"
)

// Engine is one SQL session over the lake
type Engine struct {
	db    *sql.DB
	store *objstore.Store
}

// NewEngine opens an in-process SQL session and registers the object-store
// credentials with it.
func NewEngine(cfg config.ObjStore, store *objstore.Store) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQL engine: %w", err)
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	useSSL := "false"
	if cfg.UseSSL {
		useSSL = "true"
	}

	secret := fmt.Sprintf(`
	CREATE OR REPLACE SECRET lake_secret (
		TYPE S3,
		REGION '%s',
		KEY_ID '%s',
		SECRET '%s',
		ENDPOINT '%s',
		USE_SSL '%s',
		URL_STYLE 'path'
	);`, cfg.Region, cfg.AccessKey, cfg.SecretKey, endpoint, useSSL)

	if _, err := db.Exec(secret); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to register object store secret: %w", err)
	}

	return &Engine{
		db:    db,
		store: store,
	}, nil
}

// Close releases the SQL session
func (e *Engine) Close() error {
	return e.db.Close()
}

// TransformRaw copies the landing-stage CSV exports into one raw-stage
// parquet file, keeping the export's original column names.
func (e *Engine) TransformRaw(ctx context.Context) error {
	query := fmt.Sprintf(`
	COPY (
		SELECT
			"Código da avaliação",
			Unidade,
			Cidade,
			"Região/Grupo",
			"Nome do checklist",
			Autor,
			"Área",
			Item,
			Resposta,
			Imagens,
			"Data inicial",
			"Data final",
			"Data de sincronização",
			Resultado,
			"Comentários finais"
		FROM '%s'
	) TO '%s' (FORMAT 'parquet');`,
		e.store.LandingGlob(),
		e.store.S3Path(e.store.RawKey(RawArtifact)))

	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("raw transform failed: %w", err)
	}
	return nil
}

// TransformCleaned types and deduplicates the raw stage into the cleaned
// parquet file the BI tool and the report flow query. Re-running the lake
// flow for an overlapping date range is deduplicated here by the DISTINCT
// projection.
func (e *Engine) TransformCleaned(ctx context.Context) error {
	query := fmt.Sprintf(`
	COPY (
	WITH raw AS (
		SELECT
			"Código da avaliação" AS id,
			Unidade AS unit,
			Cidade AS city,
			"Região/Grupo" AS region,
			"Nome do checklist" AS checklist,
			Autor AS author,
			"Área" AS area,
			Item AS item,
			Resposta AS answer,
			Imagens AS images,
			"Data inicial" AS start_date,
			"Data final" AS end_date,
			"Data de sincronização" AS synced_at,
			Resultado AS result,
			"Comentários finais" AS final_comments
		FROM '%s'
	), cleaned AS (
		SELECT
			id,
			unit,
			COALESCE(city, 'Undefined') AS city,
			COALESCE(region, 'Undefined') AS region,
			checklist,
			author,
			area,
			item,
			answer,
			COALESCE(len(string_split(images, ' ')), 0) AS total_photos,
			date_diff('minutes', start_date, end_date) AS duration_minutes,
			CAST(REPLACE(result, ',', '.') AS DOUBLE) AS result,
			start_date,
			end_date,
			synced_at,
			final_comments
		FROM raw
	)
	SELECT DISTINCT id, unit, city, region, checklist, author, area, item, answer,
		total_photos, duration_minutes, result, start_date, end_date, synced_at, final_comments
	FROM cleaned
	) TO '%s' (FORMAT 'parquet');`,
		e.store.S3Path(e.store.RawKey(RawArtifact)),
		e.store.S3Path(e.store.CleanedKey(CleanedArtifact)))

	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cleaned transform failed: %w", err)
	}
	return nil
}

// FinalComments returns the distinct non-empty final comments for one
// company inside a date range, ordered by audit start.
func (e *Engine) FinalComments(ctx context.Context, company string, startDate, endDate time.Time) ([]string, error) {
	query := fmt.Sprintf(`
	SELECT DISTINCT final_comments
	FROM '%s'
	WHERE unit = ?
	  AND start_date >= ?
	  AND start_date < ?
	  AND final_comments IS NOT NULL
	  AND final_comments <> ''
	ORDER BY final_comments;`,
		e.store.S3Path(e.store.CleanedKey(CleanedArtifact)))

	rows, err := e.db.QueryContext(ctx, query, company, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("comments query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []string
	for rows.Next() {
		var comment string
		if err := rows.Scan(&comment); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
