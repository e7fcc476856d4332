package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"umico-analytics/models"
)

// PostgresStore persists cleaned snapshots and ingest run records to
// PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id                     BIGINT PRIMARY KEY,
			name                   TEXT          NOT NULL DEFAULT '',
			brand                  TEXT          NOT NULL DEFAULT '',
			category_id            BIGINT        NOT NULL DEFAULT 0,
			category_name          TEXT          NOT NULL DEFAULT '',
			category_en            TEXT          NOT NULL DEFAULT '',
			status                 TEXT          NOT NULL DEFAULT '',
			retail_price           NUMERIC(12,2) NOT NULL DEFAULT 0,
			old_price              NUMERIC(12,2) NOT NULL DEFAULT 0,
			discount_pct           NUMERIC(5,1)  NOT NULL DEFAULT 0,
			seller_name            TEXT          NOT NULL DEFAULT '',
			seller_rating          NUMERIC(5,1)  NOT NULL DEFAULT 0,
			rating_value           NUMERIC(3,1)  NOT NULL DEFAULT 0,
			review_count           INTEGER       NOT NULL DEFAULT 0,
			in_stock               BOOLEAN       NOT NULL DEFAULT FALSE,
			installment_enabled    BOOLEAN       NOT NULL DEFAULT FALSE,
			max_installment_months INTEGER       NOT NULL DEFAULT 0,
			image_url              TEXT          NOT NULL DEFAULT '',
			product_url            TEXT          NOT NULL DEFAULT '',
			fetched_at             TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_category_en ON listings(category_en);
		CREATE INDEX IF NOT EXISTS idx_listings_seller      ON listings(seller_name);
		CREATE INDEX IF NOT EXISTS idx_listings_price       ON listings(retail_price);
		CREATE INDEX IF NOT EXISTS idx_listings_discount    ON listings(discount_pct);

		CREATE TABLE IF NOT EXISTS ingest_runs (
			run_id           UUID        PRIMARY KEY,
			base_url         TEXT        NOT NULL,
			category_id      BIGINT      NOT NULL,
			total_advertised INTEGER     NOT NULL DEFAULT 0,
			pages_total      INTEGER     NOT NULL DEFAULT 0,
			pages_failed     INTEGER     NOT NULL DEFAULT 0,
			products_parsed  INTEGER     NOT NULL DEFAULT 0,
			products_clean   INTEGER     NOT NULL DEFAULT 0,
			products_dropped INTEGER     NOT NULL DEFAULT 0,
			started_at       TIMESTAMPTZ NOT NULL,
			finished_at      TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

// Clear deletes all stored listings.
func (ps *PostgresStore) Clear(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, "DELETE FROM listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the full cleaned snapshot, clearing old data first.
func (ps *PostgresStore) Write(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := ps.Clear(ctx); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := ps.insertBatch(ctx, listings[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

func (ps *PostgresStore) insertBatch(ctx context.Context, batch []*models.Listing) error {
	_, err := ps.db.NamedExecContext(ctx, `
		INSERT INTO listings (
			id, name, brand, category_id, category_name, category_en, status,
			retail_price, old_price, discount_pct, seller_name, seller_rating,
			rating_value, review_count, in_stock, installment_enabled,
			max_installment_months, image_url, product_url, fetched_at
		) VALUES (
			:id, :name, :brand, :category_id, :category_name, :category_en, :status,
			:retail_price, :old_price, :discount_pct, :seller_name, :seller_rating,
			:rating_value, :review_count, :in_stock, :installment_enabled,
			:max_installment_months, :image_url, :product_url, :fetched_at
		)
		ON CONFLICT (id) DO NOTHING
	`, batch)
	return err
}

// FetchAll retrieves the stored snapshot in product-ID order.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := ps.db.SelectContext(ctx, &listings, `
		SELECT id, name, brand, category_id, category_name, category_en, status,
		       retail_price, old_price, discount_pct, seller_name, seller_rating,
		       rating_value, review_count, in_stock, installment_enabled,
		       max_installment_months, image_url, product_url, fetched_at
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	return listings, nil
}

// RecordRun stores the provenance record of a completed ingest run.
func (ps *PostgresStore) RecordRun(ctx context.Context, run *models.IngestRun) error {
	_, err := ps.db.NamedExecContext(ctx, `
		INSERT INTO ingest_runs (
			run_id, base_url, category_id, total_advertised, pages_total,
			pages_failed, products_parsed, products_clean, products_dropped,
			started_at, finished_at
		) VALUES (
			:run_id, :base_url, :category_id, :total_advertised, :pages_total,
			:pages_failed, :products_parsed, :products_clean, :products_dropped,
			:started_at, :finished_at
		)
	`, run)
	if err != nil {
		return fmt.Errorf("postgres: record run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently finished ingest run, or nil when
// no run has been recorded yet.
func (ps *PostgresStore) LatestRun(ctx context.Context) (*models.IngestRun, error) {
	var run models.IngestRun
	err := ps.db.GetContext(ctx, &run, `
		SELECT run_id, base_url, category_id, total_advertised, pages_total,
		       pages_failed, products_parsed, products_clean, products_dropped,
		       started_at, finished_at
		FROM ingest_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: latest run: %w", err)
	}
	return &run, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
