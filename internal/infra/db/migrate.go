package db

import (
	"context"
	"database/sql"
)

// MigrateUp creates the relational schema. Nested structures (selectors,
// crawl settings, statistics, lists, sentiment) live in jsonb columns.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS projects (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    keywords         JSONB NOT NULL DEFAULT '[]',
    exclude_keywords JSONB NOT NULL DEFAULT '[]',
    hashtags         JSONB NOT NULL DEFAULT '[]',
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sources (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL,
    url                     TEXT NOT NULL UNIQUE,
    type                    VARCHAR(20) NOT NULL DEFAULT 'website',
    category                TEXT NOT NULL DEFAULT '',
    project_id              TEXT,
    selectors               JSONB NOT NULL DEFAULT '{}',
    crawl_frequency_minutes INTEGER NOT NULL DEFAULT 60,
    keywords                JSONB NOT NULL DEFAULT '[]',
    exclude_keywords        JSONB NOT NULL DEFAULT '[]',
    hashtags                JSONB NOT NULL DEFAULT '[]',
    crawl_settings          JSONB NOT NULL DEFAULT '{}',
    is_active               BOOLEAN NOT NULL DEFAULT TRUE,
    last_crawled            TIMESTAMPTZ,
    next_crawl              TIMESTAMPTZ,
    crawl_in_progress       BOOLEAN NOT NULL DEFAULT FALSE,
    crawl_started_at        TIMESTAMPTZ,
    statistics              JSONB NOT NULL DEFAULT '{}',
    created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT chk_source_type CHECK (type IN ('news', 'blog', 'website', 'forum', 'rss'))
)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS records (
    id               TEXT PRIMARY KEY,
    source_id        TEXT NOT NULL REFERENCES sources(id),
    project_id       TEXT,
    category         TEXT NOT NULL DEFAULT '',
    title            TEXT NOT NULL,
    body             TEXT NOT NULL,
    author           TEXT NOT NULL DEFAULT '',
    published_at     TIMESTAMPTZ,
    url              TEXT NOT NULL,
    image_url        TEXT NOT NULL DEFAULT '',
    tags             JSONB NOT NULL DEFAULT '[]',
    internal_links   JSONB NOT NULL DEFAULT '[]',
    external_links   JSONB NOT NULL DEFAULT '[]',
    word_count       INTEGER NOT NULL,
    reading_time     INTEGER NOT NULL,
    content_hash     CHAR(64) NOT NULL UNIQUE,
    matched_keywords JSONB NOT NULL DEFAULT '[]',
    matched_hashtags JSONB NOT NULL DEFAULT '[]',
    sentiment        JSONB NOT NULL,
    engagement       JSONB NOT NULL DEFAULT '{}',
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    is_duplicate     BOOLEAN NOT NULL DEFAULT FALSE,
    scraped_at       TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	indexes := []string{
		// ListDue
		`CREATE INDEX IF NOT EXISTS idx_sources_due ON sources(next_crawl) WHERE is_active = TRUE`,
		`CREATE INDEX IF NOT EXISTS idx_records_url ON records(url)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source_scraped ON records(source_id, scraped_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_records_sentiment ON records((sentiment->>'label'))`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown drops the schema in reverse order of creation.
// Use with caution: this will delete all data.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS records`,
		`DROP TABLE IF EXISTS sources`,
		`DROP TABLE IF EXISTS projects`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
