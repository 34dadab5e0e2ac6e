package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

type SourceRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db, now: time.Now}
}

const sourceColumns = `id, name, url, type, category, project_id, selectors, crawl_frequency_minutes,
keywords, exclude_keywords, hashtags, crawl_settings, is_active, last_crawled, next_crawl,
crawl_in_progress, crawl_started_at, statistics, created_at, updated_at`

// scanSource scans one row selected with sourceColumns, decoding the jsonb columns.
func scanSource(row rowScanner) (*entity.Source, error) {
	var (
		src                          entity.Source
		projectID                    sql.NullString
		selectors, keywords, exclude []byte
		hashtags, settings, stats    []byte
	)
	if err := row.Scan(
		&src.ID, &src.Name, &src.URL, &src.Type, &src.Category, &projectID, &selectors,
		&src.CrawlFrequencyMinutes, &keywords, &exclude, &hashtags, &settings, &src.IsActive,
		&src.LastCrawled, &src.NextCrawl, &src.CrawlInProgress, &src.CrawlStartedAt, &stats,
		&src.CreatedAt, &src.UpdatedAt,
	); err != nil {
		return nil, err
	}
	src.ProjectID = projectID.String

	for _, c := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"selectors", selectors, &src.Selectors},
		{"keywords", keywords, &src.Keywords},
		{"exclude_keywords", exclude, &src.ExcludeKeywords},
		{"hashtags", hashtags, &src.Hashtags},
		{"crawl_settings", settings, &src.CrawlSettings},
		{"statistics", stats, &src.Statistics},
	} {
		if err := decodeJSON(c.raw, c.dst); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", c.name, err)
		}
	}
	return &src, nil
}

func (repo *SourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE id = $1 LIMIT 1`
	src, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return src, nil
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources ORDER BY created_at ASC`
	sources, err := repo.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return sources, nil
}

func (repo *SourceRepo) ListDue(ctx context.Context, now time.Time) ([]*entity.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources
WHERE is_active = TRUE
AND (next_crawl IS NULL OR next_crawl <= $1)
ORDER BY created_at ASC`
	sources, err := repo.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	return sources, nil
}

func (repo *SourceRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Source, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	sources := make([]*entity.Source, 0, 50)
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// configArgs marshals the operator-owned columns shared by Create and Update.
func configArgs(src *entity.Source) ([]any, error) {
	values := []struct {
		name string
		v    any
	}{
		{"selectors", src.Selectors},
		{"keywords", src.Keywords},
		{"exclude_keywords", src.ExcludeKeywords},
		{"hashtags", src.Hashtags},
		{"crawl_settings", src.CrawlSettings},
	}
	out := make([]any, 0, len(values))
	for _, c := range values {
		b, err := jsonb(c.v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", c.name, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (repo *SourceRepo) Create(ctx context.Context, src *entity.Source) error {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	if src.CreatedAt.IsZero() {
		src.CreatedAt = repo.now().UTC()
	}
	if src.UpdatedAt.IsZero() {
		src.UpdatedAt = src.CreatedAt
	}
	cfg, err := configArgs(src)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	stats, err := jsonb(src.Statistics)
	if err != nil {
		return fmt.Errorf("Create: marshal statistics: %w", err)
	}

	const query = `
INSERT INTO sources (id, name, url, type, category, project_id, selectors, crawl_frequency_minutes,
    keywords, exclude_keywords, hashtags, crawl_settings, is_active, statistics, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = repo.db.ExecContext(ctx, query,
		src.ID, src.Name, src.URL, src.Type, src.Category, nullString(src.ProjectID), cfg[0],
		src.CrawlFrequencyMinutes, cfg[1], cfg[2], cfg[3], cfg[4], src.IsActive, stats,
		src.CreatedAt, src.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", translateError(err))
	}
	return nil
}

// Update rewrites operator configuration. Crawl state and the lock are left alone.
func (repo *SourceRepo) Update(ctx context.Context, src *entity.Source) error {
	src.UpdatedAt = repo.now().UTC()
	cfg, err := configArgs(src)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	const query = `
UPDATE sources SET
       name                    = $1,
       url                     = $2,
       type                    = $3,
       category                = $4,
       project_id              = $5,
       selectors               = $6,
       crawl_frequency_minutes = $7,
       keywords                = $8,
       exclude_keywords        = $9,
       hashtags                = $10,
       crawl_settings          = $11,
       is_active               = $12,
       updated_at              = $13
WHERE id = $14`
	res, err := repo.db.ExecContext(ctx, query,
		src.Name, src.URL, src.Type, src.Category, nullString(src.ProjectID), cfg[0],
		src.CrawlFrequencyMinutes, cfg[1], cfg[2], cfg[3], cfg[4], src.IsActive, src.UpdatedAt, src.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", translateError(err))
	}
	return requireRow("Update", res)
}

func (repo *SourceRepo) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE sources SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, repo.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	return requireRow("Deactivate", res)
}

func (repo *SourceRepo) SaveCrawlState(ctx context.Context, src *entity.Source) error {
	stats, err := jsonb(src.Statistics)
	if err != nil {
		return fmt.Errorf("SaveCrawlState: marshal statistics: %w", err)
	}
	const query = `
UPDATE sources SET last_crawled = $1, next_crawl = $2, statistics = $3, updated_at = $4
WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query, src.LastCrawled, src.NextCrawl, stats, src.UpdatedAt, src.ID)
	if err != nil {
		return fmt.Errorf("SaveCrawlState: %w", err)
	}
	return requireRow("SaveCrawlState", res)
}

func (repo *SourceRepo) TryLockCrawl(ctx context.Context, id string, now time.Time, staleAfter time.Duration) (bool, error) {
	const query = `
UPDATE sources SET crawl_in_progress = TRUE, crawl_started_at = $1
WHERE id = $2
AND (crawl_in_progress = FALSE OR crawl_started_at < $3)`
	res, err := repo.db.ExecContext(ctx, query, now, id, now.Add(-staleAfter))
	if err != nil {
		return false, fmt.Errorf("TryLockCrawl: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("TryLockCrawl: %w", err)
	}
	return n == 1, nil
}

func (repo *SourceRepo) UnlockCrawl(ctx context.Context, id string) error {
	const query = `UPDATE sources SET crawl_in_progress = FALSE, crawl_started_at = NULL WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("UnlockCrawl: %w", err)
	}
	return nil
}

func requireRow(op string, res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return nil
}
