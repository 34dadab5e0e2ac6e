package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// DefaultListLimit caps record listings without an explicit limit.
const DefaultListLimit = 100

type RecordRepo struct{ db *sql.DB }

func NewRecordRepo(db *sql.DB) repository.RecordRepository {
	return &RecordRepo{db: db}
}

const recordColumns = `id, source_id, project_id, category, title, body, author, published_at, url,
image_url, tags, internal_links, external_links, word_count, reading_time, content_hash,
matched_keywords, matched_hashtags, sentiment, engagement, is_active, is_duplicate, scraped_at`

func scanRecord(row rowScanner) (*entity.Record, error) {
	var (
		rec                                  entity.Record
		projectID                            sql.NullString
		tags, internal, external, kws, htags []byte
		sentiment, engagement                []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.SourceID, &projectID, &rec.Category, &rec.Title, &rec.Body, &rec.Author,
		&rec.PublishedAt, &rec.URL, &rec.ImageURL, &tags, &internal, &external, &rec.WordCount,
		&rec.ReadingTime, &rec.ContentHash, &kws, &htags, &sentiment, &engagement,
		&rec.IsActive, &rec.IsDuplicate, &rec.ScrapedAt,
	); err != nil {
		return nil, err
	}
	rec.ProjectID = projectID.String

	for _, c := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"tags", tags, &rec.Tags},
		{"internal_links", internal, &rec.InternalLinks},
		{"external_links", external, &rec.ExternalLinks},
		{"matched_keywords", kws, &rec.MatchedKeywords},
		{"matched_hashtags", htags, &rec.MatchedHashtags},
		{"sentiment", sentiment, &rec.Sentiment},
		{"engagement", engagement, &rec.Engagement},
	} {
		if err := decodeJSON(c.raw, c.dst); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", c.name, err)
		}
	}
	return &rec, nil
}

func (repo *RecordRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM records WHERE content_hash = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, hash).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByHash: %w", err)
	}
	return exists, nil
}

func (repo *RecordRepo) Create(ctx context.Context, rec *entity.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	cols := make([]any, 0, 7)
	for _, c := range []struct {
		name string
		v    any
	}{
		{"tags", rec.Tags},
		{"internal_links", rec.InternalLinks},
		{"external_links", rec.ExternalLinks},
		{"matched_keywords", rec.MatchedKeywords},
		{"matched_hashtags", rec.MatchedHashtags},
		{"sentiment", rec.Sentiment},
		{"engagement", rec.Engagement},
	} {
		b, err := jsonb(c.v)
		if err != nil {
			return fmt.Errorf("Create: marshal %s: %w", c.name, err)
		}
		cols = append(cols, b)
	}

	const query = `
INSERT INTO records (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := repo.db.ExecContext(ctx, query,
		rec.ID, rec.SourceID, nullString(rec.ProjectID), rec.Category, rec.Title, rec.Body, rec.Author,
		rec.PublishedAt, rec.URL, rec.ImageURL, cols[0], cols[1], cols[2], rec.WordCount,
		rec.ReadingTime, rec.ContentHash, cols[3], cols[4], cols[5], cols[6],
		rec.IsActive, rec.IsDuplicate, rec.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", translateError(err))
	}
	return nil
}

func (repo *RecordRepo) Get(ctx context.Context, id string) (*entity.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1 LIMIT 1`
	rec, err := scanRecord(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return rec, nil
}

// List returns records newest first.
func (repo *RecordRepo) List(ctx context.Context, f entity.RecordFilter) ([]*entity.Record, error) {
	where, args := buildRecordWhere(f)
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM records%s ORDER BY scraped_at DESC LIMIT $%d OFFSET $%d`,
		recordColumns, where, len(args)-1, len(args))

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*entity.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// buildRecordWhere turns the non-zero filter fields into a WHERE clause with
// positional parameters starting at $1.
func buildRecordWhere(f entity.RecordFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.SourceID != "" {
		add("source_id = $%d", f.SourceID)
	}
	if f.ProjectID != "" {
		add("project_id = $%d", f.ProjectID)
	}
	if f.Sentiment != "" {
		add("sentiment->>'label' = $%d", f.Sentiment)
	}
	if f.From != nil {
		add("scraped_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("scraped_at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo *RecordRepo) UpdateEngagement(ctx context.Context, id string, e entity.Engagement) error {
	b, err := jsonb(e)
	if err != nil {
		return fmt.Errorf("UpdateEngagement: %w", err)
	}
	res, err := repo.db.ExecContext(ctx, `UPDATE records SET engagement = $1 WHERE id = $2`, b, id)
	if err != nil {
		return fmt.Errorf("UpdateEngagement: %w", err)
	}
	return requireRow("UpdateEngagement", res)
}
