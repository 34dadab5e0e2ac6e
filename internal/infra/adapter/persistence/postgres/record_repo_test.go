package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webwatch/internal/domain/entity"
	"webwatch/internal/infra/adapter/persistence/postgres"
)

var recordCols = []string{
	"id", "source_id", "project_id", "category", "title", "body", "author", "published_at", "url",
	"image_url", "tags", "internal_links", "external_links", "word_count", "reading_time", "content_hash",
	"matched_keywords", "matched_hashtags", "sentiment", "engagement", "is_active", "is_duplicate", "scraped_at",
}

func sampleRecord() *entity.Record {
	pub := t0.Add(-2 * time.Hour)
	return &entity.Record{
		ID:              "rec-1",
		SourceID:        "src-1",
		Title:           "Acme abre vagas",
		Body:            "A Acme anunciou novas vagas.",
		PublishedAt:     &pub,
		URL:             "https://folha.example.com/news/1",
		Tags:            []string{"#acme"},
		WordCount:       5,
		ReadingTime:     1,
		ContentHash:     entity.ContentHash("A Acme anunciou novas vagas."),
		MatchedKeywords: []string{"acme"},
		MatchedHashtags: []string{"#acme"},
		Sentiment:       entity.Sentiment{Label: entity.SentimentPositive, Score: 0.4, Confidence: 0.6},
		Engagement:      entity.Engagement{Likes: 2},
		IsActive:        true,
		ScrapedAt:       t0,
	}
}

func recordRow(t *testing.T, rows *sqlmock.Rows, r *entity.Record) *sqlmock.Rows {
	t.Helper()
	return rows.AddRow(
		r.ID, r.SourceID, nullable(r.ProjectID), r.Category, r.Title, r.Body, r.Author, ts(r.PublishedAt), r.URL,
		r.ImageURL, mustJSON(t, r.Tags), mustJSON(t, r.InternalLinks), mustJSON(t, r.ExternalLinks),
		r.WordCount, r.ReadingTime, r.ContentHash, mustJSON(t, r.MatchedKeywords), mustJSON(t, r.MatchedHashtags),
		mustJSON(t, r.Sentiment), mustJSON(t, r.Engagement), r.IsActive, r.IsDuplicate, r.ScrapedAt,
	)
}

func newRecordRepo(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, db
}

/* ──────────────────────────────── RecordRepo ──────────────────────────────── */

func TestRecordRepo_ExistsByHash(t *testing.T) {
	mock, db := newRecordRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := postgres.NewRecordRepo(db).ExistsByHash(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecordRepo_Create(t *testing.T) {
	mock, db := newRecordRepo(t)
	rec := sampleRecord()

	mock.ExpectExec(`INSERT INTO records`).
		WithArgs("rec-1", "src-1", nil, "", rec.Title, rec.Body, "", rec.PublishedAt, rec.URL, "",
			[]byte(`["#acme"]`), []byte(`[]`), []byte(`[]`), 5, 1, rec.ContentHash,
			[]byte(`["acme"]`), []byte(`["#acme"]`), sqlmock.AnyArg(), sqlmock.AnyArg(), true, false, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, postgres.NewRecordRepo(db).Create(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_Create_DuplicateHash(t *testing.T) {
	mock, db := newRecordRepo(t)
	mock.ExpectExec(`INSERT INTO records`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "records_content_hash_key"})

	err := postgres.NewRecordRepo(db).Create(context.Background(), sampleRecord())
	assert.ErrorIs(t, err, entity.ErrDuplicate)
}

func TestRecordRepo_Get(t *testing.T) {
	mock, db := newRecordRepo(t)
	want := sampleRecord()
	want.InternalLinks, want.ExternalLinks = []string{}, []string{}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM records WHERE id = $1`)).
		WithArgs("rec-1").
		WillReturnRows(recordRow(t, sqlmock.NewRows(recordCols), want))

	got, err := postgres.NewRecordRepo(db).Get(context.Background(), "rec-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordRepo_List_Filters(t *testing.T) {
	from := t0.Add(-24 * time.Hour)
	tests := []struct {
		name   string
		filter entity.RecordFilter
		sql    string
		args   []driver.Value
	}{
		{
			name:   "no filter uses default limit",
			filter: entity.RecordFilter{},
			sql:    `FROM records ORDER BY scraped_at DESC LIMIT $1 OFFSET $2`,
			args:   []driver.Value{postgres.DefaultListLimit, 0},
		},
		{
			name:   "source sentiment and from",
			filter: entity.RecordFilter{SourceID: "src-1", Sentiment: "negative", From: &from, Limit: 20, Offset: 40},
			sql:    `WHERE source_id = $1 AND sentiment->>'label' = $2 AND scraped_at >= $3 ORDER BY scraped_at DESC LIMIT $4 OFFSET $5`,
			args:   []driver.Value{"src-1", "negative", from, 20, 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, db := newRecordRepo(t)
			mock.ExpectQuery(regexp.QuoteMeta(tt.sql)).
				WithArgs(tt.args...).
				WillReturnRows(recordRow(t, sqlmock.NewRows(recordCols), sampleRecord()))

			got, err := postgres.NewRecordRepo(db).List(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, 1)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRecordRepo_UpdateEngagement(t *testing.T) {
	mock, db := newRecordRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE records SET engagement = $1 WHERE id = $2`)).
		WithArgs([]byte(`{"likes":3,"comments":1,"shares":0,"views":10}`), "rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE records SET engagement`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewRecordRepo(db)
	require.NoError(t, repo.UpdateEngagement(context.Background(), "rec-1", entity.Engagement{Likes: 3, Comments: 1, Views: 10}))
	assert.ErrorIs(t, repo.UpdateEngagement(context.Background(), "missing", entity.Engagement{}), entity.ErrNotFound)
}

/* ──────────────────────────────── ProjectRepo ──────────────────────────────── */

func TestProjectRepo_CreateAndGet(t *testing.T) {
	mock, db := newRecordRepo(t)
	p := &entity.Project{Name: "Acme", Keywords: []string{"acme"}, IsActive: true, CreatedAt: t0}

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), "Acme", []byte(`["acme"]`), []byte(`[]`), []byte(`[]`), true, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewProjectRepo(db)
	require.NoError(t, repo.Create(context.Background(), p))
	require.NotEmpty(t, p.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM projects WHERE id = $1`)).
		WithArgs(p.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "keywords", "exclude_keywords", "hashtags", "is_active", "created_at"}).
			AddRow(p.ID, "Acme", []byte(`["acme"]`), []byte(`[]`), []byte(`[]`), true, t0))

	got, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, got.Keywords)
	assert.Empty(t, got.ExcludeKeywords)
	require.NoError(t, mock.ExpectationsWereMet())
}
