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

type ProjectRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewProjectRepo(db *sql.DB) repository.ProjectRepository {
	return &ProjectRepo{db: db, now: time.Now}
}

const projectColumns = `id, name, keywords, exclude_keywords, hashtags, is_active, created_at`

func scanProject(row rowScanner) (*entity.Project, error) {
	var (
		p                           entity.Project
		keywords, exclude, hashtags []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &keywords, &exclude, &hashtags, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(keywords, &p.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	if err := decodeJSON(exclude, &p.ExcludeKeywords); err != nil {
		return nil, fmt.Errorf("unmarshal exclude_keywords: %w", err)
	}
	if err := decodeJSON(hashtags, &p.Hashtags); err != nil {
		return nil, fmt.Errorf("unmarshal hashtags: %w", err)
	}
	return &p, nil
}

func (repo *ProjectRepo) Get(ctx context.Context, id string) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 LIMIT 1`
	p, err := scanProject(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

func (repo *ProjectRepo) List(ctx context.Context) ([]*entity.Project, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*entity.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (repo *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = repo.now().UTC()
	}
	keywords, err := jsonb(p.Keywords)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	exclude, err := jsonb(p.ExcludeKeywords)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	hashtags, err := jsonb(p.Hashtags)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	const query = `INSERT INTO projects (` + projectColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := repo.db.ExecContext(ctx, query,
		p.ID, p.Name, keywords, exclude, hashtags, p.IsActive, p.CreatedAt,
	); err != nil {
		return fmt.Errorf("Create: %w", translateError(err))
	}
	return nil
}
