// Package project manages the keyword groups that sources can share.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// ErrProjectNotFound indicates that the requested project was not found.
var ErrProjectNotFound = errors.New("project not found")

// ErrDuplicateProject is returned when the store rejects the project as a duplicate.
var ErrDuplicateProject = errors.New("project already exists")

// CreateInput holds the fields of a new project. Active nil means true.
type CreateInput struct {
	Name            string
	Keywords        []string
	ExcludeKeywords []string
	Hashtags        []string
	Active          *bool
}

type Service struct {
	Repo repository.ProjectRepository
	Now  func() time.Time
}

func (s *Service) List(ctx context.Context) ([]*entity.Project, error) {
	projects, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &entity.ValidationError{Field: "id", Message: "is required"}
	}
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// Create stores a new project. Blank keywords and hashtags are dropped.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Project, error) {
	p := &entity.Project{
		Name:            strings.TrimSpace(in.Name),
		Keywords:        compact(in.Keywords),
		ExcludeKeywords: compact(in.ExcludeKeywords),
		Hashtags:        compact(in.Hashtags),
		IsActive:        in.Active == nil || *in.Active,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Now()
	if s.Now != nil {
		p.CreatedAt = s.Now()
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, ErrDuplicateProject
		}
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func compact(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
