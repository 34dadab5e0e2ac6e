package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// CreateInput represents the operator-controlled fields of a new source.
type CreateInput struct {
	Name                  string
	URL                   string
	Type                  string
	Category              string
	ProjectID             string
	Selectors             entity.Selectors
	CrawlFrequencyMinutes int
	Keywords              []string
	ExcludeKeywords       []string
	Hashtags              []string
	// CrawlSettings nil means all defaults, including respectRobots=true.
	CrawlSettings *entity.CrawlSettings
	// Active nil means true.
	Active *bool
}

// UpdateInput represents a partial update.
// Empty strings and nil pointers/slices are left unchanged.
type UpdateInput struct {
	ID                    string
	Name                  string
	URL                   string
	Type                  string
	Category              *string
	ProjectID             *string
	Selectors             *entity.Selectors
	CrawlFrequencyMinutes *int
	Keywords              []string
	ExcludeKeywords       []string
	Hashtags              []string
	CrawlSettings         *entity.CrawlSettings
	Active                *bool
}

// Service provides source management use cases.
type Service struct {
	Repo repository.SourceRepository
	// Projects is optional; when set, ProjectID references are checked.
	Projects repository.ProjectRepository
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List retrieves all sources, active or not.
func (s *Service) List(ctx context.Context) ([]*entity.Source, error) {
	sources, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Get returns ErrSourceNotFound when id is unknown.
func (s *Service) Get(ctx context.Context, id string) (*entity.Source, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &entity.ValidationError{Field: "id", Message: "is required"}
	}
	src, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, ErrSourceNotFound
	}
	return src, nil
}

// Create validates the input, applies crawl defaults and stores a new source.
// The new source is due immediately (NextCrawl unset).
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Source, error) {
	src := &entity.Source{
		Name:                  strings.TrimSpace(in.Name),
		URL:                   strings.TrimSpace(in.URL),
		Type:                  in.Type,
		Category:              in.Category,
		ProjectID:             in.ProjectID,
		Selectors:             in.Selectors,
		CrawlFrequencyMinutes: in.CrawlFrequencyMinutes,
		Keywords:              in.Keywords,
		ExcludeKeywords:       in.ExcludeKeywords,
		Hashtags:              in.Hashtags,
		IsActive:              true,
		CrawlSettings:         entity.CrawlSettings{RespectRobots: true},
	}
	if in.CrawlSettings != nil {
		src.CrawlSettings = *in.CrawlSettings
	}
	if in.Active != nil {
		src.IsActive = *in.Active
	}
	src.ApplyDefaults()

	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, src.ProjectID); err != nil {
		return nil, err
	}

	now := s.now()
	src.CreatedAt = now
	src.UpdatedAt = now

	if err := s.Repo.Create(ctx, src); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, ErrDuplicateSource
		}
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// Update applies a partial update to the operator configuration of a source.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Source, error) {
	src, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		src.Name = strings.TrimSpace(in.Name)
	}
	if in.URL != "" {
		src.URL = strings.TrimSpace(in.URL)
	}
	if in.Type != "" {
		src.Type = in.Type
	}
	if in.Category != nil {
		src.Category = *in.Category
	}
	if in.ProjectID != nil {
		src.ProjectID = *in.ProjectID
	}
	if in.Selectors != nil {
		src.Selectors = *in.Selectors
	}
	if in.CrawlFrequencyMinutes != nil {
		src.CrawlFrequencyMinutes = *in.CrawlFrequencyMinutes
	}
	if in.Keywords != nil {
		src.Keywords = in.Keywords
	}
	if in.ExcludeKeywords != nil {
		src.ExcludeKeywords = in.ExcludeKeywords
	}
	if in.Hashtags != nil {
		src.Hashtags = in.Hashtags
	}
	if in.CrawlSettings != nil {
		src.CrawlSettings = *in.CrawlSettings
	}
	if in.Active != nil {
		src.IsActive = *in.Active
	}
	src.ApplyDefaults()

	if err := src.Validate(); err != nil {
		return nil, err
	}
	if in.ProjectID != nil {
		if err := s.checkProject(ctx, src.ProjectID); err != nil {
			return nil, err
		}
	}
	src.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, src); err != nil {
		switch {
		case errors.Is(err, entity.ErrNotFound):
			return nil, ErrSourceNotFound
		case errors.Is(err, entity.ErrDuplicate):
			return nil, ErrDuplicateSource
		}
		return nil, fmt.Errorf("update source: %w", err)
	}
	return src, nil
}

// Deactivate soft-deletes a source. Its records stay in storage.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}
	if err := s.Repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrSourceNotFound
		}
		return fmt.Errorf("deactivate source: %w", err)
	}
	return nil
}

func (s *Service) checkProject(ctx context.Context, id string) error {
	if id == "" || s.Projects == nil {
		return nil
	}
	p, err := s.Projects.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return ErrProjectNotFound
	}
	return nil
}
