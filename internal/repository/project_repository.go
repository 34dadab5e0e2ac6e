package repository

import (
	"context"

	"webwatch/internal/domain/entity"
)

type ProjectRepository interface {
	Get(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
	Create(ctx context.Context, project *entity.Project) error
}
