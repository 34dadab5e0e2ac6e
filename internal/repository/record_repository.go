package repository

import (
	"context"

	"webwatch/internal/domain/entity"
)

// RecordRepository stores persisted mentions.
// Create returns entity.ErrDuplicate when the content hash already exists.
type RecordRepository interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	Create(ctx context.Context, record *entity.Record) error
	Get(ctx context.Context, id string) (*entity.Record, error)
	List(ctx context.Context, filter entity.RecordFilter) ([]*entity.Record, error)
	// UpdateEngagement is the only mutation allowed after insert.
	UpdateEngagement(ctx context.Context, id string, engagement entity.Engagement) error
}
