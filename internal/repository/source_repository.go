package repository

import (
	"context"
	"time"

	"webwatch/internal/domain/entity"
)

// SourceRepository stores monitored sources.
// Get returns (nil, nil) when the source does not exist.
type SourceRepository interface {
	Get(ctx context.Context, id string) (*entity.Source, error)
	List(ctx context.Context) ([]*entity.Source, error)
	// ListDue returns active sources whose next crawl is unset or <= now, in storage order.
	ListDue(ctx context.Context, now time.Time) ([]*entity.Source, error)
	Create(ctx context.Context, source *entity.Source) error
	Update(ctx context.Context, source *entity.Source) error
	// Deactivate soft-deletes a source. Sources are never removed.
	Deactivate(ctx context.Context, id string) error
	// SaveCrawlState persists lastCrawled, nextCrawl and statistics only.
	SaveCrawlState(ctx context.Context, source *entity.Source) error
	// TryLockCrawl atomically marks the source as being crawled. It returns
	// false when another crawl holds a lock younger than staleAfter.
	TryLockCrawl(ctx context.Context, id string, now time.Time, staleAfter time.Duration) (bool, error)
	UnlockCrawl(ctx context.Context, id string) error
}
