package crawl

import (
	"context"
	"fmt"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// DedupGate drops candidates whose body was already persisted.
// Only the body is hashed, so the same text under another title or URL is
// still a duplicate.
type DedupGate struct {
	Records repository.RecordRepository
}

// Check returns whether body is new along with its digest.
func (g DedupGate) Check(ctx context.Context, body string) (bool, string, error) {
	hash := entity.ContentHash(body)
	exists, err := g.Records.ExistsByHash(ctx, hash)
	if err != nil {
		return false, hash, fmt.Errorf("check content hash: %w", err)
	}
	return !exists, hash, nil
}
