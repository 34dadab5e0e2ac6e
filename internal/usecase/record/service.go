// Package record provides read access to persisted mentions and the
// engagement refresh, the only mutation allowed after insert.
package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"webwatch/internal/domain/entity"
	"webwatch/internal/repository"
)

// MaxListLimit caps a single page of records.
const MaxListLimit = 500

// ErrRecordNotFound indicates that the requested record was not found.
var ErrRecordNotFound = errors.New("record not found")

var validLabels = map[string]bool{
	entity.SentimentPositive: true,
	entity.SentimentNegative: true,
	entity.SentimentNeutral:  true,
}

type Service struct {
	Repo repository.RecordRepository
}

// List validates the filter and returns matching records, newest first.
func (s *Service) List(ctx context.Context, f entity.RecordFilter) ([]*entity.Record, error) {
	if f.Sentiment != "" {
		f.Sentiment = strings.ToLower(f.Sentiment)
		if !validLabels[f.Sentiment] {
			return nil, &entity.ValidationError{Field: "sentiment", Message: "must be positive, negative or neutral"}
		}
	}
	if f.Limit < 0 || f.Limit > MaxListLimit {
		return nil, &entity.ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", MaxListLimit)}
	}
	if f.Offset < 0 {
		return nil, &entity.ValidationError{Field: "offset", Message: "must not be negative"}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, &entity.ValidationError{Field: "from", Message: "must not be after to"}
	}

	records, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &entity.ValidationError{Field: "id", Message: "is required"}
	}
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// UpdateEngagement replaces the engagement counters of a record.
func (s *Service) UpdateEngagement(ctx context.Context, id string, e entity.Engagement) error {
	if strings.TrimSpace(id) == "" {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}
	if e.Likes < 0 || e.Comments < 0 || e.Shares < 0 || e.Views < 0 {
		return &entity.ValidationError{Field: "engagement", Message: "counters must not be negative"}
	}
	if err := s.Repo.UpdateEngagement(ctx, id, e); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("update engagement: %w", err)
	}
	return nil
}
