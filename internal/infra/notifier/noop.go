package notifier

import (
	"context"

	"webwatch/internal/domain/entity"
)

// NoOpNotifier is used when no alert channel is configured.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) NotifyMention(context.Context, *entity.Record, *entity.Source) error {
	return nil
}
