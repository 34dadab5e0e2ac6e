package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"webwatch/internal/domain/entity"
)

// DefaultChunkSize is the number of texts sent per batch request.
const DefaultChunkSize = 10

// BatchOptions tunes AnalyzeBatch.
type BatchOptions struct {
	ChunkSize int
	// Pause is slept between chunks, never after the last one.
	Pause time.Duration
	// Sleep is injectable for tests. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// AnalyzeBatch classifies texts chunk by chunk. A failing chunk degrades every
// item in it to entity.NeutralSentiment and processing continues with the next
// chunk. The result is always index-aligned with texts.
func AnalyzeBatch(ctx context.Context, p BatchProvider, texts []string, opts BatchOptions) []entity.Sentiment {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	out := make([]entity.Sentiment, 0, len(texts))
	for start := 0; start < len(texts); start += opts.ChunkSize {
		end := min(start+opts.ChunkSize, len(texts))
		chunk := texts[start:end]

		if start > 0 && opts.Pause > 0 {
			if err := opts.Sleep(ctx, opts.Pause); err != nil {
				slog.Warn("batch sentiment interrupted", slog.Int("remaining", len(texts)-start), slog.Any("error", err))
				return appendNeutral(out, len(texts)-start)
			}
		}

		results, err := classifyChunk(ctx, p, chunk)
		if err != nil {
			slog.Warn("batch sentiment chunk degraded",
				slog.Int("chunk_start", start),
				slog.Int("chunk_size", len(chunk)),
				slog.Any("error", err))
			recordOutcome("batch", "degraded")
			out = appendNeutral(out, len(chunk))
			continue
		}
		out = append(out, results...)
	}
	return out
}

func classifyChunk(ctx context.Context, p BatchProvider, chunk []string) (results []entity.Sentiment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()

	results, err = p.ClassifyBatch(ctx, chunk)
	if err != nil {
		return nil, err
	}
	if len(results) != len(chunk) {
		return nil, fmt.Errorf("classifier returned %d results for %d texts", len(results), len(chunk))
	}
	for i, s := range results {
		if !Valid(s) {
			return nil, fmt.Errorf("invalid verdict at index %d: %+v", i, s)
		}
	}
	return results, nil
}

func appendNeutral(out []entity.Sentiment, n int) []entity.Sentiment {
	for range n {
		out = append(out, entity.NeutralSentiment())
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
