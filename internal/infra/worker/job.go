package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"webwatch/internal/usecase/crawl"
)

// BatchRunner runs one pass over the due sources.
type BatchRunner interface {
	RunDueSources(ctx context.Context) (*crawl.BatchResult, error)
}

// BatchJob adapts a BatchRunner to cron.Job. Each run gets its own timeout
// derived from the process context, so shutdown cancels an in-flight batch.
type BatchJob struct {
	ctx     context.Context
	runner  BatchRunner
	timeout time.Duration
	metrics *WorkerMetrics
	logger  *slog.Logger
	running atomic.Bool
}

func NewBatchJob(ctx context.Context, runner BatchRunner, timeout time.Duration, metrics *WorkerMetrics, logger *slog.Logger) *BatchJob {
	return &BatchJob{ctx: ctx, runner: runner, timeout: timeout, metrics: metrics, logger: logger}
}

// Run implements cron.Job.
func (j *BatchJob) Run() {
	j.running.Store(true)
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(j.ctx, j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("batch job started")
	res, err := j.runner.RunDueSources(ctx)
	elapsed := time.Since(start)
	j.metrics.RecordJobDuration(elapsed.Seconds())

	switch {
	case err != nil:
		j.metrics.RecordJobRun("failure")
		j.logger.Error("batch job failed", slog.Any("error", err), slog.Duration("duration", elapsed))
		return
	case res.Failed > 0:
		j.metrics.RecordJobRun("partial")
	default:
		j.metrics.RecordJobRun("success")
		j.metrics.RecordLastSuccess()
	}
	j.metrics.RecordSources(res.Succeeded, res.Failed)
	j.logger.Info("batch job finished",
		slog.Int("succeeded", res.Succeeded),
		slog.Int("failed", res.Failed),
		slog.Int("persisted", res.TotalArticles),
		slog.Duration("duration", elapsed))
}

// Running reports whether a batch is currently in flight.
func (j *BatchJob) Running() bool { return j.running.Load() }

// NewCron builds the scheduler for cfg with overlapping ticks skipped.
func NewCron(cfg WorkerConfig, job *BatchJob, logger *slog.Logger) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(
			cron.Recover(cronLogger{logger}),
			skipIfRunning(job, logger),
		),
	)
	if _, err := c.AddJob(cfg.CronSchedule, job); err != nil {
		return nil, err
	}
	return c, nil
}

// skipIfRunning mirrors cron.SkipIfStillRunning but also counts the skipped ticks.
func skipIfRunning(job *BatchJob, logger *slog.Logger) cron.JobWrapper {
	skip := cron.SkipIfStillRunning(cronLogger{logger})
	return func(j cron.Job) cron.Job {
		wrapped := skip(j)
		return cron.FuncJob(func() {
			if job.Running() {
				job.metrics.RecordSkipped()
			}
			wrapped.Run()
		})
	}
}

// cronLogger bridges cron.Logger onto slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
