// Package worker holds the runtime plumbing of the scheduler process:
// configuration, cron job wrapper, job metrics and the health server.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"webwatch/internal/pkg/config"
)

// WorkerConfig controls when the batch runs and where the worker listens.
type WorkerConfig struct {
	// CronSchedule is a 5-field cron expression for the batch tick.
	CronSchedule string
	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string
	// BatchTimeout bounds one Batch Scheduler run.
	BatchTimeout time.Duration
	HealthPort   int
	MetricsPort  int
}

// DefaultConfig checks for due sources every five minutes.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "*/5 * * * *",
		Timezone:     "UTC",
		BatchTimeout: 30 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// Validate collects every invalid field into one error.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.BatchTimeout); err != nil {
		errs = append(errs, fmt.Errorf("batch timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, errors.New("health and metrics ports must differ"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv never fails: invalid values fall back to the defaults,
// are logged and counted on metrics.
//
// Environment variables:
//   - CRON_SCHEDULE (*/5 * * * *), WORKER_TIMEZONE (UTC), BATCH_TIMEOUT (30m, 1m-4h)
//   - WORKER_HEALTH_PORT (9091), WORKER_METRICS_PORT (9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) WorkerConfig {
	d := DefaultConfig()
	l := config.Loader{}
	if metrics != nil {
		l.Metrics = metrics.ConfigMetrics
	}
	port := config.IntRange(1024, 65535)

	cfg := WorkerConfig{
		CronSchedule: config.Get(&l, "CRON_SCHEDULE", config.LoadEnvWithFallback("CRON_SCHEDULE", d.CronSchedule, config.ValidateCronSchedule)),
		Timezone:     config.Get(&l, "WORKER_TIMEZONE", config.LoadEnvWithFallback("WORKER_TIMEZONE", d.Timezone, config.ValidateTimezone)),
		BatchTimeout: config.Get(&l, "BATCH_TIMEOUT", config.LoadEnvDuration("BATCH_TIMEOUT", d.BatchTimeout, config.DurationRange(time.Minute, 4*time.Hour))),
		HealthPort:   config.Get(&l, "WORKER_HEALTH_PORT", config.LoadEnvInt("WORKER_HEALTH_PORT", d.HealthPort, port)),
		MetricsPort:  config.Get(&l, "WORKER_METRICS_PORT", config.LoadEnvInt("WORKER_METRICS_PORT", d.MetricsPort, port)),
	}
	l.Done()

	for _, w := range l.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}
	return cfg
}
