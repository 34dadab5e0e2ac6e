// Package notifier delivers mention alerts to chat webhooks (Slack, Discord).
//
// Every notifier implements crawl.Alerter. Delivery is rate limited per
// channel and retried once on transient failures; the crawl orchestrator
// bounds the whole call with its own timeout and only logs failures.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"webwatch/internal/domain/entity"
	"webwatch/internal/pkg/config"
	"webwatch/internal/usecase/crawl"
)

var (
	_ crawl.Alerter = (*SlackNotifier)(nil)
	_ crawl.Alerter = (*DiscordNotifier)(nil)
	_ crawl.Alerter = (*NoOpNotifier)(nil)
	_ crawl.Alerter = Multi(nil)
)

// Config groups the per-channel settings.
type Config struct {
	Slack   SlackConfig
	Discord DiscordConfig
}

// LoadConfigFromEnv reads SLACK_ENABLED, SLACK_WEBHOOK_URL, DISCORD_ENABLED,
// DISCORD_WEBHOOK_URL and NOTIFY_TIMEOUT (10s).
func LoadConfigFromEnv(logger *slog.Logger) Config {
	var l config.Loader
	timeout := config.Get(&l, "NOTIFY_TIMEOUT", config.LoadEnvDuration("NOTIFY_TIMEOUT", 10*time.Second, config.DurationRange(time.Second, time.Minute)))
	cfg := Config{
		Slack: SlackConfig{
			Enabled:    config.Get(&l, "SLACK_ENABLED", config.LoadEnvBool("SLACK_ENABLED", false)),
			WebhookURL: config.LoadEnvString("SLACK_WEBHOOK_URL", ""),
			Timeout:    timeout,
		},
		Discord: DiscordConfig{
			Enabled:    config.Get(&l, "DISCORD_ENABLED", config.LoadEnvBool("DISCORD_ENABLED", false)),
			WebhookURL: config.LoadEnvString("DISCORD_WEBHOOK_URL", ""),
			Timeout:    timeout,
		},
	}
	for _, w := range l.Warnings {
		logger.Warn("notifier configuration fallback", slog.String("warning", w))
	}
	return cfg
}

// New returns the alerter for every enabled channel that has a webhook URL.
// With no channel configured it returns a NoOpNotifier.
func New(cfg Config, logger *slog.Logger) crawl.Alerter {
	if logger == nil {
		logger = slog.Default()
	}
	var channels Multi
	if cfg.Slack.Enabled {
		if cfg.Slack.WebhookURL == "" {
			logger.Warn("SLACK_ENABLED is set without SLACK_WEBHOOK_URL, slack alerts disabled")
		} else {
			channels = append(channels, NewSlackNotifier(cfg.Slack, logger))
		}
	}
	if cfg.Discord.Enabled {
		if cfg.Discord.WebhookURL == "" {
			logger.Warn("DISCORD_ENABLED is set without DISCORD_WEBHOOK_URL, discord alerts disabled")
		} else {
			channels = append(channels, NewDiscordNotifier(cfg.Discord, logger))
		}
	}

	switch len(channels) {
	case 0:
		return NewNoOpNotifier()
	case 1:
		return channels[0]
	default:
		return channels
	}
}

// Multi fans a mention out to several channels. One failing channel does not
// stop the others; the errors are joined.
type Multi []crawl.Alerter

func (m Multi) NotifyMention(ctx context.Context, rec *entity.Record, src *entity.Source) error {
	var errs []error
	for _, a := range m {
		if err := a.NotifyMention(ctx, rec, src); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
