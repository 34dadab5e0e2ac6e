package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"webwatch/internal/domain/entity"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool
	// WebhookURL is the Incoming Webhook URL; it embeds the token.
	WebhookURL string
	Timeout    time.Duration
}

// SlackNotifier posts mention alerts to a Slack Incoming Webhook using Block Kit.
type SlackNotifier struct {
	hook *webhook
}

// NewSlackNotifier limits delivery to 1 message per second (Slack webhook limit).
func NewSlackNotifier(cfg SlackConfig, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{hook: newWebhook("slack", cfg.WebhookURL, cfg.Timeout, 1, 1, logger)}
}

// SlackWebhookPayload is the JSON body sent to the webhook.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Block Kit block ("section" or "context").
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject is a Block Kit text object.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Block Kit limits.
const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
	snippetLength        = 500
)

func buildSlackPayload(rec *entity.Record, src *entity.Source) SlackWebhookPayload {
	fallback := truncate(fmt.Sprintf(":warning: Negative mention in %s: %s", src.Name, rec.Title), maxFallbackLength, "...")

	section := fmt.Sprintf("*<%s|%s>*\n\n%s", rec.URL, rec.Title, truncate(rec.Body, snippetLength, "..."))
	section = truncate(section, maxSectionTextLength, "...")

	meta := fmt.Sprintf("%s • sentiment %s (%.2f) • %s",
		src.Name, rec.Sentiment.Label, rec.Sentiment.Score, rec.ScrapedAt.Format(time.RFC3339))
	if len(rec.MatchedKeywords) > 0 {
		meta += " • keywords: " + strings.Join(rec.MatchedKeywords, ", ")
	}

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: meta}}},
		},
	}
}

// NotifyMention posts one alert for rec.
func (s *SlackNotifier) NotifyMention(ctx context.Context, rec *entity.Record, src *entity.Source) error {
	return s.hook.post(ctx, rec.ID, buildSlackPayload(rec, src))
}
