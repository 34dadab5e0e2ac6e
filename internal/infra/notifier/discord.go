package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"webwatch/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// DiscordNotifier posts mention alerts as Discord embeds.
type DiscordNotifier struct {
	hook *webhook
}

// NewDiscordNotifier limits delivery to 30 requests per minute with a burst of 3.
func NewDiscordNotifier(cfg DiscordConfig, logger *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{hook: newWebhook("discord", cfg.WebhookURL, cfg.Timeout, 0.5, 3, logger)}
}

// DiscordWebhookPayload is the JSON body sent to the webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed is one embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

// DiscordEmbedField is an inline name/value pair.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter is the footer of an embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096

	// #ED4245
	discordRedColor = 15548997
)

func buildDiscordPayload(rec *entity.Record, src *entity.Source) DiscordWebhookPayload {
	fields := []DiscordEmbedField{
		{Name: "Sentiment", Value: fmt.Sprintf("%s (%.2f)", rec.Sentiment.Label, rec.Sentiment.Score), Inline: true},
	}
	if len(rec.MatchedKeywords) > 0 {
		fields = append(fields, DiscordEmbedField{Name: "Keywords", Value: strings.Join(rec.MatchedKeywords, ", "), Inline: true})
	}
	if len(rec.MatchedHashtags) > 0 {
		fields = append(fields, DiscordEmbedField{Name: "Hashtags", Value: strings.Join(rec.MatchedHashtags, " "), Inline: true})
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{{
		Title:       truncate(rec.Title, maxTitleLength, "..."),
		Description: truncate(rec.Body, maxDescriptionLength, "..."),
		URL:         rec.URL,
		Color:       discordRedColor,
		Fields:      fields,
		Footer:      DiscordEmbedFooter{Text: src.Name},
		Timestamp:   rec.ScrapedAt.Format(time.RFC3339),
	}}}
}

// NotifyMention posts one alert for rec.
func (d *DiscordNotifier) NotifyMention(ctx context.Context, rec *entity.Record, src *entity.Source) error {
	return d.hook.post(ctx, rec.ID, buildDiscordPayload(rec, src))
}
