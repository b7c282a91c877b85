package remediate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ppiankov/answermirror/internal/cache"
)

const colorWarn = 0xffff00

// maxEmbedField is Discord's limit for an embed field value
const maxEmbedField = 1024

// DiscordRemediator posts vanished-answer reports to a Discord webhook
type DiscordRemediator struct {
	session *discordgo.Session
	id      string
	token   string
	seen    cache.Seen
	now     func() time.Time
}

// NewDiscordRemediator creates a remediator for a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>
func NewDiscordRemediator(webhookURL string, ttl time.Duration) (*DiscordRemediator, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return &DiscordRemediator{
		session: s,
		id:      id,
		token:   token,
		seen:    cache.NewMemorySeen(ttl, cache.DefaultCleanup),
		now:     time.Now,
	}, nil
}

// Report sends one embed per new vanished-answer report
func (d *DiscordRemediator) Report(ctx context.Context, v Vanished) error {
	if len(v.AnswerIDs) == 0 {
		return nil
	}
	key := cache.VanishedKey(v.ThreadID, v.AnswerIDs)
	if !d.seen.Mark(key) {
		return nil
	}

	title := v.ThreadTitle
	if title == "" {
		title = v.ThreadID
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Mirrored answers vanished",
		Color:     colorWarn,
		Timestamp: d.now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Thread", Value: title, Inline: true},
			{Name: "Destination", Value: orNone(v.DestinationID), Inline: true},
			{Name: "Answers", Value: fieldValue(strings.Join(v.AnswerIDs, ", "))},
		},
	}

	_, err := d.session.WebhookExecute(d.id, d.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		// Allow the next cycle to try again
		d.seen.Forget(key)
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	if raw == "" {
		return "", "", errors.New("discord webhook url is not set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse discord webhook url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", errors.New("invalid discord webhook url: expected /api/webhooks/<id>/<token>")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func fieldValue(s string) string {
	if len(s) <= maxEmbedField {
		return s
	}
	return s[:maxEmbedField-3] + "..."
}
