package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// Embed colors, decimal RGB as the Discord API expects.
const (
	colorGranted = 0x2ECC71
	colorDenied  = 0xE74C3C
	colorMember  = 0x3498DB
)

// =============================================================================
// Discord Implementation
// =============================================================================

// DiscordNotifier implements Notifier by posting webhook embeds.
type DiscordNotifier struct {
	client         *resty.Client
	defaultWebhook string
	logger         *slog.Logger
}

// NewDiscordNotifier creates a Discord webhook notifier.
//
// defaultWebhook is used when a universe has no webhook of its own; it may
// be empty.
func NewDiscordNotifier(defaultWebhook string, logger *slog.Logger) *DiscordNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second)

	return &DiscordNotifier{
		client:         client,
		defaultWebhook: defaultWebhook,
		logger:         logger,
	}
}

// Discord webhook payload types.
type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title     string         `json:"title"`
	Color     int            `json:"color"`
	Fields    []discordField `json:"fields,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// NotifyRoomAccess posts a room access embed.
func (n *DiscordNotifier) NotifyRoomAccess(ctx context.Context, webhookURL string, ev RoomAccessEvent) error {
	title := fmt.Sprintf("%s entered %s", ev.UserName, ev.RoomName)
	color := colorGranted
	if !ev.Granted {
		title = fmt.Sprintf("%s was refused from %s", ev.UserName, ev.RoomName)
		color = colorDenied
	}

	payload := discordPayload{
		Embeds: []discordEmbed{{
			Title: title,
			Color: color,
			Fields: []discordField{
				{Name: "Universe", Value: ev.UniverseName, Inline: true},
				{Name: "World", Value: ev.WorldName, Inline: true},
				{Name: "User", Value: ev.UserUUID, Inline: true},
			},
			Timestamp: ev.At.UTC().Format(time.RFC3339),
		}},
	}

	return n.post(ctx, webhookURL, payload)
}

// NotifyMemberJoined posts a membership embed.
func (n *DiscordNotifier) NotifyMemberJoined(ctx context.Context, webhookURL string, ev MemberEvent) error {
	payload := discordPayload{
		Embeds: []discordEmbed{{
			Title: fmt.Sprintf("%s joined %s", ev.Email, ev.UniverseName),
			Color: colorMember,
			Fields: []discordField{
				{Name: "Role", Value: ev.Role, Inline: true},
			},
			Timestamp: ev.At.UTC().Format(time.RFC3339),
		}},
	}

	return n.post(ctx, webhookURL, payload)
}

// post delivers the payload to the resolved webhook. Missing webhook is a
// silent no-op so universes can opt out of notifications.
func (n *DiscordNotifier) post(ctx context.Context, webhookURL string, payload discordPayload) error {
	url := webhookURL
	if url == "" {
		url = n.defaultWebhook
	}
	if url == "" {
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(url)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	// Discord answers 204 on success; 429 and 5xx are worth retrying at
	// the job layer, so they surface as errors.
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("discord webhook: status %d", resp.StatusCode())
	}

	n.logger.Debug("posted discord notification", "status", resp.StatusCode())
	return nil
}

// =============================================================================
// Nop Implementation
// =============================================================================

// NopNotifier discards every notification. Used in tests.
type NopNotifier struct{}

// NewNopNotifier creates a no-op notifier.
func NewNopNotifier() *NopNotifier { return &NopNotifier{} }

func (NopNotifier) NotifyRoomAccess(ctx context.Context, webhookURL string, ev RoomAccessEvent) error {
	return nil
}

func (NopNotifier) NotifyMemberJoined(ctx context.Context, webhookURL string, ev MemberEvent) error {
	return nil
}
