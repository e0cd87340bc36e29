package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/rs/zerolog"
)

const (
	discordTransport     = "discord"
	discordMaxTextLength = 2000
	discordUsername      = "stockwatch"
)

// DiscordMessagePayload represents the JSON payload sent to a Discord webhook.
type DiscordMessagePayload struct {
	Content  string `json:"content,omitempty"`
	Username string `json:"username,omitempty"`
}

// DiscordNotifier posts messages to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(cfg config.NotificationConfig, httpClient *http.Client, logger zerolog.Logger) *DiscordNotifier {
	moduleLogger := logger.With().Str("component", "DiscordNotifier").Logger()

	if httpClient == nil {
		timeout := cfg.Timeout()
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &DiscordNotifier{
		webhookURL: cfg.DiscordWebhookURL,
		httpClient: httpClient,
		logger:     moduleLogger,
	}
}

func (dn *DiscordNotifier) Name() string { return discordTransport }

// Notify posts text as the webhook message content.
func (dn *DiscordNotifier) Notify(ctx context.Context, text string) error {
	payload := DiscordMessagePayload{
		Content:  truncateText(text, discordMaxTextLength),
		Username: discordUsername,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return common.NewNotifyError(discordTransport, fmt.Errorf("failed to marshal discord payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dn.webhookURL, bytes.NewReader(payloadJSON))
	if err != nil {
		return common.NewNotifyError(discordTransport, fmt.Errorf("failed to create discord request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		dn.logger.Error().Err(err).Msg("Failed to send Discord notification")
		return common.NewNotifyError(discordTransport, common.NewNetworkError("discord webhook", "request failed", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		dn.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(respBody)).Msg("Discord notification failed")
		return common.NewNotifyError(discordTransport, fmt.Errorf("discord webhook returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	dn.logger.Info().Int("status_code", resp.StatusCode).Msg("Discord notification sent")
	return nil
}
