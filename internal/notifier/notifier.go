// Package notifier delivers watcher messages to Telegram, a Discord webhook,
// or, when neither is configured, the log.
package notifier

import (
	"context"
	"net/http"

	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/rs/zerolog"
)

// Notifier delivers a text message to a fixed destination.
type Notifier interface {
	Notify(ctx context.Context, text string) error
	Name() string
}

// NewNotifier picks the transport from cfg: Telegram when both secrets are
// set, otherwise Discord when a webhook is set, otherwise the log.
func NewNotifier(cfg config.NotificationConfig, httpClient *http.Client, logger zerolog.Logger) (Notifier, error) {
	switch {
	case cfg.TelegramEnabled():
		n, err := NewTelegramNotifier(cfg, httpClient, logger)
		if err != nil {
			return nil, err
		}
		return n, nil
	case cfg.DiscordEnabled():
		return NewDiscordNotifier(cfg, httpClient, logger), nil
	default:
		logger.Warn().Msg("No notification transport configured, messages will be logged only")
		return NewLogNotifier(logger), nil
	}
}
