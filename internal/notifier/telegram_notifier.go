package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

const (
	telegramTransport     = "telegram"
	telegramMaxTextLength = 4096
)

// TelegramNotifier sends messages to one chat through the Bot API.
type TelegramNotifier struct {
	bot                *bot.Bot
	chatID             string
	disableLinkPreview bool
	logger             zerolog.Logger
}

// NewTelegramNotifier creates a notifier for cfg.TelegramChatID. The token is
// not verified with getMe so a flaky API at startup cannot stop the watcher.
func NewTelegramNotifier(cfg config.NotificationConfig, httpClient *http.Client, logger zerolog.Logger) (*TelegramNotifier, error) {
	if !cfg.TelegramEnabled() {
		return nil, common.WrapError(common.ErrNotConfigured, "telegram notifier")
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(timeout, httpClient),
	}
	if cfg.TelegramAPIURL != "" {
		opts = append(opts, bot.WithServerURL(cfg.TelegramAPIURL))
	}

	b, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, common.WrapError(err, "failed to create telegram bot")
	}

	return &TelegramNotifier{
		bot:                b,
		chatID:             cfg.TelegramChatID,
		disableLinkPreview: cfg.DisableLinkPreview,
		logger:             logger.With().Str("component", "TelegramNotifier").Logger(),
	}, nil
}

func (tn *TelegramNotifier) Name() string { return telegramTransport }

// Notify sends text, truncated to the Bot API message limit.
func (tn *TelegramNotifier) Notify(ctx context.Context, text string) error {
	params := &bot.SendMessageParams{
		ChatID: tn.chatID,
		Text:   truncateText(text, telegramMaxTextLength),
	}
	if tn.disableLinkPreview {
		disabled := true
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}

	msg, err := tn.bot.SendMessage(ctx, params)
	if err != nil {
		tn.logger.Error().Err(err).Msg("Telegram notification failed")
		return common.NewNotifyError(telegramTransport, err)
	}

	tn.logger.Info().Int("message_id", msg.ID).Msg("Telegram notification sent")
	return nil
}
