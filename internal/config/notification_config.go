package config

import "time"

// NotificationConfig holds the alert transport secrets. When neither
// Telegram nor Discord is configured, messages are written to the log.
type NotificationConfig struct {
	TelegramBotToken   string `json:"telegram_bot_token,omitempty" yaml:"telegram_bot_token,omitempty"`
	TelegramChatID     string `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id,omitempty"`
	TelegramAPIURL     string `json:"telegram_api_url,omitempty" yaml:"telegram_api_url,omitempty" validate:"omitempty,url"`
	DiscordWebhookURL  string `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	TimeoutSecs        int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	DisableLinkPreview bool   `json:"disable_link_preview" yaml:"disable_link_preview"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		TimeoutSecs: 15,
	}
}

func (n NotificationConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSecs) * time.Second
}

// TelegramEnabled reports whether both Telegram secrets are present.
func (n NotificationConfig) TelegramEnabled() bool {
	return n.TelegramBotToken != "" && n.TelegramChatID != ""
}

// DiscordEnabled reports whether a Discord webhook is configured.
func (n NotificationConfig) DiscordEnabled() bool {
	return n.DiscordWebhookURL != ""
}
