package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnvOverrides.
const (
	EnvTargetURL         = "TARGET_URL"
	EnvSignalMode        = "SIGNAL_MODE"
	EnvAlertPolicy       = "ALERT_POLICY"
	EnvPollBaseSeconds   = "POLL_BASE_SECONDS"
	EnvPollJitterSeconds = "POLL_JITTER_SECONDS"
	EnvPollMinSeconds    = "POLL_MIN_SECONDS"
	EnvInitialDelay      = "INITIAL_DELAY_SECONDS"
	EnvNotifyOnStartup   = "NOTIFY_ON_STARTUP"
	EnvNotifyOnError     = "NOTIFY_ON_ERROR"
	EnvPort              = "PORT"
	EnvTelegramBotToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID    = "TELEGRAM_CHAT_ID"
	EnvDiscordWebhookURL = "DISCORD_WEBHOOK_URL"
	EnvStateBackend      = "STATE_BACKEND"
	EnvStateFile         = "STATE_FILE"
	EnvSQLitePath        = "SQLITE_PATH"
	EnvMetricsAddr       = "METRICS_ADDR"
	EnvChromePath        = "CHROME_PATH"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogFormat         = "LOG_FORMAT"
	EnvLogFile           = "LOG_FILE"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return common.WrapError(err, "failed to load env file")
	}
	return nil
}

// ApplyEnvOverrides copies recognised environment variables onto cfg.
// Unset or empty variables leave the current value in place.
func ApplyEnvOverrides(cfg *GlobalConfig, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	setString := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	var errs []error
	setInt := func(key string, dst *int) {
		v, ok := get(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, common.NewValidationError(key, v, "must be an integer"))
			return
		}
		*dst = n
	}
	setBool := func(key string, dst *bool) {
		v, ok := get(key)
		if !ok {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, common.NewValidationError(key, v, "must be a boolean"))
			return
		}
		*dst = b
	}

	w := &cfg.WatchConfig
	setString(EnvTargetURL, &w.TargetURL)
	setString(EnvSignalMode, &w.SignalMode)
	setString(EnvAlertPolicy, &w.AlertPolicy)
	setInt(EnvPollBaseSeconds, &w.BaseIntervalSeconds)
	setInt(EnvPollJitterSeconds, &w.JitterSeconds)
	setInt(EnvPollMinSeconds, &w.MinIntervalSeconds)
	setInt(EnvInitialDelay, &w.InitialDelaySeconds)
	setBool(EnvNotifyOnStartup, &w.NotifyOnStartup)
	setBool(EnvNotifyOnError, &w.NotifyOnError)

	if port, ok := get(EnvPort); ok {
		if strings.Contains(port, ":") {
			cfg.LivenessConfig.ListenAddr = port
		} else {
			cfg.LivenessConfig.ListenAddr = ":" + port
		}
	}
	if addr, ok := get(EnvMetricsAddr); ok {
		cfg.MetricsConfig.ListenAddr = addr
		cfg.MetricsConfig.Enabled = true
	}

	n := &cfg.NotificationConfig
	setString(EnvTelegramBotToken, &n.TelegramBotToken)
	setString(EnvTelegramChatID, &n.TelegramChatID)
	setString(EnvDiscordWebhookURL, &n.DiscordWebhookURL)

	s := &cfg.StorageConfig
	setString(EnvStateBackend, &s.Backend)
	setString(EnvStateFile, &s.StateFile)
	setString(EnvSQLitePath, &s.SQLitePath)

	setString(EnvChromePath, &cfg.FetcherConfig.HeadlessBrowser.ChromePath)

	l := &cfg.LogConfig
	setString(EnvLogLevel, &l.LogLevel)
	setString(EnvLogFormat, &l.LogFormat)
	setString(EnvLogFile, &l.LogFile)

	return common.CombineErrors(errs)
}
