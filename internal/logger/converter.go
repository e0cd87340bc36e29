package logger

import (
	"strings"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/rs/zerolog"
)

// ConvertConfig resolves the application log section. An empty level means
// info and an unknown format falls back to console; an unknown level is an
// error.
func ConvertConfig(cfg config.LogConfig) (LoggerConfig, error) {
	resolved := DefaultLoggerConfig()

	if strings.TrimSpace(cfg.LogLevel) != "" {
		level, err := parseLevel(cfg.LogLevel)
		if err != nil {
			return resolved, err
		}
		resolved.Level = level
	}

	resolved.Format = parseFormat(cfg.LogFormat)
	resolved.FilePath = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		resolved.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		resolved.MaxBackups = cfg.MaxLogBackups
	}
	return resolved, nil
}

func parseLevel(s string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, common.WrapError(err, "invalid log level")
	}
	return level, nil
}

func parseFormat(s string) LogFormat {
	switch LogFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatText:
		return FormatText
	default:
		return FormatConsole
	}
}
