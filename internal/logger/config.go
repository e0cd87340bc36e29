package logger

import (
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/rs/zerolog"
)

// DefaultService is stamped on every record unless WithService overrides it.
const DefaultService = "stockwatch"

// LogFormat names an output layout. Values match log_config.log_format.
type LogFormat string

const (
	FormatJSON    LogFormat = "json"
	FormatConsole LogFormat = "console"
	FormatText    LogFormat = "text"
)

// LoggerConfig is LogConfig resolved into concrete logger settings.
// Console output is always on; FilePath adds a rotating file.
type LoggerConfig struct {
	Level      zerolog.Level
	Format     LogFormat
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	Service    string
}

// FileEnabled reports whether records are also written to FilePath.
func (c LoggerConfig) FileEnabled() bool {
	return c.FilePath != ""
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		MaxSizeMB:  config.DefaultMaxLogSizeMB,
		MaxBackups: config.DefaultMaxLogBackups,
		Service:    DefaultService,
	}
}
