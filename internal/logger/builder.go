package logger

import (
	"io"
	stdlog "log" // aliased to avoid confusion with zerolog/log

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config  LoggerConfig
	factory *WriterFactory
	output  io.Writer
	convErr error
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:  DefaultLoggerConfig(),
		factory: NewWriterFactory(),
	}
}

// WithConfig sets the logger configuration
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	service := lb.config.Service
	loggerConfig, err := ConvertConfig(cfg)
	loggerConfig.Service = service
	lb.config = loggerConfig
	lb.convErr = err
	return lb
}

// WithOutput replaces stderr as the console destination.
func (lb *LoggerBuilder) WithOutput(w io.Writer) *LoggerBuilder {
	lb.output = w
	return lb
}

// WithService stamps every record with a service field.
func (lb *LoggerBuilder) WithService(name string) *LoggerBuilder {
	lb.config.Service = name
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if err := lb.validateConfig(); err != nil {
		return nil, err
	}

	writers := lb.createWriters()
	multiWriter := zerolog.MultiLevelWriter(writers...)
	ctx := zerolog.New(multiWriter).
		Level(lb.config.Level).
		With().
		Timestamp()
	if lb.config.Service != "" {
		ctx = ctx.Str("service", lb.config.Service)
	}
	zerologInstance := ctx.Logger()

	zerolog.SetGlobalLevel(lb.config.Level)
	lb.configureStandardLog(zerologInstance)

	return &Logger{
		zerolog: zerologInstance,
		config:  lb.config,
	}, nil
}

// validateConfig validates the logger configuration
func (lb *LoggerBuilder) validateConfig() error {
	if lb.convErr != nil {
		return lb.convErr
	}

	if lb.config.MaxSizeMB <= 0 {
		return common.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}

	return nil
}

// createWriters creates the appropriate writers based on configuration
func (lb *LoggerBuilder) createWriters() []io.Writer {
	writers := []io.Writer{lb.factory.CreateConsoleWriter(lb.config.Format, lb.output)}

	if lb.config.FileEnabled() {
		writers = append(writers, lb.factory.CreateFileWriter(lb.config))
	}

	return writers
}

// configureStandardLog routes the standard library logger (used by some
// dependencies) through zerolog.
func (lb *LoggerBuilder) configureStandardLog(logger zerolog.Logger) {
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
}
