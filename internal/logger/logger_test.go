package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	_, err := New(cfg)
	require.NoError(t, err)
}

func TestBuilder_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewDefaultLogConfig()
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"

	l, err := NewLoggerBuilder().WithConfig(cfg).WithOutput(&buf).WithService("stockwatch").Build()
	require.NoError(t, err)

	l.GetZerolog().Debug().Str("component", "Test").Msg("hello")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["message"])
	assert.Equal(t, "debug", record["level"])
	assert.Equal(t, "stockwatch", record["service"])
	assert.Equal(t, "Test", record["component"])
	assert.Equal(t, zerolog.DebugLevel, l.Config().Level)
}

func TestBuilder_InvalidLevel(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogLevel = "loud"

	_, err := NewLoggerBuilder().WithConfig(cfg).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestBuilder_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stockwatch.log")
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = path
	cfg.LogFormat = "json"

	var console bytes.Buffer
	l, err := NewLoggerBuilder().WithConfig(cfg).WithOutput(&console).Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, console.String(), "to file")
}

func TestConvertConfig(t *testing.T) {
	resolved, err := ConvertConfig(config.LogConfig{LogLevel: " WARN ", LogFormat: "JSON"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, resolved.Level)
	assert.Equal(t, FormatJSON, resolved.Format)
	assert.Equal(t, config.DefaultMaxLogSizeMB, resolved.MaxSizeMB)
	assert.Equal(t, config.DefaultMaxLogBackups, resolved.MaxBackups)
	assert.Equal(t, DefaultService, resolved.Service)
	assert.False(t, resolved.FileEnabled())

	resolved, err = ConvertConfig(config.LogConfig{LogFormat: "whatever", LogFile: "out.log", MaxLogSizeMB: 5})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, resolved.Level)
	assert.Equal(t, FormatConsole, resolved.Format)
	assert.Equal(t, 5, resolved.MaxSizeMB)
	assert.True(t, resolved.FileEnabled())
}

func TestBuilder_ConsoleWithoutTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewDefaultLogConfig()

	l, err := NewLoggerBuilder().WithOutput(&buf).WithConfig(cfg).Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.Contains(t, buf.String(), "service=")
	assert.NotContains(t, buf.String(), "\x1b[")
}
