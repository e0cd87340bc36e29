package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is built once at startup and handed to every component.
// Components never read the environment themselves.
type GlobalConfig struct {
	WatchConfig        WatchConfig        `json:"watch_config,omitempty" yaml:"watch_config,omitempty"`
	FetcherConfig      FetcherConfig      `json:"fetcher_config,omitempty" yaml:"fetcher_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	LivenessConfig     LivenessConfig     `json:"liveness_config,omitempty" yaml:"liveness_config,omitempty"`
	MetricsConfig      MetricsConfig      `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		WatchConfig:        NewDefaultWatchConfig(),
		FetcherConfig:      NewDefaultFetcherConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		LivenessConfig:     NewDefaultLivenessConfig(),
		MetricsConfig:      NewDefaultMetricsConfig(),
		LogConfig:          NewDefaultLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// YAML is used for .yaml/.yml files, JSON otherwise. With no file the
// defaults are returned so the environment alone can configure the watcher.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	data, err := fileManager.ReadFile(filePath, common.DefaultFileReadOptions())
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Config file loaded")
	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
