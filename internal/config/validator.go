package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("configuration validation error: config is nil")
	}

	validate := newValidator()

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return formatValidationErrors(errs)
		}
		return fmt.Errorf("configuration validation error: %w", err)
	}

	return validateCrossFields(cfg)
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("signalmode", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case SignalModeCounts, SignalModeItems:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("alertpolicy", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", AlertPolicyAny, AlertPolicyIncreaseOnly:
			return true
		default:
			return false
		}
	})

	return validate
}

// validateCrossFields checks rules spanning several sections.
func validateCrossFields(cfg *GlobalConfig) error {
	var msgs []string

	w := cfg.WatchConfig
	if w.MinIntervalSeconds > w.BaseIntervalSeconds {
		msgs = append(msgs, fmt.Sprintf("Validation failed for 'WatchConfig.MinIntervalSeconds': must not exceed base interval (%d > %d)", w.MinIntervalSeconds, w.BaseIntervalSeconds))
	}

	if w.SignalMode == SignalModeCounts && len(cfg.FetcherConfig.Metrics) == 0 {
		msgs = append(msgs, "Validation failed for 'FetcherConfig.Metrics': counts mode requires at least one metric rule")
	}

	seen := make(map[string]struct{}, len(cfg.FetcherConfig.Metrics))
	for _, rule := range cfg.FetcherConfig.Metrics {
		if _, dup := seen[rule.Name]; dup {
			msgs = append(msgs, fmt.Sprintf("Validation failed for 'FetcherConfig.Metrics': duplicate metric name '%s'", rule.Name))
		}
		seen[rule.Name] = struct{}{}
	}

	items := cfg.FetcherConfig.Items
	if items.MinItems > 0 && items.SampleSize > 0 && items.MinItems > items.SampleSize {
		msgs = append(msgs, fmt.Sprintf("Validation failed for 'FetcherConfig.Items.MinItems': must not exceed sample size (%d > %d)", items.MinItems, items.SampleSize))
	}

	switch cfg.StorageConfig.Backend {
	case StorageBackendFile:
		if cfg.StorageConfig.StateFile == "" {
			msgs = append(msgs, "Validation failed for 'StorageConfig.StateFile': required for file backend")
		}
	case StorageBackendSQLite:
		if cfg.StorageConfig.SQLitePath == "" {
			msgs = append(msgs, "Validation failed for 'StorageConfig.SQLitePath': required for sqlite backend")
		}
	}

	if cfg.MetricsConfig.Enabled {
		if cfg.MetricsConfig.ListenAddr == "" {
			msgs = append(msgs, "Validation failed for 'MetricsConfig.ListenAddr': required when metrics are enabled")
		} else if cfg.MetricsConfig.ListenAddr == cfg.LivenessConfig.ListenAddr {
			msgs = append(msgs, "Validation failed for 'MetricsConfig.ListenAddr': must differ from liveness listen address")
		}
	}

	if len(msgs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(msgs, "\n  "))
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var validationErrorMessages []string
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		validationErrorMessages = append(validationErrorMessages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(validationErrorMessages, "\n  "))
}
