package config

import "time"

const (
	SignalModeCounts = "counts"
	SignalModeItems  = "items"

	AlertPolicyAny          = "any"
	AlertPolicyIncreaseOnly = "increase_only"

	DefaultBaseIntervalSeconds = 60
	DefaultJitterSeconds       = 30
	DefaultMinIntervalSeconds  = 30
	DefaultInitialDelaySeconds = 5
)

// WatchConfig drives the watch loop.
type WatchConfig struct {
	TargetURL           string `json:"target_url,omitempty" yaml:"target_url,omitempty" validate:"required,url"`
	SignalMode          string `json:"signal_mode,omitempty" yaml:"signal_mode,omitempty" validate:"required,signalmode"`
	AlertPolicy         string `json:"alert_policy,omitempty" yaml:"alert_policy,omitempty" validate:"omitempty,alertpolicy"`
	BaseIntervalSeconds int    `json:"base_interval_seconds,omitempty" yaml:"base_interval_seconds,omitempty" validate:"min=1"`
	JitterSeconds       int    `json:"jitter_seconds" yaml:"jitter_seconds" validate:"min=0"`
	MinIntervalSeconds  int    `json:"min_interval_seconds,omitempty" yaml:"min_interval_seconds,omitempty" validate:"min=1"`
	InitialDelaySeconds int    `json:"initial_delay_seconds" yaml:"initial_delay_seconds" validate:"min=0"`
	NotifyOnStartup     bool   `json:"notify_on_startup" yaml:"notify_on_startup"`
	NotifyOnError       bool   `json:"notify_on_error" yaml:"notify_on_error"`
}

// NewDefaultWatchConfig creates default watch configuration
func NewDefaultWatchConfig() WatchConfig {
	return WatchConfig{
		SignalMode:          SignalModeItems,
		AlertPolicy:         AlertPolicyAny,
		BaseIntervalSeconds: DefaultBaseIntervalSeconds,
		JitterSeconds:       DefaultJitterSeconds,
		MinIntervalSeconds:  DefaultMinIntervalSeconds,
		InitialDelaySeconds: DefaultInitialDelaySeconds,
		NotifyOnStartup:     true,
		NotifyOnError:       true,
	}
}

func (w WatchConfig) BaseInterval() time.Duration {
	return time.Duration(w.BaseIntervalSeconds) * time.Second
}

func (w WatchConfig) Jitter() time.Duration {
	return time.Duration(w.JitterSeconds) * time.Second
}

func (w WatchConfig) MinInterval() time.Duration {
	return time.Duration(w.MinIntervalSeconds) * time.Second
}

func (w WatchConfig) InitialDelay() time.Duration {
	return time.Duration(w.InitialDelaySeconds) * time.Second
}
