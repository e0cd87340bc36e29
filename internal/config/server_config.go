package config

const (
	DefaultLivenessAddr = ":8080"
	DefaultMetricsAddr  = ":9090"
	DefaultMetricsPath  = "/metrics"
)

// LivenessConfig configures the supervisor-facing health responder.
type LivenessConfig struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"required,hostname_port"`
}

func NewDefaultLivenessConfig() LivenessConfig {
	return LivenessConfig{ListenAddr: DefaultLivenessAddr}
}

// MetricsConfig configures the optional Prometheus listener. It is kept
// apart from the liveness port, which answers every path with "ok".
type MetricsConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty" validate:"omitempty,startswith=/"`
}

func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:    false,
		ListenAddr: DefaultMetricsAddr,
		Path:       DefaultMetricsPath,
	}
}
