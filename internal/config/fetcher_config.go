package config

import "time"

const (
	MetricSourceCount = "count"
	MetricSourceText  = "text"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// HeadlessBrowserConfig configures the Chromium instance used for rendering.
type HeadlessBrowserConfig struct {
	ChromePath          string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserDataDir         string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	WindowWidth         int      `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"omitempty,min=100"`
	WindowHeight        int      `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"omitempty,min=100"`
	PageLoadTimeoutSecs int      `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1"`
	WaitAfterLoadMs     int      `json:"wait_after_load_ms" yaml:"wait_after_load_ms" validate:"min=0"`
	ReadySelector       string   `json:"ready_selector,omitempty" yaml:"ready_selector,omitempty"`
	UserAgent           string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	DisableImages       bool     `json:"disable_images" yaml:"disable_images"`
	NoSandbox           bool     `json:"no_sandbox" yaml:"no_sandbox"`
	BrowserArgs         []string `json:"browser_args,omitempty" yaml:"browser_args,omitempty"`
}

func NewDefaultHeadlessBrowserConfig() HeadlessBrowserConfig {
	return HeadlessBrowserConfig{
		WindowWidth:         1280,
		WindowHeight:        900,
		PageLoadTimeoutSecs: 60,
		WaitAfterLoadMs:     4000,
		UserAgent:           DefaultUserAgent,
		DisableImages:       true,
		NoSandbox:           true,
		BrowserArgs:         []string{"disable-dev-shm-usage", "disable-gpu"},
	}
}

func (h HeadlessBrowserConfig) PageLoadTimeout() time.Duration {
	return time.Duration(h.PageLoadTimeoutSecs) * time.Second
}

func (h HeadlessBrowserConfig) WaitAfterLoad() time.Duration {
	return time.Duration(h.WaitAfterLoadMs) * time.Millisecond
}

// ItemExtractionConfig controls product-card sampling in items mode.
type ItemExtractionConfig struct {
	CardSelectors []string `json:"card_selectors,omitempty" yaml:"card_selectors,omitempty" validate:"omitempty,dive,required"`
	SampleSize    int      `json:"sample_size,omitempty" yaml:"sample_size,omitempty" validate:"omitempty,min=1"`
	MinItems      int      `json:"min_items,omitempty" yaml:"min_items,omitempty" validate:"omitempty,min=1"`
	MaxItems      int      `json:"max_items,omitempty" yaml:"max_items,omitempty" validate:"omitempty,min=1,max=20"`
}

func NewDefaultItemExtractionConfig() ItemExtractionConfig {
	return ItemExtractionConfig{
		CardSelectors: []string{
			"a[href*='/p/']",
			"a[href*='-p-']",
			"[data-testid*='goods']",
			".product-card a",
		},
		SampleSize: 20,
		MinItems:   8,
		MaxItems:   10,
	}
}

// MetricRuleConfig extracts one named count in counts mode.
// Source "count" counts matching elements; "text" parses the first integer
// in the first matching element's text.
type MetricRuleConfig struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Selector string `json:"selector" yaml:"selector" validate:"required"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty" validate:"omitempty,oneof=count text"`
}

// FetcherConfig groups rendering and extraction settings.
type FetcherConfig struct {
	HeadlessBrowser HeadlessBrowserConfig `json:"headless_browser,omitempty" yaml:"headless_browser,omitempty"`
	Items           ItemExtractionConfig  `json:"items,omitempty" yaml:"items,omitempty"`
	Metrics         []MetricRuleConfig    `json:"metrics,omitempty" yaml:"metrics,omitempty" validate:"omitempty,max=20,dive"`
}

func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		HeadlessBrowser: NewDefaultHeadlessBrowserConfig(),
		Items:           NewDefaultItemExtractionConfig(),
		Metrics:         []MetricRuleConfig{},
	}
}
