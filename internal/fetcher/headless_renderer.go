package fetcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// HeadlessRenderer renders pages in a single Chromium process driven by rod.
// The browser is launched on first use and relaunched after a failed render.
type HeadlessRenderer struct {
	config   config.HeadlessBrowserConfig
	logger   zerolog.Logger
	mutex    sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewHeadlessRenderer creates a renderer; no browser is started yet.
func NewHeadlessRenderer(cfg config.HeadlessBrowserConfig, logger zerolog.Logger) *HeadlessRenderer {
	return &HeadlessRenderer{
		config: cfg,
		logger: logger.With().Str("component", "HeadlessRenderer").Logger(),
	}
}

// Render opens a fresh incognito page, loads url and returns the page HTML.
func (hr *HeadlessRenderer) Render(ctx context.Context, url string) (string, error) {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()

	browser, err := hr.ensureBrowser()
	if err != nil {
		return "", err
	}

	html, err := hr.renderPage(ctx, browser, url)
	if err != nil {
		hr.logger.Warn().Err(err).Str("url", url).Msg("Render failed, browser will be relaunched")
		hr.teardown()
		return "", err
	}
	return html, nil
}

func (hr *HeadlessRenderer) renderPage(ctx context.Context, browser *rod.Browser, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, hr.config.PageLoadTimeout())
	defer cancel()

	incognito, err := browser.Incognito()
	if err != nil {
		return "", fmt.Errorf("failed to create incognito context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Context(timeoutCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  hr.config.WindowWidth,
		Height: hr.config.WindowHeight,
	}); err != nil {
		hr.logger.Warn().Err(err).Msg("Failed to set viewport")
	}

	if hr.config.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: hr.config.UserAgent,
		}); err != nil {
			hr.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("page load timeout for %s: %w", url, err)
	}

	if wait := hr.config.WaitAfterLoad(); wait > 0 {
		select {
		case <-time.After(wait):
		case <-timeoutCtx.Done():
			return "", fmt.Errorf("page hydration interrupted for %s: %w", url, timeoutCtx.Err())
		}
	}

	if hr.config.ReadySelector != "" {
		if _, err := page.Element(hr.config.ReadySelector); err != nil {
			return "", fmt.Errorf("ready selector %q not found on %s: %w", hr.config.ReadySelector, url, err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML for %s: %w", url, err)
	}
	return html, nil
}

// ensureBrowser launches Chromium if it is not running. Callers hold the mutex.
func (hr *HeadlessRenderer) ensureBrowser() (*rod.Browser, error) {
	if hr.browser != nil {
		return hr.browser, nil
	}

	l := launcher.New().Headless(true)

	if hr.config.ChromePath != "" {
		l = l.Bin(hr.config.ChromePath)
	}

	if hr.config.UserDataDir != "" {
		l = l.UserDataDir(hr.config.UserDataDir)
	}

	if hr.config.NoSandbox {
		l = l.Set("no-sandbox")
	}

	for _, arg := range hr.config.BrowserArgs {
		name, values := parseBrowserArg(arg)
		if name == "" {
			continue
		}
		l = l.Set(name, values...)
	}

	if hr.config.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	hr.launcher = l
	hr.browser = browser
	hr.logger.Info().Msg("Headless browser launched")
	return browser, nil
}

// teardown closes the browser and cleans the launcher. Callers hold the mutex.
func (hr *HeadlessRenderer) teardown() {
	if hr.browser != nil {
		if err := hr.browser.Close(); err != nil {
			hr.logger.Debug().Err(err).Msg("Failed to close browser")
		}
		hr.browser = nil
	}
	if hr.launcher != nil {
		hr.launcher.Cleanup()
		hr.launcher = nil
	}
}

// Close stops the browser process if one is running.
func (hr *HeadlessRenderer) Close() error {
	hr.mutex.Lock()
	defer hr.mutex.Unlock()

	hr.teardown()
	hr.logger.Info().Msg("Headless browser stopped")
	return nil
}

// parseBrowserArg turns "--disable-features=A,B" or "disable-gpu" into a
// launcher flag and its values.
func parseBrowserArg(arg string) (flags.Flag, []string) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	name, value, found := strings.Cut(arg, "=")
	if !found {
		return flags.Flag(name), nil
	}
	return flags.Flag(name), []string{value}
}
