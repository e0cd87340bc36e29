package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/aleister1102/stockwatch/internal/datastore"
	"github.com/aleister1102/stockwatch/internal/fetcher"
	"github.com/aleister1102/stockwatch/internal/liveness"
	"github.com/aleister1102/stockwatch/internal/logger"
	"github.com/aleister1102/stockwatch/internal/metrics"
	"github.com/aleister1102/stockwatch/internal/monitor"
	"github.com/aleister1102/stockwatch/internal/notifier"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	flags := ParseFlags()

	if err := config.LoadEnvFile(flags.EnvFile); err != nil {
		log.Fatalf("[FATAL] Main: Could not load env file '%s': %v", flags.EnvFile, err)
	}

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, bootLogger)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}
	if err := config.ApplyEnvOverrides(gCfg, os.LookupEnv); err != nil {
		log.Fatalf("[FATAL] Main: Invalid environment override: %v", err)
	}

	appLog, err := logger.NewLoggerBuilder().
		WithConfig(gCfg.LogConfig).
		WithService("stockwatch").
		Build()
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger := *appLog.GetZerolog()
	zLogger.Debug().
		Str("log_level", appLog.Config().Level.String()).
		Str("log_format", string(appLog.Config().Format)).
		Bool("log_file", appLog.Config().FileEnabled()).
		Msg("Logger initialized")

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	zLogger.Info().Str("target_url", gCfg.WatchConfig.TargetURL).Msg("Configuration validated successfully.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, gCfg, zLogger); err != nil {
		zLogger.Error().Err(err).Msg("Stock watcher exited with error")
		stop()
		os.Exit(1)
	}
	zLogger.Info().Msg("Stock watcher stopped.")
}

func run(ctx context.Context, gCfg *config.GlobalConfig, zLogger zerolog.Logger) error {
	// Probes must succeed even while the first page load is still running.
	responder := liveness.NewResponder(gCfg.LivenessConfig, zLogger)
	if err := responder.Start(); err != nil {
		return err
	}

	var collector *metrics.Collector
	var metricsServer *metrics.Server
	if gCfg.MetricsConfig.Enabled {
		collector = metrics.NewCollector()
		metricsServer = metrics.NewServer(gCfg.MetricsConfig, collector, zLogger)
		if err := metricsServer.Start(); err != nil {
			shutdown(responder, nil, zLogger)
			return err
		}
	}

	store, err := datastore.NewStateStore(gCfg.StorageConfig, zLogger)
	if err != nil {
		shutdown(responder, metricsServer, zLogger)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			zLogger.Warn().Err(err).Msg("Failed to close state store")
		}
	}()

	renderer := fetcher.NewHeadlessRenderer(gCfg.FetcherConfig.HeadlessBrowser, zLogger)
	defer func() {
		if err := renderer.Close(); err != nil {
			zLogger.Warn().Err(err).Msg("Failed to close headless browser")
		}
	}()
	extractor := fetcher.NewExtractor(gCfg.WatchConfig.SignalMode, gCfg.FetcherConfig, zLogger)
	pageFetcher := fetcher.NewPageFetcher(renderer, extractor, zLogger)

	httpClient := &http.Client{Timeout: gCfg.NotificationConfig.Timeout()}
	alertNotifier, err := notifier.NewNotifier(gCfg.NotificationConfig, httpClient, zLogger)
	if err != nil {
		shutdown(responder, metricsServer, zLogger)
		return err
	}
	zLogger.Info().Str("transport", alertNotifier.Name()).Msg("Notifier initialized")

	loop := monitor.NewWatchLoop(gCfg.WatchConfig, monitor.Dependencies{
		Fetcher:  pageFetcher,
		Store:    store,
		Notifier: alertNotifier,
		Metrics:  collector,
	}, zLogger)

	serveErrs := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := responder.Serve(); err != nil {
			serveErrs <- err
		}
	}()
	if metricsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metricsServer.Serve(); err != nil {
				serveErrs <- err
			}
		}()
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(loopCtx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		zLogger.Info().Msg("Received shutdown signal, waiting for current cycle to finish...")
	case runErr = <-serveErrs:
		zLogger.Error().Err(runErr).Msg("HTTP listener failed")
	}

	cancelLoop()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		runErr = errors.Join(runErr, err)
	}

	shutdown(responder, metricsServer, zLogger)
	wg.Wait()
	return runErr
}

func shutdown(responder *liveness.Responder, metricsServer *metrics.Server, zLogger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := responder.Shutdown(ctx); err != nil {
		zLogger.Warn().Err(err).Msg("Liveness endpoint shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			zLogger.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}
}
