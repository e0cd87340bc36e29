// Package monitor runs the watch loop: fetch the page signal, compare it
// with the stored one, alert on change, persist, sleep with jitter, repeat.
package monitor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/aleister1102/stockwatch/internal/datastore"
	"github.com/aleister1102/stockwatch/internal/differ"
	"github.com/aleister1102/stockwatch/internal/fetcher"
	"github.com/aleister1102/stockwatch/internal/metrics"
	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/aleister1102/stockwatch/internal/notifier"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators a WatchLoop drives. Metrics may be nil.
type Dependencies struct {
	Fetcher  fetcher.Fetcher
	Store    datastore.StateStore
	Notifier notifier.Notifier
	Metrics  *metrics.Collector
}

// WatchLoop owns the cycle state machine. Exactly one cycle runs at a time.
type WatchLoop struct {
	cfg       config.WatchConfig
	policy    differ.AlertPolicy
	fetcher   fetcher.Fetcher
	store     datastore.StateStore
	notifier  notifier.Notifier
	metrics   *metrics.Collector
	formatter *notifier.MessageFormatter
	differ    *differ.SignalDiffer
	tracker   *CycleTracker
	logger    zerolog.Logger

	rnd   RandSource
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	newID func() string
}

// NewWatchLoop creates a loop for cfg.TargetURL.
func NewWatchLoop(cfg config.WatchConfig, deps Dependencies, logger zerolog.Logger) *WatchLoop {
	return &WatchLoop{
		cfg:       cfg,
		policy:    differ.ParseAlertPolicy(cfg.AlertPolicy),
		fetcher:   deps.Fetcher,
		store:     deps.Store,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		formatter: notifier.NewMessageFormatter(cfg.TargetURL),
		differ:    differ.NewSignalDiffer(),
		tracker:   NewCycleTracker(),
		logger:    logger.With().Str("component", "WatchLoop").Str("target_url", cfg.TargetURL).Logger(),
		sleep:     sleepContext,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Tracker exposes the cycle counters.
func (w *WatchLoop) Tracker() *CycleTracker {
	return w.tracker
}

// Run announces startup, waits the initial delay, then runs cycles until ctx
// is cancelled. Cancellation is only observed between cycles.
func (w *WatchLoop) Run(ctx context.Context) error {
	w.logger.Info().
		Str("mode", w.cfg.SignalMode).
		Str("policy", string(w.policy)).
		Dur("base", w.cfg.BaseInterval()).
		Dur("jitter", w.cfg.Jitter()).
		Dur("floor", w.cfg.MinInterval()).
		Msg("Watch loop starting")

	if w.cfg.NotifyOnStartup {
		w.SendStartup(ctx)
	}

	if err := w.sleep(ctx, w.cfg.InitialDelay()); err != nil {
		w.logger.Info().Msg("Watch loop stopped before first cycle")
		return err
	}

	for {
		next := w.iterate(ctx)
		w.logger.Debug().Dur("sleep", next).Msg("Sleeping until next cycle")

		if err := w.sleep(ctx, next); err != nil {
			w.logger.Info().Object("totals", w.tracker.Snapshot()).Msg("Watch loop stopped")
			return err
		}
	}
}

// iterate runs one cycle plus its bookkeeping and returns the pause before
// the next one. A panic outside the cycle body is logged and the loop
// falls back to the base interval.
func (w *WatchLoop) iterate(ctx context.Context) (next time.Duration) {
	next = max(w.cfg.BaseInterval(), w.cfg.MinInterval())
	defer w.recoverLoopPanic("cycle bookkeeping")

	outcome := w.RunCycle(ctx)
	w.record(ctx, outcome)
	return NextSleep(w.cfg.BaseInterval(), w.cfg.Jitter(), w.cfg.MinInterval(), w.rnd)
}

// recoverLoopPanic must be deferred directly.
func (w *WatchLoop) recoverLoopPanic(where string) {
	if r := recover(); r != nil {
		w.logger.Error().
			Str("cycle_id", w.tracker.GetCurrentCycleID()).
			Str("status", string(StatusSoftFailure)).
			Str("where", where).
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("Recovered panic in watch loop")
	}
}

// notify delivers text and turns a transport panic into a NotifyError.
func (w *WatchLoop) notify(ctx context.Context, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.NewNotifyError(w.notifier.Name(), fmt.Errorf("%w: %v", common.ErrPanic, r))
		}
	}()
	return w.notifier.Notify(ctx, text)
}

// SendStartup sends the "watcher started" message. Failures are logged only.
func (w *WatchLoop) SendStartup(ctx context.Context) {
	defer w.recoverLoopPanic("startup notification")

	text := w.formatter.Startup(w.cfg.SignalMode, w.cfg.BaseInterval(), w.cfg.Jitter())
	if err := w.notify(context.WithoutCancel(ctx), text); err != nil {
		w.metrics.IncNotifyFailure()
		w.logger.Warn().Err(err).Msg("Startup notification failed")
	}
}

// RunCycle executes one fetch, compare, alert, persist pass. It never
// panics and never returns early because ctx was cancelled.
func (w *WatchLoop) RunCycle(ctx context.Context) (outcome CycleOutcome) {
	ctx = context.WithoutCancel(ctx)

	outcome = CycleOutcome{
		CycleID:   w.newID(),
		StartedAt: w.now(),
		Stage:     StageFetch,
	}
	w.tracker.StartCycle(outcome.CycleID)
	logger := w.logger.With().Str("cycle_id", outcome.CycleID).Logger()

	defer func() {
		if r := recover(); r != nil {
			outcome.Status = StatusSoftFailure
			outcome.Err = fmt.Errorf("%w at %s stage: %v", common.ErrPanic, outcome.Stage, r)
			logger.Error().
				Str("stage", string(outcome.Stage)).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered panic in watch cycle")
		}
		outcome.Duration = w.now().Sub(outcome.StartedAt)
	}()

	current, err := w.fetcher.Fetch(ctx, w.cfg.TargetURL)
	if err != nil {
		outcome.Status = StatusSoftFailure
		outcome.Err = err
		logger.Warn().Err(err).Msg("Fetch failed, skipping cycle")
		return outcome
	}
	outcome.Signal = current

	outcome.Stage = StageLoad
	prior := w.loadPrior(ctx, logger)

	outcome.Stage = StageCompare
	alert := differ.ShouldAlert(prior, current, w.policy)
	switch {
	case prior == nil || prior.Kind() != current.Kind():
		outcome.Status = StatusBaseline
		logger.Info().Str("signal", current.Summary()).Msg("No comparable baseline, storing signal")
	case alert:
		outcome.Status = StatusChanged
	default:
		outcome.Status = StatusUnchanged
	}

	if alert {
		outcome.Stage = StageNotify
		diff := w.differ.Diff(prior, current)
		if err := w.notify(ctx, w.formatter.Change(current, diff)); err != nil {
			outcome.Err = err
			w.metrics.IncNotifyFailure()
			logger.Error().Err(err).Str("transport", w.notifier.Name()).Msg("Change alert could not be delivered")
		} else {
			outcome.Alerted = true
			w.metrics.IncAlert()
			logger.Info().Str("signal", current.Summary()).Msg("Change alert sent")
		}
	}

	outcome.Stage = StagePersist
	if err := w.store.Save(ctx, current); err != nil {
		outcome.Status = StatusSoftFailure
		outcome.Err = common.CombineErrors([]error{outcome.Err, err})
		logger.Error().Err(err).Msg("Failed to persist signal")
		return outcome
	}

	outcome.Stage = StageDone
	return outcome
}

// loadPrior reads the stored signal; any load problem means no baseline.
func (w *WatchLoop) loadPrior(ctx context.Context, logger zerolog.Logger) *models.Signal {
	prior, err := w.store.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Stored state unusable, treating as no baseline")
		return nil
	}
	return prior
}

// record logs the outcome and feeds the tracker and metrics.
func (w *WatchLoop) record(ctx context.Context, outcome CycleOutcome) {
	w.tracker.Record(outcome)
	w.metrics.ObserveCycle(string(outcome.Status), outcome.Duration, outcome.Fetched(), outcome.StartedAt.Add(outcome.Duration))
	if outcome.Fetched() {
		w.metrics.SetSignal(outcome.Signal)
	}

	event := w.logger.Info()
	if outcome.Status == StatusSoftFailure {
		event = w.logger.Warn()
	}
	event.EmbedObject(outcome).
		Object("totals", w.tracker.Snapshot()).
		Object("resources", common.GetResourceUsage()).
		Msg("Watch cycle finished")

	if outcome.Status == StatusSoftFailure && w.cfg.NotifyOnError {
		if err := w.notify(context.WithoutCancel(ctx), w.formatter.Error(outcome.Err)); err != nil {
			w.metrics.IncNotifyFailure()
			w.logger.Warn().Err(err).Msg("Error notification failed")
		}
	}
}
