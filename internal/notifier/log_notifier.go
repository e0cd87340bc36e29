package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "LogNotifier").Logger()}
}

func (ln *LogNotifier) Name() string { return "log" }

func (ln *LogNotifier) Notify(_ context.Context, text string) error {
	ln.logger.Info().Str("text", text).Msg("Notification (no transport configured)")
	return nil
}
