package notifier

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/differ"
	"github.com/aleister1102/stockwatch/internal/models"
)

const (
	// topItemsInAlert caps the signatures listed in a change alert.
	topItemsInAlert = 8
	truncatedSuffix = "\n…"
)

// MessageFormatter renders the watcher's messages for a target URL.
type MessageFormatter struct {
	targetURL string
}

func NewMessageFormatter(targetURL string) *MessageFormatter {
	return &MessageFormatter{targetURL: targetURL}
}

// Startup announces that the watcher process is up.
func (mf *MessageFormatter) Startup(mode string, base, jitter time.Duration) string {
	return fmt.Sprintf("✅ Stock watcher started.\n%s\nMode: %s, polling every %s ± %s",
		mf.targetURL, mode, base, jitter)
}

// Change describes a detected change in the current signal.
func (mf *MessageFormatter) Change(current models.Signal, diff differ.SignalDiff) string {
	var b strings.Builder
	b.WriteString("🚨 Restock/change detected!\n")
	fmt.Fprintf(&b, "URL: %s\n", mf.targetURL)

	switch current.Kind() {
	case models.SignalKindCounts:
		b.WriteString("\nCounts now:\n")
		for _, d := range diff.Metrics {
			b.WriteString("- ")
			b.WriteString(formatMetricDelta(d))
			b.WriteString("\n")
		}
	case models.SignalKindItems:
		fmt.Fprintf(&b, "Products found now: %d (%s)\n", current.ItemCount(), signed(diff.CountDelta()))
		if n := len(diff.AddedItems); n > 0 {
			fmt.Fprintf(&b, "New in top list: %d\n", n)
		}
		if diff.Reordered {
			b.WriteString("Top list reordered\n")
		}
		items := current.Items()
		if len(items) > 0 {
			b.WriteString("\nTop items (signatures):\n")
			for _, s := range items[:min(len(items), topItemsInAlert)] {
				fmt.Fprintf(&b, "- %s\n", s)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Error reports a failed cycle.
func (mf *MessageFormatter) Error(err error) string {
	msg := fmt.Sprintf("⚠️ Watcher error: %v\nURL: %s", err, mf.targetURL)
	if errors.Unwrap(err) != nil {
		root := common.GetRootCause(err)
		msg += fmt.Sprintf("\nCause: %T: %v", root, root)
	}
	return msg
}

func formatMetricDelta(d differ.MetricDelta) string {
	switch {
	case d.Added:
		return fmt.Sprintf("%s: %d (new)", d.Name, d.Current)
	case d.Removed:
		return fmt.Sprintf("%s: gone (was %d)", d.Name, d.Prior)
	default:
		return fmt.Sprintf("%s: %d (%s)", d.Name, d.Current, signed(d.Delta))
	}
}

func signed(v int) string {
	if v >= 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

// truncateText caps text at limit runes, marking the cut.
func truncateText(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	keep := limit - utf8.RuneCountInString(truncatedSuffix)
	runes := []rune(text)
	return string(runes[:keep]) + truncatedSuffix
}
