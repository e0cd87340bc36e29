package models

import (
	"slices"
	"strings"
	"time"

	"github.com/aleister1102/stockwatch/internal/common"
)

// MaxSignalEntries bounds the number of metrics or item signatures a
// Signal may carry, keeping persisted state small and comparisons cheap.
const MaxSignalEntries = 20

// SignalKind selects which representation a Signal carries.
type SignalKind string

const (
	// SignalKindCounts tracks named integer counts such as "men"/"women".
	SignalKindCounts SignalKind = "counts"
	// SignalKindItems tracks an ordered list of product signatures.
	SignalKindItems SignalKind = "items"
)

// IsValid reports whether k is a known kind.
func (k SignalKind) IsValid() bool {
	return k == SignalKindCounts || k == SignalKindItems
}

// Signal is the observed inventory state for one fetch cycle.
// Build it with NewCountSignal or NewItemSignal; it is immutable afterwards.
type Signal struct {
	observedAt time.Time
	kind       SignalKind
	metrics    Metrics
	itemCount  int
	items      []string
}

// NewCountSignal builds a counts-kind signal.
func NewCountSignal(observedAt time.Time, metrics Metrics) (Signal, error) {
	if observedAt.IsZero() {
		return Signal{}, common.NewValidationError("observed_at", observedAt, "timestamp is required")
	}
	if len(metrics) == 0 {
		return Signal{}, common.NewValidationError("metrics", len(metrics), "at least one metric is required")
	}
	if len(metrics) > MaxSignalEntries {
		return Signal{}, common.NewValidationError("metrics", len(metrics), "too many metrics")
	}
	if err := metrics.Validate(); err != nil {
		return Signal{}, err
	}

	return Signal{
		observedAt: observedAt.UTC(),
		kind:       SignalKindCounts,
		metrics:    slices.Clone(metrics),
	}, nil
}

// NewItemSignal builds an items-kind signal. itemCount is the number of
// products found on the page; items holds at most MaxSignalEntries of their
// signatures in page order.
func NewItemSignal(observedAt time.Time, itemCount int, items []string) (Signal, error) {
	if observedAt.IsZero() {
		return Signal{}, common.NewValidationError("observed_at", observedAt, "timestamp is required")
	}
	if len(items) > MaxSignalEntries {
		return Signal{}, common.NewValidationError("items", len(items), "too many item signatures")
	}
	if itemCount < len(items) {
		return Signal{}, common.NewValidationError("item_count", itemCount, "item count is lower than the number of signatures")
	}
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			return Signal{}, common.NewValidationError("items", i, "empty item signature")
		}
	}

	return Signal{
		observedAt: observedAt.UTC(),
		kind:       SignalKindItems,
		itemCount:  itemCount,
		items:      slices.Clone(items),
	}, nil
}

// ObservedAt returns the capture time.
func (s Signal) ObservedAt() time.Time { return s.observedAt }

// Kind returns the representation this signal carries.
func (s Signal) Kind() SignalKind { return s.kind }

// Metrics returns a copy of the tracked counts.
func (s Signal) Metrics() Metrics { return slices.Clone(s.metrics) }

// ItemCount returns the number of products found.
func (s Signal) ItemCount() int { return s.itemCount }

// Items returns a copy of the item signatures.
func (s Signal) Items() []string { return slices.Clone(s.items) }

// IsZero reports whether s was never built by a constructor.
func (s Signal) IsZero() bool { return s.kind == "" }

// Equal compares payloads exactly, including order. Timestamps are ignored.
func (s Signal) Equal(other Signal) bool {
	if s.kind != other.kind {
		return false
	}
	switch s.kind {
	case SignalKindCounts:
		return slices.Equal(s.metrics, other.metrics)
	case SignalKindItems:
		return s.itemCount == other.itemCount && slices.Equal(s.items, other.items)
	}
	return true
}

// Summary is a short human-readable rendering used in logs and messages.
func (s Signal) Summary() string {
	switch s.kind {
	case SignalKindCounts:
		return s.metrics.String()
	case SignalKindItems:
		return "items=" + itoa(s.itemCount)
	}
	return "<empty>"
}
