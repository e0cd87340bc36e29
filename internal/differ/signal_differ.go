package differ

import (
	"slices"
	"strings"

	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// AlertPolicy decides which count movements are alert-worthy.
type AlertPolicy string

const (
	// ChangeAny alerts on any increase or decrease of a tracked metric.
	ChangeAny AlertPolicy = "any"
	// ChangeIncreaseOnly alerts only when a metric grows or a new one appears.
	ChangeIncreaseOnly AlertPolicy = "increase_only"
)

// ParseAlertPolicy maps a config value to a policy; unknown values fall back to ChangeAny.
func ParseAlertPolicy(s string) AlertPolicy {
	switch AlertPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ChangeIncreaseOnly:
		return ChangeIncreaseOnly
	default:
		return ChangeAny
	}
}

// ShouldAlert compares the baseline against a fresh signal. A missing
// baseline never alerts; that cycle only establishes one.
func ShouldAlert(prior *models.Signal, current models.Signal, policy AlertPolicy) bool {
	if prior == nil || prior.IsZero() || current.IsZero() {
		return false
	}
	// A deployment that switched representation starts over from a new baseline.
	if prior.Kind() != current.Kind() {
		return false
	}

	switch current.Kind() {
	case models.SignalKindCounts:
		return countsChanged(prior.Metrics(), current.Metrics(), policy)
	case models.SignalKindItems:
		return itemsChanged(*prior, current)
	}
	return false
}

func countsChanged(prior, current models.Metrics, policy AlertPolicy) bool {
	for _, metric := range current {
		before, ok := prior.Get(metric.Name)
		if !ok {
			return true
		}
		if metric.Value > before {
			return true
		}
		if metric.Value < before && policy != ChangeIncreaseOnly {
			return true
		}
	}

	if policy == ChangeIncreaseOnly {
		return false
	}
	for _, metric := range prior {
		if _, ok := current.Get(metric.Name); !ok {
			return true
		}
	}
	return false
}

func itemsChanged(prior, current models.Signal) bool {
	if current.ItemCount() > prior.ItemCount() {
		return true
	}
	// An empty extraction carries no ordering information.
	if len(current.Items()) == 0 {
		return false
	}
	return !slices.Equal(prior.Items(), current.Items())
}

// MetricDelta describes how one metric moved between two signals.
type MetricDelta struct {
	Name    string
	Prior   int
	Current int
	Delta   int
	Added   bool
	Removed bool
}

// SignalDiff describes a change for humans.
type SignalDiff struct {
	Kind         models.SignalKind
	Metrics      []MetricDelta
	PriorCount   int
	CurrentCount int
	AddedItems   []string
	RemovedItems []string
	MovedItems   []string
	Reordered    bool
}

// CountDelta is the change in item count.
func (d SignalDiff) CountDelta() int {
	return d.CurrentCount - d.PriorCount
}

// SignalDiffer computes SignalDiff values. It is stateless and safe for
// concurrent use.
type SignalDiffer struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewSignalDiffer creates a new differ
func NewSignalDiffer() *SignalDiffer {
	return &SignalDiffer{dmp: diffmatchpatch.New()}
}

// Diff describes how current differs from prior. A nil prior is treated
// as an empty baseline of the same kind.
func (sd *SignalDiffer) Diff(prior *models.Signal, current models.Signal) SignalDiff {
	diff := SignalDiff{Kind: current.Kind()}
	if prior != nil && prior.Kind() != current.Kind() {
		prior = nil
	}

	switch current.Kind() {
	case models.SignalKindCounts:
		var before models.Metrics
		if prior != nil {
			before = prior.Metrics()
		}
		diff.Metrics = metricDeltas(before, current.Metrics())
	case models.SignalKindItems:
		var beforeItems []string
		if prior != nil {
			diff.PriorCount = prior.ItemCount()
			beforeItems = prior.Items()
		}
		diff.CurrentCount = current.ItemCount()
		diff.AddedItems, diff.RemovedItems, diff.MovedItems = sd.itemChanges(beforeItems, current.Items())
		diff.Reordered = len(diff.AddedItems) == 0 && len(diff.RemovedItems) == 0 &&
			!slices.Equal(beforeItems, current.Items())
	}
	return diff
}

func metricDeltas(prior, current models.Metrics) []MetricDelta {
	deltas := make([]MetricDelta, 0, len(current))
	for _, metric := range current {
		before, ok := prior.Get(metric.Name)
		deltas = append(deltas, MetricDelta{
			Name:    metric.Name,
			Prior:   before,
			Current: metric.Value,
			Delta:   metric.Value - before,
			Added:   !ok && prior != nil,
		})
	}
	for _, metric := range prior {
		if _, ok := current.Get(metric.Name); !ok {
			deltas = append(deltas, MetricDelta{
				Name:    metric.Name,
				Prior:   metric.Value,
				Delta:   -metric.Value,
				Removed: true,
			})
		}
	}
	return deltas
}

// itemChanges runs a line diff over the two sequences. Lines that are both
// inserted and deleted only changed position.
func (sd *SignalDiffer) itemChanges(prior, current []string) (added, removed, moved []string) {
	text1 := joinLines(prior)
	text2 := joinLines(current)
	chars1, chars2, lines := sd.dmp.DiffLinesToChars(text1, text2)
	diffs := sd.dmp.DiffCharsToLines(sd.dmp.DiffMain(chars1, chars2, false), lines)

	var inserted, deleted []string
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted = append(inserted, splitLines(d.Text)...)
		case diffmatchpatch.DiffDelete:
			deleted = append(deleted, splitLines(d.Text)...)
		}
	}

	deletedSet := toSet(deleted)
	insertedSet := toSet(inserted)
	for _, line := range inserted {
		if _, ok := deletedSet[line]; ok {
			moved = append(moved, line)
			continue
		}
		added = append(added, line)
	}
	for _, line := range deleted {
		if _, ok := insertedSet[line]; !ok {
			removed = append(removed, line)
		}
	}
	return added, removed, moved
}

func joinLines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
