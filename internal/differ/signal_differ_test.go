package differ

import (
	"testing"
	"time"

	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)

func counts(t *testing.T, pairs ...any) models.Signal {
	t.Helper()
	var metrics models.Metrics
	for i := 0; i < len(pairs); i += 2 {
		metrics = append(metrics, models.Metric{Name: pairs[i].(string), Value: pairs[i+1].(int)})
	}
	s, err := models.NewCountSignal(now, metrics)
	require.NoError(t, err)
	return s
}

func items(t *testing.T, count int, sigs ...string) models.Signal {
	t.Helper()
	s, err := models.NewItemSignal(now, count, sigs)
	require.NoError(t, err)
	return s
}

func ptr(s models.Signal) *models.Signal { return &s }

func TestShouldAlert_ColdStartNeverAlerts(t *testing.T) {
	for _, current := range []models.Signal{
		counts(t, "total", 3),
		counts(t, "men", 10, "women", 40),
		items(t, 3, "a", "b", "c"),
		items(t, 0),
	} {
		assert.False(t, ShouldAlert(nil, current, ChangeAny))
		assert.False(t, ShouldAlert(nil, current, ChangeIncreaseOnly))
	}
}

func TestShouldAlert_StableSignalNeverAlerts(t *testing.T) {
	for _, s := range []models.Signal{
		counts(t, "total", 5),
		counts(t, "men", 10, "women", 40),
		items(t, 3, "a", "b", "c"),
		items(t, 0),
	} {
		assert.False(t, ShouldAlert(ptr(s), s, ChangeAny))
		assert.False(t, ShouldAlert(ptr(s), s, ChangeIncreaseOnly))
	}
}

func TestShouldAlert_Counts(t *testing.T) {
	tests := []struct {
		name   string
		prior  models.Signal
		curr   models.Signal
		policy AlertPolicy
		want   bool
	}{
		{"increase", counts(t, "total", 5), counts(t, "total", 6), ChangeAny, true},
		{"decrease", counts(t, "total", 5), counts(t, "total", 4), ChangeAny, true},
		{"one of two metrics moves", counts(t, "men", 10, "women", 40), counts(t, "men", 10, "women", 42), ChangeAny, true},
		{"decrease ignored by increase_only", counts(t, "total", 5), counts(t, "total", 4), ChangeIncreaseOnly, false},
		{"increase under increase_only", counts(t, "total", 5), counts(t, "total", 9), ChangeIncreaseOnly, true},
		{"metric appears", counts(t, "men", 10), counts(t, "men", 10, "kids", 1), ChangeAny, true},
		{"metric appears under increase_only", counts(t, "men", 10), counts(t, "men", 10, "kids", 1), ChangeIncreaseOnly, true},
		{"metric disappears", counts(t, "men", 10, "kids", 1), counts(t, "men", 10), ChangeAny, true},
		{"metric disappears under increase_only", counts(t, "men", 10, "kids", 1), counts(t, "men", 10), ChangeIncreaseOnly, false},
		{"same values other order", counts(t, "men", 10, "women", 40), counts(t, "women", 40, "men", 10), ChangeAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAlert(ptr(tt.prior), tt.curr, tt.policy))
		})
	}
}

func TestShouldAlert_Items(t *testing.T) {
	tests := []struct {
		name  string
		prior models.Signal
		curr  models.Signal
		want  bool
	}{
		{"count grows", items(t, 3, "a", "b", "c"), items(t, 4, "a", "b", "c", "d"), true},
		{"rotation at equal count", items(t, 3, "a", "b", "c"), items(t, 3, "a", "b", "x"), true},
		{"reordered same set", items(t, 3, "a", "b", "c"), items(t, 3, "b", "a", "c"), true},
		{"shrinks to a prefix", items(t, 3, "a", "b", "c"), items(t, 2, "a", "b"), true},
		{"empty extraction", items(t, 3, "a", "b", "c"), items(t, 0), false},
		{"count grows beyond sample", items(t, 15, "a", "b"), items(t, 16, "a", "b"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAlert(ptr(tt.prior), tt.curr, ChangeAny))
		})
	}
}

func TestShouldAlert_KindSwitchIsNewBaseline(t *testing.T) {
	assert.False(t, ShouldAlert(ptr(counts(t, "total", 3)), items(t, 5, "a"), ChangeAny))
}

func TestParseAlertPolicy(t *testing.T) {
	assert.Equal(t, ChangeIncreaseOnly, ParseAlertPolicy(" Increase_Only "))
	assert.Equal(t, ChangeAny, ParseAlertPolicy("any"))
	assert.Equal(t, ChangeAny, ParseAlertPolicy("bogus"))
}

func TestSignalDiffer_CountDeltas(t *testing.T) {
	d := NewSignalDiffer().Diff(ptr(counts(t, "men", 10, "women", 40)), counts(t, "men", 10, "women", 42))

	require.Len(t, d.Metrics, 2)
	assert.Equal(t, MetricDelta{Name: "men", Prior: 10, Current: 10, Delta: 0}, d.Metrics[0])
	assert.Equal(t, MetricDelta{Name: "women", Prior: 40, Current: 42, Delta: 2}, d.Metrics[1])
}

func TestSignalDiffer_AddedAndRemovedMetrics(t *testing.T) {
	d := NewSignalDiffer().Diff(ptr(counts(t, "men", 10, "kids", 2)), counts(t, "men", 11, "women", 3))

	require.Len(t, d.Metrics, 3)
	assert.Equal(t, "women", d.Metrics[1].Name)
	assert.True(t, d.Metrics[1].Added)
	assert.Equal(t, MetricDelta{Name: "kids", Prior: 2, Current: 0, Delta: -2, Removed: true}, d.Metrics[2])
}

func TestSignalDiffer_ItemChanges(t *testing.T) {
	d := NewSignalDiffer().Diff(ptr(items(t, 3, "a", "b", "c")), items(t, 4, "d", "a", "c", "e"))

	assert.Equal(t, 1, d.CountDelta())
	assert.ElementsMatch(t, []string{"d", "e"}, d.AddedItems)
	assert.Equal(t, []string{"b"}, d.RemovedItems)
	assert.False(t, d.Reordered)
}

func TestSignalDiffer_Reordered(t *testing.T) {
	d := NewSignalDiffer().Diff(ptr(items(t, 3, "a", "b", "c")), items(t, 3, "b", "a", "c"))

	assert.Empty(t, d.AddedItems)
	assert.Empty(t, d.RemovedItems)
	assert.NotEmpty(t, d.MovedItems)
	assert.True(t, d.Reordered)
}

func TestSignalDiffer_NoBaseline(t *testing.T) {
	d := NewSignalDiffer().Diff(nil, items(t, 2, "a", "b"))

	assert.Equal(t, 0, d.PriorCount)
	assert.Equal(t, []string{"a", "b"}, d.AddedItems)
}
