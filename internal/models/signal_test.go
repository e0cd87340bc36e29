package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var observedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewCountSignal(t *testing.T) {
	tests := []struct {
		name    string
		at      time.Time
		metrics Metrics
		wantErr bool
	}{
		{name: "single total", at: observedAt, metrics: Metrics{{Name: "total", Value: 5}}},
		{name: "men and women", at: observedAt, metrics: Metrics{{Name: "men", Value: 10}, {Name: "women", Value: 40}}},
		{name: "zero timestamp", metrics: Metrics{{Name: "total", Value: 1}}, wantErr: true},
		{name: "no metrics", at: observedAt, wantErr: true},
		{name: "empty name", at: observedAt, metrics: Metrics{{Name: " ", Value: 1}}, wantErr: true},
		{name: "duplicate name", at: observedAt, metrics: Metrics{{Name: "men", Value: 1}, {Name: "men", Value: 2}}, wantErr: true},
		{name: "negative value", at: observedAt, metrics: Metrics{{Name: "total", Value: -1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal, err := NewCountSignal(tt.at, tt.metrics)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, signal.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SignalKindCounts, signal.Kind())
			assert.Equal(t, tt.metrics, signal.Metrics())
		})
	}
}

func TestNewCountSignal_EnforcesBound(t *testing.T) {
	metrics := make(Metrics, 0, MaxSignalEntries+1)
	for i := 0; i <= MaxSignalEntries; i++ {
		metrics = append(metrics, Metric{Name: fmt.Sprintf("m%d", i), Value: i})
	}

	_, err := NewCountSignal(observedAt, metrics)
	assert.Error(t, err)

	_, err = NewCountSignal(observedAt, metrics[:MaxSignalEntries])
	assert.NoError(t, err)
}

func TestNewItemSignal(t *testing.T) {
	signal, err := NewItemSignal(observedAt, 12, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, SignalKindItems, signal.Kind())
	assert.Equal(t, 12, signal.ItemCount())
	assert.Equal(t, []string{"a", "b", "c"}, signal.Items())

	_, err = NewItemSignal(observedAt, 1, []string{"a", "b"})
	assert.Error(t, err, "count lower than signatures")

	_, err = NewItemSignal(observedAt, 2, []string{"a", ""})
	assert.Error(t, err, "empty signature")

	_, err = NewItemSignal(observedAt, 0, nil)
	assert.NoError(t, err, "an empty page is a valid observation")
}

func TestSignal_IsImmutable(t *testing.T) {
	items := []string{"a", "b"}
	signal, err := NewItemSignal(observedAt, 2, items)
	require.NoError(t, err)

	items[0] = "mutated"
	got := signal.Items()
	got[1] = "mutated"

	assert.Equal(t, []string{"a", "b"}, signal.Items())
}

func TestSignal_Equal(t *testing.T) {
	a, _ := NewItemSignal(observedAt, 3, []string{"a", "b", "c"})
	sameLater, _ := NewItemSignal(observedAt.Add(time.Hour), 3, []string{"a", "b", "c"})
	reordered, _ := NewItemSignal(observedAt, 3, []string{"b", "a", "c"})
	counts, _ := NewCountSignal(observedAt, Metrics{{Name: "total", Value: 3}})

	assert.True(t, a.Equal(sameLater))
	assert.False(t, a.Equal(reordered))
	assert.False(t, a.Equal(counts))
}

func TestMetrics_JSONKeepsOrder(t *testing.T) {
	metrics := Metrics{{Name: "women", Value: 42}, {Name: "men", Value: 10}}

	data, err := json.Marshal(metrics)
	require.NoError(t, err)
	assert.Equal(t, `{"women":42,"men":10}`, string(data))

	var decoded Metrics
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, metrics, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"men":"ten"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"men":1.5}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &decoded))
}

func TestPersistedState_RoundTrip(t *testing.T) {
	signal, err := NewCountSignal(observedAt, Metrics{{Name: "men", Value: 10}, {Name: "women", Value: 42}})
	require.NoError(t, err)

	data, err := EncodeState(signal, observedAt.Add(time.Second))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metrics": {`)

	decoded, err := DecodeState(data)
	require.NoError(t, err)
	assert.True(t, signal.Equal(decoded))
	assert.Equal(t, observedAt, decoded.ObservedAt())
}

func TestDecodeState_RejectsInvalidRecords(t *testing.T) {
	tests := map[string]string{
		"truncated":     `{"version":1,"signal":{`,
		"wrong version": `{"version":7,"signal":{"observed_at":"2026-03-01T12:00:00Z","kind":"counts","metrics":{"total":1}}}`,
		"unknown kind":  `{"version":1,"signal":{"observed_at":"2026-03-01T12:00:00Z","kind":"prices"}}`,
		"no timestamp":  `{"version":1,"signal":{"kind":"counts","metrics":{"total":1}}}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeState([]byte(raw))
			assert.Error(t, err)
		})
	}
}
