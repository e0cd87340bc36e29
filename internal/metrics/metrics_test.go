package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/aleister1102/stockwatch/internal/models"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, c *Collector) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := c.registry.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestCollector_RecordsCycleOutcomes(t *testing.T) {
	c := NewCollector()
	at := time.Unix(1_700_000_000, 0)

	c.ObserveCycle("baseline", 2*time.Second, true, at)
	c.ObserveCycle("soft_failure", time.Second, false, at.Add(time.Minute))
	c.ObserveCycle("changed", 3*time.Second, true, at.Add(2*time.Minute))
	c.IncAlert()
	c.IncNotifyFailure()

	mfs := gather(t, c)

	cycles := mfs["stockwatch_cycles_total"]
	require.NotNil(t, cycles)
	byStatus := map[string]float64{}
	for _, m := range cycles.GetMetric() {
		byStatus[labelValue(m, "status")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"baseline": 1, "soft_failure": 1, "changed": 1}, byStatus)

	assert.Equal(t, 1.0, mfs["stockwatch_alerts_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, mfs["stockwatch_notify_failures_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, uint64(3), mfs["stockwatch_cycle_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, float64(at.Add(2*time.Minute).Unix()), mfs["stockwatch_last_success_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
}

func TestCollector_SetSignal(t *testing.T) {
	c := NewCollector()
	at := time.Unix(1_700_000_000, 0)

	counts, err := models.NewCountSignal(at, models.Metrics{{Name: "men", Value: 10}, {Name: "women", Value: 42}})
	require.NoError(t, err)
	c.SetSignal(counts)

	values := map[string]float64{}
	for _, m := range gather(t, c)["stockwatch_signal_value"].GetMetric() {
		values[labelValue(m, "metric")] = m.GetGauge().GetValue()
	}
	assert.Equal(t, map[string]float64{"men": 10, "women": 42}, values)

	// Switching kind drops the stale per-metric series.
	items, err := models.NewItemSignal(at, 12, []string{"a | b | c"})
	require.NoError(t, err)
	c.SetSignal(items)

	series := gather(t, c)["stockwatch_signal_value"].GetMetric()
	require.Len(t, series, 1)
	assert.Equal(t, ItemCountMetric, labelValue(series[0], "metric"))
	assert.Equal(t, 12.0, series[0].GetGauge().GetValue())
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveCycle("baseline", time.Second, true, time.Now())
		c.IncAlert()
		c.IncNotifyFailure()
		c.SetSignal(models.Signal{})
	})
}

func TestServer_ServesMetrics(t *testing.T) {
	c := NewCollector()
	c.IncAlert()

	srv := NewServer(config.MetricsConfig{Enabled: true, ListenAddr: "127.0.0.1:0", Path: "/metrics"}, c, zerolog.Nop())
	require.NoError(t, srv.Start())

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Shutdown(ctx))
		require.NoError(t, <-done)
	}()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "stockwatch_alerts_total 1")
}
