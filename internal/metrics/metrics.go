// Package metrics exposes watcher counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/aleister1102/stockwatch/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockwatch"

// ItemCountMetric labels the item count of an items signal in signal_value.
const ItemCountMetric = "item_count"

// Collector owns a private registry with the watcher's collectors.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry       *prometheus.Registry
	cycles         *prometheus.CounterVec
	alerts         prometheus.Counter
	notifyFailures prometheus.Counter
	cycleDuration  prometheus.Histogram
	lastSuccess    prometheus.Gauge
	signalValue    *prometheus.GaugeVec
}

// NewCollector creates and registers all collectors, plus the Go runtime
// and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Watch cycles by outcome status.",
			}, []string{"status"},
		),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Change alerts delivered.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Notifications that could not be delivered.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one watch cycle.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that fetched a signal.",
		}),
		signalValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "signal_value",
				Help:      "Latest observed value per metric.",
			}, []string{"metric"},
		),
	}

	c.registry.MustRegister(
		c.cycles,
		c.alerts,
		c.notifyFailures,
		c.cycleDuration,
		c.lastSuccess,
		c.signalValue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveCycle records one finished cycle. success marks cycles that
// fetched a signal, whatever the comparison result.
func (c *Collector) ObserveCycle(status string, duration time.Duration, success bool, at time.Time) {
	if c == nil {
		return
	}
	c.cycles.WithLabelValues(status).Inc()
	c.cycleDuration.Observe(duration.Seconds())
	if success {
		c.lastSuccess.Set(float64(at.Unix()))
	}
}

func (c *Collector) IncAlert() {
	if c == nil {
		return
	}
	c.alerts.Inc()
}

func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.notifyFailures.Inc()
}

// SetSignal publishes the values of the latest signal. Counts signals export
// one series per metric; items signals export the item count.
func (c *Collector) SetSignal(signal models.Signal) {
	if c == nil || signal.IsZero() {
		return
	}
	c.signalValue.Reset()
	switch signal.Kind() {
	case models.SignalKindCounts:
		for _, m := range signal.Metrics() {
			c.signalValue.WithLabelValues(m.Name).Set(float64(m.Value))
		}
	case models.SignalKindItems:
		c.signalValue.WithLabelValues(ItemCountMetric).Set(float64(signal.ItemCount()))
	}
}
