// Package metrics exposes Prometheus counters for the driver loop.
//
// Metrics are never served over the network. They are written to a
// node-exporter textfile after each tick when a path is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scriptrunner"

// Evaluation results.
const (
	ResultTrue    = "true"
	ResultFalse   = "false"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Collector records engine activity. A nil *Collector is valid and records
// nothing, so callers never need to check whether metrics are enabled.
type Collector struct {
	registry *prometheus.Registry

	ticks            prometheus.Counter
	stateChanges     *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
	evaluations      *prometheus.CounterVec
	dispatches       *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	stateKeys        prometheus.Gauge
}

// NewCollector creates the collectors and registers them on registry. If
// registry is nil a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of completed loop ticks",
		}),
		stateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes_total",
			Help:      "Total number of observed state value changes",
		}, []string{"provider"}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total number of failed provider snapshots",
		}, []string{"provider"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_evaluations_total",
			Help:      "Total number of rule condition evaluations by result",
		}, []string{"result"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of dispatch attempts by outcome",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Wall time of dispatched commands in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 9), // 1ms to ~65s
		}),
		stateKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_keys",
			Help:      "Number of keys held in the state store",
		}),
	}

	registry.MustRegister(
		c.ticks,
		c.stateChanges,
		c.providerErrors,
		c.evaluations,
		c.dispatches,
		c.dispatchDuration,
		c.stateKeys,
	)
	return c
}

// Registry returns the registry the collectors are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordTick counts one completed tick.
func (c *Collector) RecordTick() {
	if c == nil {
		return
	}
	c.ticks.Inc()
}

// RecordStateChanges counts n changed keys contributed by provider.
func (c *Collector) RecordStateChanges(provider string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.stateChanges.WithLabelValues(provider).Add(float64(n))
}

// RecordProviderError counts a failed snapshot.
func (c *Collector) RecordProviderError(provider string) {
	if c == nil {
		return
	}
	c.providerErrors.WithLabelValues(provider).Inc()
}

// RecordEvaluation counts one rule evaluation with one of the Result
// constants.
func (c *Collector) RecordEvaluation(result string) {
	if c == nil {
		return
	}
	c.evaluations.WithLabelValues(result).Inc()
}

// RecordDispatch counts one dispatch attempt. The duration is only observed
// for commands that actually ran.
func (c *Collector) RecordDispatch(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.dispatches.WithLabelValues(outcome).Inc()
	if duration > 0 {
		c.dispatchDuration.Observe(duration.Seconds())
	}
}

// SetStateKeys sets the state store size.
func (c *Collector) SetStateKeys(n int) {
	if c == nil {
		return
	}
	c.stateKeys.Set(float64(n))
}

// WriteTextfile writes all registered metrics to path in the text
// exposition format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
