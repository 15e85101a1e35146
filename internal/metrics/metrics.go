// Package metrics exposes sync activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modesync"

// Outcomes recorded on modesync_sync_runs_total.
const (
	OutcomeSuccess = "success"
	OutcomeDryRun  = "dry_run"
	OutcomeError   = "error"
)

// Recorder owns a private registry so that tests and multiple daemons in
// one process do not collide on the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	runs      *prometheus.CounterVec
	duration  prometheus.Histogram
	written   prometheus.Gauge
	warnings  *prometheus.CounterVec
	discovery *prometheus.GaugeVec
	lastRun   prometheus.Gauge
}

// New creates a Recorder with Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		written: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "modes_written",
			Help:      "Modes written by the last successful sync.",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_warnings_total",
			Help:      "Ignored configuration references by field.",
		}, []string{"field"}),
		discovery: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovered_modes",
			Help:      "Modes found by the last discovery, by category.",
		}, []string{"category"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix time of the last completed sync.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.runs, r.duration, r.written, r.warnings, r.discovery, r.lastRun,
	)

	// Every strategy and outcome is exposed at zero before the first run.
	for _, s := range ordering.Strategies() {
		for _, outcome := range Outcomes() {
			r.runs.WithLabelValues(string(s), outcome)
		}
	}
	return r
}

// Outcomes returns every outcome label value.
func Outcomes() []string {
	return []string{OutcomeSuccess, OutcomeDryRun, OutcomeError}
}

// ObserveSync records a finished run. written is ignored unless outcome is
// OutcomeSuccess.
func (r *Recorder) ObserveSync(strategy, outcome string, d time.Duration, written int) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(strategy, outcome).Inc()
	r.duration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		r.written.Set(float64(written))
	}
	r.lastRun.SetToCurrentTime()
}

// ObserveWarning counts one ignored reference.
func (r *Recorder) ObserveWarning(field string) {
	if r == nil {
		return
	}
	r.warnings.WithLabelValues(field).Inc()
}

// ObserveDiscovery sets the per-category gauges.
func (r *Recorder) ObserveDiscovery(byCategory map[mode.Category][]string) {
	if r == nil {
		return
	}
	for _, c := range mode.AllCategories() {
		r.discovery.WithLabelValues(string(c)).Set(float64(len(byCategory[c])))
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
