package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics. Recording methods are no-ops on a
// nil *Registry so components can run without metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal       *prometheus.CounterVec
	backtestDuration     prometheus.Histogram
	tradesTotal          *prometheus.CounterVec
	descriptionFallbacks prometheus.Counter
	batchJobsActive      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{Registry: reg}

	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradando_backtests_total",
			Help: "Total number of backtest runs",
		},
		[]string{"strategy", "status"},
	)
	r.backtestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradando_backtest_duration_seconds",
			Help:    "Backtest duration in seconds, including data fetch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)
	r.tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradando_trades_total",
			Help: "Total number of simulated fills",
		},
		[]string{"side", "reason"},
	)
	r.descriptionFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradando_description_fallbacks_total",
			Help: "Strategy descriptions served from the static fallback",
		},
	)
	r.batchJobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradando_batch_jobs_active",
			Help: "Number of batch backtest jobs currently running",
		},
	)

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.tradesTotal)
	reg.MustRegister(r.descriptionFallbacks)
	reg.MustRegister(r.batchJobsActive)

	return r
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(strategy, status string, duration float64) {
	if r == nil {
		return
	}
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordTrade records a simulated fill.
func (r *Registry) RecordTrade(side, reason string) {
	if r == nil {
		return
	}
	r.tradesTotal.WithLabelValues(side, reason).Inc()
}

// RecordDescriptionFallback records a static description served in place of
// a generated one.
func (r *Registry) RecordDescriptionFallback() {
	if r == nil {
		return
	}
	r.descriptionFallbacks.Inc()
}

// BatchJobStarted and BatchJobFinished track running batch jobs.
func (r *Registry) BatchJobStarted() {
	if r == nil {
		return
	}
	r.batchJobsActive.Inc()
}

func (r *Registry) BatchJobFinished() {
	if r == nil {
		return
	}
	r.batchJobsActive.Dec()
}

// WriteTextfile dumps every gathered metric to path in the node exporter
// textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
