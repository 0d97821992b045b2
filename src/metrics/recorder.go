package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder mirrors the analyzer's own atomic counters onto Prometheus
// collectors for scraping. It implements core.Recorder structurally — this
// package is never imported by src/core, only the other way around.
type Recorder struct {
	updatesTotal     *prometheus.CounterVec
	trackedSymbols   prometheus.Gauge
	thresholdSymbols prometheus.Gauge
	latency          prometheus.Histogram
}

// New creates a Recorder registered on the default Prometheus registry,
// with metric names prefixed by namespace.
func New(namespace string) *Recorder {
	return &Recorder{
		updatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "updates_total",
				Help:      "Total number of ingest-path updates by outcome.",
			},
			[]string{"outcome"},
		),
		trackedSymbols: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tracked_symbols",
				Help:      "Number of symbols currently held in the registry.",
			},
		),
		thresholdSymbols: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "threshold_symbols",
				Help:      "Number of symbols currently inside the alert band.",
			},
		),
		latency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Duration of a single process_trade call.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (r *Recorder) RecordProcessed() {
	r.updatesTotal.WithLabelValues("processed").Inc()
}

func (r *Recorder) RecordDroppedMalformed() {
	r.updatesTotal.WithLabelValues("dropped_malformed").Inc()
}

func (r *Recorder) RecordDroppedCapacity() {
	r.updatesTotal.WithLabelValues("dropped_capacity").Inc()
}

func (r *Recorder) RecordTrackedSymbols(n int) {
	r.trackedSymbols.Set(float64(n))
}

func (r *Recorder) RecordThresholdSymbols(n int) {
	r.thresholdSymbols.Set(float64(n))
}

func (r *Recorder) RecordLatency(seconds float64) {
	r.latency.Observe(seconds)
}
