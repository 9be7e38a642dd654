package rollup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by every run
type Metrics struct {
	Runs          *prometheus.CounterVec
	Compositions  *prometheus.CounterVec
	Truncations   prometheus.Counter
	EntriesPosted prometheus.Counter
	RunDuration   prometheus.Histogram
	LastPosted    prometheus.Gauge
}

// NewMetrics registers the rollup collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logpost_rollup_runs_total",
			Help: "Rollup runs by final state",
		}, []string{"state"}),

		// source: generated, fallback or sentinel
		Compositions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logpost_compositions_total",
			Help: "Composed posts by text source",
		}, []string{"source"}),

		Truncations: factory.NewCounter(prometheus.CounterOpts{
			Name: "logpost_truncations_total",
			Help: "Composed posts cut to the length limit",
		}),

		EntriesPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "logpost_entries_posted_total",
			Help: "Entries included in published posts",
		}),

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "logpost_rollup_duration_seconds",
			Help:    "Rollup run latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		LastPosted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "logpost_last_posted_timestamp_seconds",
			Help: "Unix time of the last published post",
		}),
	}
}
