// Package metrics exposes Prometheus instrumentation for indicator runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors for batch runs.
type Recorder struct {
	runs        *prometheus.CounterVec
	instruments *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastClose   *prometheus.GaugeVec
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscope_runs_total",
				Help: "Total number of batch runs",
			},
			[]string{"trigger"},
		),
		instruments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscope_instruments_total",
				Help: "Instruments processed, by outcome (ok, data, config, fetch)",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockscope_run_duration_seconds",
				Help:    "Duration of a fetch and compute run in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
		lastClose: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockscope_last_close",
				Help: "Last close seen for a symbol",
			},
			[]string{"symbol"},
		),
	}
	reg.MustRegister(r.runs, r.instruments, r.duration, r.lastClose)
	return r
}

// RecordRun records one completed run.
func (r *Recorder) RecordRun(trigger string, seconds float64) {
	r.runs.WithLabelValues(trigger).Inc()
	r.duration.WithLabelValues(trigger).Observe(seconds)
}

// RecordInstrument counts one instrument outcome.
func (r *Recorder) RecordInstrument(outcome string) {
	r.instruments.WithLabelValues(outcome).Inc()
}

// RecordLastClose records the most recent close for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}
