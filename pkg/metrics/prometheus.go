package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// riskColors enumerates the gauge states kept per indicator.
var riskColors = []string{"green", "yellow", "red", "grey"}

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	indicatorColor  *prometheus.GaugeVec
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	errorsTotal     *prometheus.CounterVec
	wsClients       prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingauge_fetch_total",
				Help: "Total number of upstream feed fetches",
			},
			[]string{"feed", "outcome"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fingauge_fetch_duration_seconds",
				Help:    "Duration of upstream feed fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"feed"},
		),
		indicatorColor: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fingauge_indicator_color",
				Help: "Current classification of each indicator (1 for the active color)",
			},
			[]string{"indicator", "color"},
		),
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingauge_refresh_total",
				Help: "Total number of dashboard refresh runs",
			},
			[]string{"outcome"},
		),
		refreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fingauge_refresh_duration_seconds",
				Help:    "Duration of dashboard refresh runs in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fingauge_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		wsClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "fingauge_ws_clients",
				Help: "Current number of connected WebSocket clients",
			},
		),
	}
}

// RecordFetch records one upstream fetch attempt and its duration.
func (r *Recorder) RecordFetch(feed, outcome string, seconds float64) {
	r.fetchTotal.WithLabelValues(feed, outcome).Inc()
	r.fetchDuration.WithLabelValues(feed).Observe(seconds)
}

// RecordIndicator records the current color of an indicator.
func (r *Recorder) RecordIndicator(name, color string) {
	for _, c := range riskColors {
		v := 0.0
		if c == color {
			v = 1.0
		}
		r.indicatorColor.WithLabelValues(name, c).Set(v)
	}
}

// RecordRefresh records one dashboard refresh run and its duration.
func (r *Recorder) RecordRefresh(outcome string, seconds float64) {
	r.refreshTotal.WithLabelValues(outcome).Inc()
	r.refreshDuration.Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordClients records the current WebSocket client count.
func (r *Recorder) RecordClients(n int) {
	r.wsClients.Set(float64(n))
}
