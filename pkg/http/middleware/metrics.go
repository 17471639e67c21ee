package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	applogger "FinGauge/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fingauge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served by the dashboard API",
		},
		[]string{"route", "method", "status"},
	)

	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fingauge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request duration. Forced refreshes wait on upstream feeds, hence the wide upper buckets.",
			Buckets:   []float64{0.005, 0.02, 0.1, 0.5, 2, 10, 30},
		},
		[]string{"route", "method", "status", "class"},
	)

	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fingauge",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served",
		},
		[]string{"route", "method"},
	)

	respSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fingauge",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Response body size. Browse windows over decades of daily closes reach the top buckets.",
			Buckets:   []float64{512, 2_048, 16_384, 65_536, 262_144, 1_048_576},
		},
		[]string{"route", "method", "status", "class"},
	)

	regOnce sync.Once
)

// Metrics is a net/http middleware recording request counts, latency,
// in-flight gauge and response sizes. When l is set, 5xx responses log
// as errors and anything over slowThreshold logs as a warning.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) func(http.Handler) http.Handler {
	regOnce.Do(func() {
		prometheus.MustRegister(reqTotal, reqDuration, inFlight, respSize)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(r)
			method := r.Method

			inFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			rw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			// Scanners probing random paths must not mint new series.
			recorded := route
			if rw.status == http.StatusNotFound {
				recorded = "unmatched"
			}

			status := strconv.Itoa(rw.status)
			class := statusClass(rw.status)
			elapsed := time.Since(start)

			reqTotal.WithLabelValues(recorded, method, status).Inc()
			reqDuration.WithLabelValues(recorded, method, status, class).Observe(elapsed.Seconds())
			respSize.WithLabelValues(recorded, method, status, class).Observe(float64(rw.written))
			inFlight.WithLabelValues(route, method).Dec()

			if l == nil {
				return
			}
			if rw.status >= 500 {
				l.Error("http request failed",
					applogger.String("route", recorded),
					applogger.String("method", method),
					applogger.String("status", status),
					applogger.Duration("duration_ms", elapsed),
					applogger.Int("bytes", rw.written),
				)
				return
			}
			if slowThreshold > 0 && elapsed >= slowThreshold {
				l.Warn("http request slow",
					applogger.String("route", recorded),
					applogger.String("method", method),
					applogger.String("status", status),
					applogger.Duration("duration_ms", elapsed),
					applogger.Int("bytes", rw.written),
				)
			}
		})
	}
}

type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// routeLabel collapses the one parameterized route so label cardinality
// stays bounded by the route table.
func routeLabel(r *http.Request) string {
	p := r.URL.Path
	if strings.HasPrefix(p, "/api/indicators/") {
		return "/api/indicators/:name"
	}
	return p
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
