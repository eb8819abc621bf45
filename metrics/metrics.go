package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "accredis",
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accredis",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "accredis",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accredis",
			Name:      "ai_calls_total",
			Help:      "Calls to the external AI service by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	aiCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "accredis",
			Name:      "ai_call_duration_seconds",
			Help:      "Round-trip time of external AI calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"operation"},
	)

	documentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accredis",
			Name:      "document_status_transitions_total",
			Help:      "Document lifecycle transitions by target status.",
		},
		[]string{"status"},
	)

	registerOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
			aiCallsTotal, aiCallDuration, documentTransitions)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records RPS, latency and in-flight requests. Routes are labelled by
// their mux template so ids do not explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The wrapped writer cannot be hijacked.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

// ObserveAICall records one external AI round trip.
func ObserveAICall(operation string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	aiCallsTotal.WithLabelValues(operation, outcome).Inc()
	aiCallDuration.WithLabelValues(operation).Observe(took.Seconds())
}

func ObserveTransition(status string) {
	documentTransitions.WithLabelValues(status).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
