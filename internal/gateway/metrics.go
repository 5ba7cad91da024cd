package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pigeon",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status_code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pigeon",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	messagesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pigeon",
			Name:      "messages_received_total",
			Help:      "First-seen inbound messages accepted.",
		},
	)

	duplicateDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pigeon",
			Name:      "duplicate_deliveries_total",
			Help:      "Provider delivery retries suppressed by the dedupe window.",
		},
	)

	authFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pigeon",
			Name:      "auth_failures_total",
			Help:      "Webhook requests rejected for missing or invalid signatures.",
		},
	)

	decodeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pigeon",
			Name:      "decode_failures_total",
			Help:      "Webhook requests rejected for missing or malformed fields.",
		},
	)
)

// metricsMiddleware records request counts and latency per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unknown"
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestDurationSeconds.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
	})
}
