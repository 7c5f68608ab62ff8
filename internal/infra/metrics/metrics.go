package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_lifecycle_transitions_total",
		Help: "Lifecycle transitions by entity kind and target status",
	}, []string{"kind", "status"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_submissions_total",
		Help: "Content submissions by kind",
	}, []string{"kind"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency keyed by the chi route
// pattern so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
