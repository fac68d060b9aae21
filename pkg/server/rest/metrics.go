package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	tileRejected prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphtile",
			Name:      "http_requests_total",
			Help:      "http requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphtile",
			Name:      "http_request_duration_seconds",
			Help:      "http request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		tileRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphtile",
			Name:      "tiles_rejected_total",
			Help:      "tiles refused because they were built with another record layout.",
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.tileRejected)
	return m
}

// PromeHttpMiddleware. labels by chi route pattern so path params do not explode cardinality.
func PromeHttpMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
