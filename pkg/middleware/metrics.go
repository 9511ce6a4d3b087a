package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
)

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Metrics labels requests by route pattern rather than raw path so IDs do not
// explode label cardinality. router may be nil.
func Metrics(m *HTTPMetrics, router *httprouter.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			path := "unmatched"
			if router != nil {
				if handle, params, _ := router.Lookup(r.Method, r.URL.Path); handle != nil {
					path = routePattern(r.URL.Path, params)
				}
			}

			status := strconv.Itoa(wrapped.statusCode)
			m.requests.WithLabelValues(r.Method, path, status).Inc()
			m.duration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

func routePattern(path string, params httprouter.Params) string {
	if len(params) == 0 {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		for _, p := range params {
			if seg == p.Value {
				segments[i] = ":" + p.Key
				break
			}
		}
	}
	return strings.Join(segments, "/")
}
