package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level counters for the API surface.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	deals    prometheus.Counter
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "status"})
	deals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deals_created_total",
		Help: "Deals persisted through the wizard or the deals API.",
	})
	reg.MustRegister(duration, requests, deals)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
		deals:    deals,
	}
}

// ObserveRequest records one served request.
func (m *HTTPMetrics) ObserveRequest(method, status string, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// IncDealCreated increments the created-deals counter.
func (m *HTTPMetrics) IncDealCreated() {
	if m == nil || m.deals == nil {
		return
	}
	m.deals.Inc()
}
