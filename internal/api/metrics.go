package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-operation request counts and latencies. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the client metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cropguard_client_requests_total",
				Help: "Total number of backend requests by operation and status code",
			},
			[]string{"op", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cropguard_client_request_duration_seconds",
				Help:    "Duration of backend requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(op, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}
