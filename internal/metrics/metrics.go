// Package metrics holds the prometheus collectors for the piece check
// service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels recorded per request.
const (
	OutcomeNoDetections = "no_detections"
	OutcomeNoMatch      = "no_match"
	OutcomeFound        = "found"
	OutcomeError        = "error"
)

// Metrics holds the service collectors on a private registry. A nil
// *Metrics disables collection, which the pipeline tests rely on.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	inference prometheus.Histogram
}

// New creates the collectors and registers them.
func New() *Metrics {

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "piececheck_requests_total",
			Help: "Piece check requests by pipeline outcome.",
		}, []string{"outcome"}),
		inference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "piececheck_inference_seconds",
			Help:    "Detector inference latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.requests, m.inference)

	return m
}

// IncOutcome counts one completed request for the given outcome label.
func (m *Metrics) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// ObserveInference records the duration of one detector inference call.
func (m *Metrics) ObserveInference(d time.Duration) {
	if m == nil {
		return
	}
	m.inference.Observe(d.Seconds())
}

// Handler serves the prometheus scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
