// Package metrics exposes Prometheus counters for HTTP traffic, store
// fallback and image analysis.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple servers in one process do
// not collide on registration.
//
// Metrics:
//   - nutrameter_http_requests_total{method,route,status}
//   - nutrameter_http_request_duration_seconds{method,route}
//   - nutrameter_store_fallback_total{op}
//   - nutrameter_analysis_total{provider,result}
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	FallbackTotal   *prometheus.CounterVec
	AnalysisTotal   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrameter_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nutrameter_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		FallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrameter_store_fallback_total",
				Help: "Operations served by the fallback store because the durable store was unavailable",
			},
			[]string{"op"},
		),
		AnalysisTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrameter_analysis_total",
				Help: "Image analyses by provider and result",
			},
			[]string{"provider", "result"}, // "ok" or "error"
		),
	}
}

// ObserveFallback satisfies store.FallbackObserver.
func (m *Metrics) ObserveFallback(op string) {
	m.FallbackTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveAnalysis(provider string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.AnalysisTotal.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
