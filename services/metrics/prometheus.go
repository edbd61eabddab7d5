// Package metricsvc exposes engine metrics to prometheus.
package metricsvc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/marksengine/core"
)

type PrometheusMetrics struct {
	registry    *prometheus.Registry
	evaluations *prometheus.CounterVec
}

var _ core.Metrics = (*PrometheusMetrics)(nil) // interface compliance check

// NewPrometheusMetrics registers the engine metrics, plus the go and process collectors, on a
// dedicated registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marks",
				Name:      "evaluations_total",
				Help:      "Subject evaluations by subject type and derived status.",
			},
			[]string{"subject_type", "status"},
		),
	}
	m.registry.MustRegister(
		m.evaluations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetrics) ObserveEvaluation(subjectType, status string) {
	m.evaluations.WithLabelValues(subjectType, status).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
