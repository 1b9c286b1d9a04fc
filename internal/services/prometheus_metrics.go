package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	importsTotal       *prometheus.CounterVec
	importDuration     prometheus.Histogram
	importRowsTotal    *prometheus.CounterVec
	transformCallTotal *prometheus.CounterVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		importsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_imports_total",
				Help: "Total number of statement imports by outcome",
			},
			[]string{"status"},
		),
		importDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statement_import_duration_seconds",
				Help:    "Statement import duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		importRowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_import_rows_total",
				Help: "Statement rows by import disposition",
			},
			[]string{"disposition"},
		),
		transformCallTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transform_api_calls_total",
				Help: "Total number of transform API calls by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *PrometheusMetrics) RecordImport(status string, durationSeconds float64) {
	m.importsTotal.WithLabelValues(status).Inc()
	m.importDuration.Observe(durationSeconds)
}

func (m *PrometheusMetrics) RecordImportRows(inserted, skipped, errors int) {
	m.importRowsTotal.WithLabelValues("inserted").Add(float64(inserted))
	m.importRowsTotal.WithLabelValues("skipped_duplicate").Add(float64(skipped))
	m.importRowsTotal.WithLabelValues("error").Add(float64(errors))
}

func (m *PrometheusMetrics) RecordTransformCall(outcome string) {
	m.transformCallTotal.WithLabelValues(outcome).Inc()
}
