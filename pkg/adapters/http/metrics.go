package http

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	records     prometheus.Histogram
	diagnostics prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_compile_requests_total",
				Help: "Total number of compile requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "arbor_compile_duration_seconds",
				Help: "Duration of dialog compilations",
			},
			[]string{"endpoint"},
		),
		records: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arbor_compile_records",
				Help:    "Number of records per compiled dialog",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		diagnostics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arbor_compile_diagnostics_total",
				Help: "Total number of warnings reported by compilations",
			},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.records, m.diagnostics)
	return m
}
