package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP API
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"service", "error_type"},
	)

	// Market data provider
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of market data provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "api", "status"},
	)

	ProviderRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_retries_total",
			Help: "Total number of retried market data provider calls",
		},
		[]string{"provider", "api"},
	)

	// Screening
	CandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_candidates_total",
			Help: "Screening candidates by outcome (scored, skipped, filtered, failed)",
		},
		[]string{"outcome"},
	)

	ScreeningRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screener_run_duration_seconds",
			Help:    "Duration of complete screening runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	SignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_generated_total",
			Help: "Signal events raised, by rule",
		},
		[]string{"signal"},
	)
)
