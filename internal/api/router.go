package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every endpoint of h and wraps the router in the
// request ID, CORS, logging and recovery middleware
func NewRouter(h *AnalysisHandler) http.Handler {
	router := mux.NewRouter()
	router.Use(mux.MiddlewareFunc(MetricsMiddleware()))

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/indicators", h.Indicators).Methods(http.MethodPost)
	v1.HandleFunc("/signals", h.Signals).Methods(http.MethodPost)
	v1.HandleFunc("/score", h.Score).Methods(http.MethodPost)
	v1.HandleFunc("/symbols/{symbol}/analysis", h.Analysis).Methods(http.MethodGet)
	v1.HandleFunc("/correlation", h.Correlation).Methods(http.MethodGet)

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	return ChainMiddleware(
		RequestIDMiddleware(),
		CORSMiddleware(),
		LoggingMiddleware(),
		RecoveryMiddleware(),
	)(router)
}
