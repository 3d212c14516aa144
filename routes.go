package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes builds the HTTP handler tree for the server.
func (cfg *apiConfig) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, corsMiddleware, metricsMiddleware)

	router.HandleFunc("/api/weather", cfg.handlerWeather).Methods(http.MethodGet)
	router.HandleFunc("/api/config", cfg.handlerConfig).Methods(http.MethodGet)
	router.HandleFunc("/healthz", cfg.handlerHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if cfg.devMode {
		cfg.logger.Debug("development mode enabled. Registering /dev/flush-cache endpoint.")
		router.HandleFunc("/dev/flush-cache", cfg.handlerFlushCache).Methods(http.MethodPost)
	}

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg.respondWithError(w, http.StatusNotFound, "Not Found", nil)
	})

	return router
}
