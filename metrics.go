package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpRequestsTotal counts served requests. The path label holds the route
// template when the request went through the router.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skycast_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// externalRequestDuration observes round trips to the weather provider.
var externalRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "skycast_external_request_duration_seconds",
	Help:    "Duration of outbound requests to the weather provider, by host.",
	Buckets: prometheus.DefBuckets,
}, []string{"host"})

// proxyCacheTotal counts forecast cache lookups by outcome (hit, miss, error).
var proxyCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skycast_proxy_cache_total",
	Help: "Total number of forecast cache lookups by result.",
}, []string{"result"})
