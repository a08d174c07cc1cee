// Package metrics объявляет метрики Prometheus шлюза.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProxyRequests считает запросы, прошедшие через прокси, по приложению, методу и коду ответа.
	ProxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heavyd_proxy_requests_total",
		Help: "Requests relayed to the Apps Script upstream.",
	}, []string{"app", "method", "code"})

	// UpstreamDuration — время ответа upstream.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heavyd_upstream_duration_seconds",
		Help:    "Latency of Apps Script upstream calls.",
		Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
	}, []string{"app"})

	// BackendCalls считает вызовы клиента бэкенда по действию и исходу.
	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heavyd_backend_calls_total",
		Help: "Typed backend client calls by action and outcome.",
	}, []string{"action", "outcome"})

	// CacheLookups считает попадания и промахи кеша.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heavyd_cache_lookups_total",
		Help: "Cache lookups by store and result.",
	}, []string{"store", "result"})
)
