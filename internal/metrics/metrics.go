// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cambistas_http_requests_total",
		Help: "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cambistas_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LedgerMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cambistas_ledger_mutations_total",
		Help: "Committed ledger mutations by operation.",
	}, []string{"operation"})

	PersistenceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cambistas_persistence_failures_total",
		Help: "Blob store writes that failed, by blob.",
	}, []string{"blob"})

	ReportCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cambistas_report_cache_total",
		Help: "Report cache lookups by result (hit or miss).",
	}, []string{"result"})

	BackupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cambistas_backups_total",
		Help: "Snapshot backup runs by result.",
	}, []string{"result"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cambistas_websocket_clients",
		Help: "Connected ledger event subscribers.",
	})
)
