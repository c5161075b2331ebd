package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedata_reads_total",
			Help: "Total read operations served, by operation",
		},
		[]string{"operation"},
	)

	GetOrCreateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedata_get_or_create_total",
			Help: "Get-or-create lookups, by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedata_http_requests_total",
			Help: "HTTP API requests, by path and status",
		},
		[]string{"path", "status"},
	)
)
