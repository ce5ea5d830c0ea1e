// Package metrics holds the Prometheus business counters of the inventory domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SalesCounter counts committed sales.
	SalesCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_sales_total",
		Help: "Total number of committed sales",
	})

	// SalesRevenue accumulates the total amount of committed sales.
	SalesRevenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_sales_revenue_total",
		Help: "Sum of committed sale totals",
	})

	// SalesRejected counts sales aborted by validation, by reason.
	SalesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_sales_rejected_total",
			Help: "Sales rejected before commit",
		},
		[]string{"reason"},
	)

	// LedgerEntries counts ledger rows by kind.
	LedgerEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_ledger_entries_total",
			Help: "Ledger entries written, by kind",
		},
		[]string{"kind"},
	)

	// LowStockAlerts counts low-stock alerts queued.
	LowStockAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_low_stock_alerts_total",
		Help: "Low-stock alerts queued",
	})

	// SKURetries counts SKU regenerations after a unique conflict.
	SKURetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_sku_retries_total",
		Help: "SKU generations retried after a unique conflict",
	})

	// JobsProcessed counts background jobs by type and outcome.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_jobs_processed_total",
			Help: "Background jobs processed, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// HTTPRequests counts served requests by route template and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration records request latency in seconds.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
