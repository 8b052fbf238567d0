// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpendituresCreated counts successfully persisted expenditures.
	ExpendituresCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitit_expenditures_created_total",
		Help: "Number of expenditures created.",
	})

	// SplitsSettled counts successful settlements.
	SplitsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitit_splits_settled_total",
		Help: "Number of expenditure splits settled.",
	})

	// SettlementConflicts counts settlement attempts that lost the
	// compare-and-set race.
	SettlementConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitit_settlement_conflicts_total",
		Help: "Number of settlement attempts rejected because the split was already settled.",
	})

	// PaymentsCreated counts manual payment records.
	PaymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitit_payments_created_total",
		Help: "Number of manual payments recorded.",
	})

	// RequestDuration observes HTTP request latency by route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitit_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
