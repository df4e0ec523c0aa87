// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recompute outcomes.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourledger",
		Name:      "rpc_requests_total",
		Help:      "Connect procedure calls by procedure and code.",
	}, []string{"procedure", "code"})

	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tourledger",
		Name:      "rpc_duration_seconds",
		Help:      "Connect procedure latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	SeatRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourledger",
		Name:      "seat_recomputes_total",
		Help:      "Seat cache recomputations by result.",
	}, []string{"result"})

	SeatRecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tourledger",
		Name:      "seat_recompute_duration_seconds",
		Help:      "Time spent reading bookings and writing the seat cache.",
		Buckets:   prometheus.DefBuckets,
	})

	SettlementExports = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tourledger",
		Name:      "settlement_exports_total",
		Help:      "Settlement workbooks generated.",
	})
)
