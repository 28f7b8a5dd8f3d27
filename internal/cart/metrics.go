package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Total number of cart mutations by operation",
		},
		[]string{"operation"},
	)

	persistWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_persist_writes_total",
			Help: "Total number of cart persistence writes by result",
		},
		[]string{"result"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_notifications_total",
			Help: "Total number of persisted-cart notifications by result",
		},
		[]string{"result"},
	)

	persistWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_persist_write_duration_seconds",
			Help:    "Time spent persisting one cart snapshot, retries included",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Operation labels.
const (
	opAdd       = "add"
	opIncrement = "increment"
	opDecrement = "decrement"
)

// Persist and notification result labels.
const (
	resultSuccess = "success"
	resultRetry   = "retry"
	resultFailure = "failure"
	resultDropped = "dropped"
)
