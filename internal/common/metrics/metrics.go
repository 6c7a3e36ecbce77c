// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total number of committed application status transitions",
		},
		[]string{"from", "to"},
	)

	TransitionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_rejected_total",
			Help: "Total number of rejected transition attempts",
		},
		[]string{"error_code"},
	)

	BatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_batch_size",
			Help:    "Number of applications per batch transition",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"to"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_notifications_sent_total",
			Help: "Total number of notifications delivered",
		},
		[]string{"kind"},
	)

	NotificationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_notifications_failed_total",
			Help: "Total number of notification delivery failures",
		},
		[]string{"kind"},
	)
)
