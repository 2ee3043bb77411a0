package notifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushTickets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_tickets_total",
			Help: "Push tickets received from the provider, by status",
		},
		[]string{"status"},
	)

	pushBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_batches_total",
			Help: "Push batches sent, by result",
		},
		[]string{"result"},
	)

	skippedTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_tokens_skipped_total",
			Help: "Admin push tokens left out of a fan-out, by reason",
		},
		[]string{"reason"},
	)

	fanOutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_fanout_duration_seconds",
			Help:    "Duration of one new-user notification fan-out",
			Buckets: prometheus.DefBuckets,
		},
	)
)
