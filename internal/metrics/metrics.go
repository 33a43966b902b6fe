package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

var (
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wabalerts_dispatch_total",
			Help: "Total notification dispatches by event kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wabalerts_gateway_request_duration_seconds",
			Help:    "Duration of messaging gateway HTTP requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	BroadcastRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wabalerts_broadcast_recipients",
			Help:    "Number of recipients per group broadcast.",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2500},
		},
	)
)
