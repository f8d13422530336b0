package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Checkout session requests by outcome",
		},
		[]string{"outcome"},
	)

	salesMaterialized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_materialized_total",
			Help: "Ticket units materialized from verified payments",
		},
	)

	paymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verification requests by outcome",
		},
		[]string{"outcome"},
	)

	withdrawalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawal_transitions_total",
			Help: "Withdrawal processing requests by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	upstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_duration_seconds",
			Help:    "Duration of calls to the payment provider, data store and notifier",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)
)

func RecordCheckout(outcome string) {
	checkoutSessions.WithLabelValues(outcome).Inc()
}

func RecordSalesMaterialized(units int) {
	salesMaterialized.Add(float64(units))
}

func RecordVerification(outcome string) {
	paymentVerifications.WithLabelValues(outcome).Inc()
}

func RecordWithdrawal(action, outcome string) {
	withdrawalTransitions.WithLabelValues(action, outcome).Inc()
}

// ObserveUpstream is meant to be deferred: defer monitoring.ObserveUpstream("stripe")().
func ObserveUpstream(target string) func() {
	start := time.Now()
	return func() {
		upstreamCallDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
	}
}
