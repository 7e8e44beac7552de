package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WebhookRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total number of payment webhook deliveries received",
		},
	)

	SignatureRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_signature_rejections_total",
			Help: "Total number of deliveries rejected for an invalid authenticity tag",
		},
	)

	PayloadRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_payload_rejections_total",
			Help: "Total number of deliveries rejected as malformed or incomplete",
		},
	)

	DispatchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_outcomes_total",
			Help: "Terminal dispatch outcomes by kind",
		},
		[]string{"outcome"},
	)

	UnlockAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lock_unlock_attempts_total",
			Help: "Total number of unlock commands sent to the lock client",
		},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Duration of a dispatch from decision to terminal outcome",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(WebhookRequestsTotal)
	prometheus.MustRegister(SignatureRejectionsTotal)
	prometheus.MustRegister(PayloadRejectionsTotal)
	prometheus.MustRegister(DispatchOutcomesTotal)
	prometheus.MustRegister(UnlockAttemptsTotal)
	prometheus.MustRegister(DispatchDuration)
}
