// File: internal/infra/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	billingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_api_requests_total",
			Help: "Billing API calls per endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	billingLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_api_request_duration_ms",
			Help:    "Billing API call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"endpoint"},
	)

	checkoutSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Subscription submissions per result (success|failure|rejected).",
		},
		[]string{"result"},
	)

	couponValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_validations_total",
			Help: "Coupon validation attempts per outcome (valid|invalid|skipped|superseded).",
		},
		[]string{"outcome"},
	)

	sessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_sessions_started_total",
			Help: "Checkout sessions created.",
		},
	)
)

// ObserveBillingRequest records one billing API call.
func ObserveBillingRequest(endpoint, outcome string, durationMs float64) {
	billingRequests.WithLabelValues(endpoint, outcome).Inc()
	billingLatencyMs.WithLabelValues(endpoint).Observe(durationMs)
}

func IncCheckoutSubmission(result string) {
	checkoutSubmissions.WithLabelValues(result).Inc()
}

func IncCouponValidation(outcome string) {
	couponValidations.WithLabelValues(outcome).Inc()
}

func IncSessionStarted() { sessionsStarted.Inc() }
