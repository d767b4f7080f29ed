package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var once sync.Once

// MustRegister registers all collectors with Prometheus exactly once.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			billingRequests,
			billingLatencyMs,
			checkoutSubmissions,
			couponValidations,
			sessionsStarted,
		)
	})
}

// Handler returns the /metrics endpoint handler, registering on first use.
func Handler() http.Handler {
	MustRegister()
	return promhttp.Handler()
}
