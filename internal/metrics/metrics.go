// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StoreOperations counts document store calls by operation and result.
	StoreOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "giveaway",
		Name:      "store_operations_total",
		Help:      "Document store operations by op and result.",
	}, []string{"op", "result"})

	// VerificationChecks counts verification outcomes (found, notfound, error).
	VerificationChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "giveaway",
		Name:      "verification_checks_total",
		Help:      "Participant verification checks by outcome.",
	}, []string{"outcome"})

	// LiveSubscriptions is the number of open live query subscriptions.
	LiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "giveaway",
		Name:      "live_subscriptions",
		Help:      "Open live query subscriptions.",
	})
)

func init() {
	prometheus.MustRegister(StoreOperations, VerificationChecks, LiveSubscriptions)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
