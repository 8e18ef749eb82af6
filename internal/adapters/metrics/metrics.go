package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for UpstreamRequests.
const (
	OutcomeSuccess      = "success"
	OutcomeAuthExpired  = "auth_expired"
	OutcomeClientError  = "client_error"
	OutcomeServerError  = "server_error"
	OutcomeNetworkError = "network_error"
)

var (
	// UpstreamRequests counts calls against the clinic API by operation
	// and outcome. Replayed calls after a token renewal count twice.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_api_requests_total",
			Help: "Requests dispatched to the clinic API.",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamDuration observes clinic API round-trip latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinic_api_request_duration_seconds",
			Help:    "Clinic API round-trip latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// TokenRenewals counts credential renewal attempts. Concurrent
	// failures coalesced into one renewal count once.
	TokenRenewals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_renewals_total",
			Help: "Access-credential renewal attempts.",
		},
		[]string{"result"},
	)
)
