package account

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	accountRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "penora_account_requests_total",
			Help: "Total number of Account Service calls by call and outcome.",
		},
		[]string{"call", "status"}, // status: success, auth_error, network_error, malformed
	)
	accountRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "penora_account_request_duration_seconds",
			Help:    "Histogram of Account Service call durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)
)
