package generation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "penora_generation_requests_total",
			Help: "Total number of story generation requests by backend and outcome.",
		},
		[]string{"backend", "status"},
	)
	generationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "penora_generation_request_duration_seconds",
			Help:    "Histogram of story generation durations.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"backend"},
	)
	generatedWords = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "penora_generation_words",
			Help:    "Histogram of generated story sizes in words.",
			Buckets: prometheus.LinearBuckets(100, 200, 10), // 100, 300, ..., 1900
		},
		[]string{"backend", "length"},
	)
)

func observe(backend, status string, started time.Time) {
	generationRequestsTotal.WithLabelValues(backend, status).Inc()
	generationRequestDuration.WithLabelValues(backend).Observe(time.Since(started).Seconds())
}
