package devserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	signupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "penora_devserver_signups_total",
		Help: "Total number of successful sign-ups.",
	})
	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "penora_devserver_logins_total",
			Help: "Total number of login attempts by method and status.",
		},
		[]string{"method", "status"},
	)
	storiesSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "penora_devserver_stories_saved_total",
		Help: "Total number of saved stories.",
	})
)
