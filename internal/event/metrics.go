package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_events_published_total",
			Help: "Domain events published, by type and status",
		},
		[]string{"type", "status"},
	)

	eventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_events_consumed_total",
			Help: "Domain events consumed by the worker, by type and status",
		},
		[]string{"type", "status"},
	)
)
