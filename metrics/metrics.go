package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clan_sync_operations_total",
		Help: "Add/Remove operations handled, by operation and outcome.",
	}, []string{"operation", "outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clan_sync_events_published_total",
		Help: "Events published to the bus, by topic.",
	}, []string{"topic"})
)
