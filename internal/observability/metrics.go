package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DeliveriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "courier_dispatch", Name: "deliveries_created_total",
		Help: "Total number of deliveries created",
	})

	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courier_dispatch", Name: "claims_total",
			Help: "Total claim attempts by outcome",
		},
		[]string{"result"},
	)

	TrackingSamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "courier_dispatch", Name: "tracking_samples_total",
		Help: "Total tracking samples appended",
	})

	NearbySearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courier_dispatch", Name: "nearby_search_duration_seconds",
		Help:    "Nearby driver search latency",
		Buckets: prometheus.DefBuckets,
	})

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courier_dispatch", Name: "status_transitions_total",
			Help: "Delivery status transitions applied",
		},
		[]string{"to"},
	)
)
