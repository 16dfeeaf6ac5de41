package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Booking metrics
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sev_reservations_created_total",
		Help: "Total reservations successfully created",
	})

	ReservationConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sev_reservation_conflicts_total",
		Help: "Booking attempts rejected because the interval was already held",
	})

	BookingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sev_booking_rejections_total",
		Help: "Booking attempts rejected before reaching the store",
	}, []string{"reason"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sev_reservation_transitions_total",
		Help: "Reservation lifecycle transitions applied",
	}, []string{"to"})

	ExpiredPending = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sev_reservations_expired_total",
		Help: "Pending reservations auto-cancelled by the expiry sweep",
	})

	// Store metrics
	ReserveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sev_store_reserve_latency_seconds",
		Help:    "Latency of atomic reserve operations",
		Buckets: prometheus.DefBuckets,
	})
)
