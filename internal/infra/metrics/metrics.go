package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coworking_bookings_created_total",
		Help: "Created bookings by tariff purpose.",
	}, []string{"purpose"})

	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coworking_bookings_confirmed_total",
		Help: "Bookings confirmed by the operator.",
	})

	SlotConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coworking_slot_conflicts_total",
		Help: "Booking attempts rejected because the slot was taken.",
	})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coworking_notifications_emitted_total",
		Help: "Notifications written to the operator inbox.",
	}, []string{"kind"})
)
