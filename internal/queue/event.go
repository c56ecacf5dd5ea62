// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/service-booking/internal/model"
)

// BookingEventsQueue is the durable queue booking events are published to.
const BookingEventsQueue = "booking.events"

// Booking event types.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingDeleted       = "booking.deleted"
)

// BookingEvent is published whenever a booking is created, changes status
// or is deleted.  It carries enough for downstream consumers to log or
// notify without reading the booking store.
type BookingEvent struct {
	Type         string  `json:"type"`
	BookingID    string  `json:"booking_id"`
	ServiceTitle string  `json:"service_title"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	TotalPrice   float64 `json:"total_price"`
	OccurredAt   string  `json:"occurred_at"`
}

// NewBookingEvent snapshots b for an event of the given type.
func NewBookingEvent(eventType string, b model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		ServiceTitle: b.ServiceTitle,
		Date:         b.Date,
		Status:       string(b.Status),
		TotalPrice:   b.TotalPrice,
		OccurredAt:   at.UTC().Format(time.RFC3339),
	}
}
