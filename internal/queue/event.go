// Package queue defines message payloads exchanged over the message broker.
package queue

// Booking event types carried in BookingEvent.Type.
const (
	EventBookingCreated      = "booking.created"
	EventBookingSeatsChanged = "booking.seats_changed"
	EventBookingCanceled     = "booking.canceled"
)

// BookingEvent is published after a seat-ledger transaction commits.
// It carries enough information for downstream consumers to log, notify
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	Type        string `json:"type"`
	BookingID   uint64 `json:"booking_id"`
	RideID      uint64 `json:"ride_id"`
	PassengerID uint64 `json:"passenger_id"`
	Seats       int    `json:"seats"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartsAt   string `json:"departs_at"`
	OccurredAt  string `json:"occurred_at"`
}
