package model

import "time"

// Booking status values.  Only active bookings count against a ride's
// capacity; canceled bookings are kept for history.
const (
	BookingActive   = "active"
	BookingCanceled = "canceled"
)

// Booking is a passenger's reservation of one or more seats on a ride.
// SeatsBooked is mutated only through the seat ledger so that the
// ride's availability and the sum of active bookings always add up to
// the ride's capacity.
//
// Fields:
//  ID             – primary key identifier.
//  RideID         – ride being booked.
//  PassengerID    – user holding the reservation.
//  SeatsBooked    – number of seats reserved (>= 1).
//  PickupLocation – optional free-text pickup point.
//  Status         – active or canceled.
//  CreatedAt      – creation timestamp (the booking date).
//  UpdatedAt      – last update timestamp.
type Booking struct {
	ID             uint64    // bookings.id
	RideID         uint64    // bookings.ride_id
	PassengerID    uint64    // bookings.passenger_id
	SeatsBooked    int       // bookings.seats_booked
	PickupLocation string    // bookings.pickup_location
	Status         string    // bookings.status
	CreatedAt      time.Time // bookings.created_at
	UpdatedAt      time.Time // bookings.updated_at
}
