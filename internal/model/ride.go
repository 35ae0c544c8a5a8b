package model

import "time"

// Ride is a scheduled trip offered by a driver with a fixed seat
// capacity.  SeatsTotal is set once at creation and never changes;
// SeatsAvailable moves only through the seat ledger as bookings are
// created, resized and canceled.  The driver may edit every other
// field until the ride is marked done.
//
// Fields:
//  ID             – primary key identifier.
//  DriverID       – user offering the ride.
//  Origin         – free-text departure point.
//  Destination    – free-text arrival point.
//  DepartsAt      – departure time in UTC.
//  SeatsTotal     – capacity fixed at creation (>= 1).
//  SeatsAvailable – seats still bookable (0 .. SeatsTotal).
//  PriceCents     – price per seat in cents (>= 0).
//  Notes          – optional free-text notes for passengers.
//  IsDone         – set by the driver once the trip has happened.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Ride struct {
	ID             uint64    // rides.id
	DriverID       uint64    // rides.driver_id
	Origin         string    // rides.origin
	Destination    string    // rides.destination
	DepartsAt      time.Time // rides.departs_at
	SeatsTotal     int       // rides.seats_total
	SeatsAvailable int       // rides.seats_available
	PriceCents     uint32    // rides.price_cents
	Notes          string    // rides.notes
	IsDone         bool      // rides.is_done
	CreatedAt      time.Time // rides.created_at
	UpdatedAt      time.Time // rides.updated_at
}
