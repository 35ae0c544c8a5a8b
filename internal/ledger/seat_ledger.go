package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ride-share-booking/internal/model"
	"github.com/iliyamo/ride-share-booking/internal/repository"
)

// SeatLedger owns the invariant that for every ride
//
//	seats_available + SUM(seats_booked of active bookings) == seats_total
//
// Every operation runs as one transaction: the ride row is locked with
// SELECT ... FOR UPDATE, preconditions are checked against the locked
// row, and the booking write plus the seat-counter adjustment commit
// together or not at all.  The counter UPDATE additionally carries a
// range guard; a guard miss means the read went stale and the operation
// is aborted as a conflict rather than committed with a corrupt count.
type SeatLedger struct {
	db       *sql.DB
	rides    *repository.RideRepo
	bookings *repository.BookingRepo
	now      func() time.Time
}

// NewSeatLedger constructs a SeatLedger.  All dependencies must be
// non-nil.
func NewSeatLedger(db *sql.DB, rides *repository.RideRepo, bookings *repository.BookingRepo) *SeatLedger {
	if db == nil || rides == nil || bookings == nil {
		panic("nil dependency passed to NewSeatLedger")
	}
	return &SeatLedger{db: db, rides: rides, bookings: bookings, now: time.Now}
}

// CreateBooking reserves seats on a ride for a passenger.
// Preconditions are evaluated in order, first failure wins:
// ride exists; seats is a positive integer; departure is strictly in
// the future and the ride is not done; at least one seat is free;
// the requested seats fit the current availability.
func (l *SeatLedger) CreateBooking(ctx context.Context, rideID, passengerID uint64, seats int, pickupLocation string) (*model.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ride, err := l.rides.GetForUpdateTx(ctx, tx, rideID)
	if err != nil {
		if err == repository.ErrRideNotFound {
			return nil, ErrRideNotFound
		}
		return nil, asConflict(err)
	}
	if seats < 1 {
		return nil, ErrInvalidSeatCount
	}
	if ride.IsDone || !ride.DepartsAt.After(l.now().UTC()) {
		return nil, ErrRideClosed
	}
	if ride.SeatsAvailable < 1 {
		return nil, ErrRideFull
	}
	if seats > ride.SeatsAvailable {
		return nil, ErrInsufficientSeats
	}

	b := &model.Booking{
		RideID:         rideID,
		PassengerID:    passengerID,
		SeatsBooked:    seats,
		PickupLocation: pickupLocation,
		Status:         model.BookingActive,
	}
	if err := l.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, asConflict(err)
	}
	n, err := l.rides.AdjustSeatsTx(ctx, tx, rideID, -seats)
	if err != nil {
		return nil, asConflict(err)
	}
	if n == 0 {
		return nil, ErrTxConflict
	}
	if err := tx.Commit(); err != nil {
		return nil, asConflict(err)
	}
	committed = true
	return b, nil
}

// ChangeBookingSeats resizes an active booking to newSeats.  The delta
// is taken from (or returned to) the ride's availability in the same
// transaction that rewrites the booking; growing a booking beyond what
// the ride can supply fails with ErrInsufficientSeats and leaves both
// records untouched.
func (l *SeatLedger) ChangeBookingSeats(ctx context.Context, bookingID uint64, newSeats int) (*model.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := l.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return nil, ErrBookingNotFound
		}
		return nil, asConflict(err)
	}
	if b.Status != model.BookingActive {
		return nil, ErrBookingNotFound
	}
	ride, err := l.rides.GetForUpdateTx(ctx, tx, b.RideID)
	if err != nil {
		// A booking pointing at a missing ride is a data-integrity
		// fault; it still surfaces as not-found.
		if err == repository.ErrRideNotFound {
			return nil, ErrRideNotFound
		}
		return nil, asConflict(err)
	}
	if newSeats < 1 {
		return nil, ErrInvalidSeatCount
	}

	delta := newSeats - b.SeatsBooked
	if delta == 0 {
		if err := tx.Commit(); err != nil {
			return nil, asConflict(err)
		}
		committed = true
		return &b, nil
	}
	if delta > 0 && ride.SeatsAvailable < delta {
		return nil, ErrInsufficientSeats
	}

	// Subtracting the delta adds seats back when the booking shrinks.
	n, err := l.rides.AdjustSeatsTx(ctx, tx, ride.ID, -delta)
	if err != nil {
		return nil, asConflict(err)
	}
	if n == 0 {
		return nil, ErrTxConflict
	}
	if err := l.bookings.UpdateSeatsTx(ctx, tx, b.ID, newSeats); err != nil {
		return nil, asConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, asConflict(err)
	}
	committed = true
	b.SeatsBooked = newSeats
	return &b, nil
}

// CancelBooking marks an active booking canceled and releases its seats
// back to the ride, both in one transaction.
func (l *SeatLedger) CancelBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := l.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return nil, ErrBookingNotFound
		}
		return nil, asConflict(err)
	}
	if b.Status != model.BookingActive {
		return nil, ErrBookingNotFound
	}
	ride, err := l.rides.GetForUpdateTx(ctx, tx, b.RideID)
	if err != nil {
		if err == repository.ErrRideNotFound {
			return nil, ErrRideNotFound
		}
		return nil, asConflict(err)
	}

	n, err := l.rides.AdjustSeatsTx(ctx, tx, ride.ID, b.SeatsBooked)
	if err != nil {
		return nil, asConflict(err)
	}
	if n == 0 {
		return nil, ErrTxConflict
	}
	if err := l.bookings.CancelTx(ctx, tx, b.ID); err != nil {
		return nil, asConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, asConflict(err)
	}
	committed = true
	b.Status = model.BookingCanceled
	return &b, nil
}
