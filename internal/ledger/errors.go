// Package ledger implements the seat-accounting rules for rides and
// bookings.  This file defines the error taxonomy surfaced by every
// ledger operation so that handlers can map each rejection to a
// distinct response instead of a flat failure.
package ledger

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrRideNotFound is returned when the referenced ride does not exist.
var ErrRideNotFound = errors.New("ride not found")

// ErrBookingNotFound is returned when the referenced booking does not
// exist or is already canceled.
var ErrBookingNotFound = errors.New("booking not found")

// ErrInvalidSeatCount is returned when the requested seat count is not
// a positive integer.
var ErrInvalidSeatCount = errors.New("seat count must be a positive integer")

// ErrRideClosed is returned when the ride's departure time has passed
// or the driver marked the ride done.
var ErrRideClosed = errors.New("ride is closed for booking")

// ErrRideFull is returned when the ride has no seats left at all.
var ErrRideFull = errors.New("ride is fully booked")

// ErrInsufficientSeats is returned when the requested seats exceed the
// ride's current availability.
var ErrInsufficientSeats = errors.New("not enough seats available")

// ErrTxConflict is returned when the transaction lost a race with a
// concurrent seat operation and was aborted.  The caller may resubmit;
// the ledger itself never retries.
var ErrTxConflict = errors.New("conflicting seat update, please retry")

// MySQL server error numbers for aborted lock waits.  Either one means
// the transaction should be reported as a conflict, not a storage
// failure.
const (
	mysqlErrLockDeadlock    = 1213
	mysqlErrLockWaitTimeout = 1205
)

// asConflict converts MySQL lock errors into ErrTxConflict and passes
// every other error through unchanged.
func asConflict(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == mysqlErrLockDeadlock || me.Number == mysqlErrLockWaitTimeout) {
		return ErrTxConflict
	}
	return err
}
