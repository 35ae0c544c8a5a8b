package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/ride-share-booking/internal/repository"
)

// fixedNow keeps departure comparisons deterministic in tests.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*SeatLedger, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	l := NewSeatLedger(db, repository.NewRideRepo(db), repository.NewBookingRepo(db))
	l.now = func() time.Time { return fixedNow }
	return l, mock, func() { db.Close() }
}

func rideColumns() []string {
	return []string{
		"id", "driver_id", "origin", "destination", "departs_at",
		"seats_total", "seats_available", "price_cents", "notes",
		"is_done", "created_at", "updated_at",
	}
}

func rideRow(id uint64, departs time.Time, total, available int, done bool) *sqlmock.Rows {
	return sqlmock.NewRows(rideColumns()).
		AddRow(id, 9, "Astana", "Almaty", departs, total, available, 1500, "", done, fixedNow, fixedNow)
}

func bookingColumns() []string {
	return []string{
		"id", "ride_id", "passenger_id", "seats_booked",
		"pickup_location", "status", "created_at", "updated_at",
	}
}

func bookingRow(id, rideID uint64, seats int, status string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns()).
		AddRow(id, rideID, 5, seats, "main square", status, fixedNow, fixedNow)
}

func expectRideLock(mock sqlmock.Sqlmock, rideID uint64, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(rideID).WillReturnRows(rows)
}

func expectBookingLock(mock sqlmock.Sqlmock, bookingID uint64, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(bookingID).WillReturnRows(rows)
}

func TestCreateBookingDecrementsSeatsAtomically(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	departs := fixedNow.Add(24 * time.Hour)
	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, departs, 3, 3, false))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(1), uint64(5), 2, "main square", "active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE rides").
		WithArgs(-2, uint64(1), -2, -2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := l.CreateBooking(context.Background(), 1, 5, 2, "main square")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if b.ID != 7 || b.SeatsBooked != 2 || b.Status != "active" {
		t.Fatalf("unexpected booking: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingRideMissing(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(uint64(42)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 42, 5, 2, ""); err != ErrRideNotFound {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Ride existence is checked before the seat count, so a bad count on a
// missing ride still reports the missing ride.
func TestCreateBookingValidationOrder(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = (.+) FOR UPDATE").
		WithArgs(uint64(42)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 42, 5, 0, ""); err != ErrRideNotFound {
		t.Fatalf("expected ErrRideNotFound to win over invalid count, got %v", err)
	}
}

func TestCreateBookingInvalidSeatCount(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 3, 3, false))
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 1, 5, 0, ""); err != ErrInvalidSeatCount {
		t.Fatalf("expected ErrInvalidSeatCount, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("writes happened before validation: %v", err)
	}
}

func TestCreateBookingRideClosed(t *testing.T) {
	cases := []struct {
		name    string
		departs time.Time
		isDone  bool
	}{
		{"departure passed", fixedNow.Add(-time.Hour), false},
		{"departing right now", fixedNow, false},
		{"marked done", fixedNow.Add(time.Hour), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, mock, done := newLedger(t)
			defer done()

			mock.ExpectBegin()
			expectRideLock(mock, 1, rideRow(1, tc.departs, 3, 3, tc.isDone))
			mock.ExpectRollback()

			if _, err := l.CreateBooking(context.Background(), 1, 5, 1, ""); err != ErrRideClosed {
				t.Fatalf("expected ErrRideClosed, got %v", err)
			}
		})
	}
}

func TestCreateBookingRideFull(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 3, 0, false))
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 1, 5, 1, ""); err != ErrRideFull {
		t.Fatalf("expected ErrRideFull, got %v", err)
	}
}

func TestCreateBookingInsufficientSeats(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 3, 1, false))
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 1, 5, 2, ""); err != ErrInsufficientSeats {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}
	// No INSERT or UPDATE was expected: a rejected booking must leave
	// both records untouched.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected writes: %v", err)
	}
}

func TestCreateBookingGuardMissIsConflict(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 3, 2, false))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE rides").
		WillReturnResult(sqlmock.NewResult(0, 0)) // stale read, guard rejected
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 1, 5, 2, ""); err != ErrTxConflict {
		t.Fatalf("expected ErrTxConflict, got %v", err)
	}
}

func TestCreateBookingDeadlockIsConflict(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 3, 2, false))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE rides").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	if _, err := l.CreateBooking(context.Background(), 1, 5, 2, ""); err != ErrTxConflict {
		t.Fatalf("expected ErrTxConflict for deadlock, got %v", err)
	}
}

func TestChangeBookingSeatsGrow(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "active"))
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 5, 2, false))
	mock.ExpectExec("UPDATE rides").
		WithArgs(-1, uint64(1), -1, -1). // delta +1 taken from the ride
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(3, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := l.ChangeBookingSeats(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if b.SeatsBooked != 3 {
		t.Fatalf("seats not updated, got %d", b.SeatsBooked)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestChangeBookingSeatsShrinkReleasesSeats(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "active"))
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 5, 1, false))
	mock.ExpectExec("UPDATE rides").
		WithArgs(1, uint64(1), 1, 1). // one seat goes back to the ride
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs(1, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := l.ChangeBookingSeats(context.Background(), 7, 1); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestChangeBookingSeatsInsufficient(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "active"))
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 5, 1, false))
	mock.ExpectRollback()

	// Growing from 2 to 4 needs 2 more seats but only 1 is available.
	if _, err := l.ChangeBookingSeats(context.Background(), 7, 4); err != ErrInsufficientSeats {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("records were touched on rejection: %v", err)
	}
}

func TestChangeBookingSeatsNoChange(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "active"))
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 5, 1, false))
	mock.ExpectCommit()

	b, err := l.ChangeBookingSeats(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if b.SeatsBooked != 2 {
		t.Fatalf("seats changed unexpectedly: %d", b.SeatsBooked)
	}
}

func TestChangeBookingSeatsMissingBooking(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(uint64(99)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := l.ChangeBookingSeats(context.Background(), 99, 2); err != ErrBookingNotFound {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestChangeBookingSeatsCanceledBooking(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "canceled"))
	mock.ExpectRollback()

	if _, err := l.ChangeBookingSeats(context.Background(), 7, 3); err != ErrBookingNotFound {
		t.Fatalf("expected ErrBookingNotFound for canceled booking, got %v", err)
	}
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "active"))
	expectRideLock(mock, 1, rideRow(1, fixedNow.Add(time.Hour), 3, 1, false))
	mock.ExpectExec("UPDATE rides").
		WithArgs(2, uint64(1), 2, 2). // exactly the booked seats come back
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs("canceled", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := l.CancelBooking(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if b.Status != "canceled" || b.SeatsBooked != 2 {
		t.Fatalf("unexpected booking after cancel: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelBookingMissing(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = (.+) FOR UPDATE").
		WithArgs(uint64(99)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	if _, err := l.CancelBooking(context.Background(), 99); err != ErrBookingNotFound {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestCancelBookingAlreadyCanceled(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()

	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "canceled"))
	mock.ExpectRollback()

	// Canceling twice must not release seats twice.
	if _, err := l.CancelBooking(context.Background(), 7); err != ErrBookingNotFound {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("seats were released on a canceled booking: %v", err)
	}
}

// Full walk through the capacity-3 scenario: book two seats, fail to
// book two more, cancel the first booking and get the capacity back.
func TestSeatAccountingScenario(t *testing.T) {
	l, mock, done := newLedger(t)
	defer done()
	departs := fixedNow.Add(48 * time.Hour)

	// Book 2 of 3 seats.
	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, departs, 3, 3, false))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("UPDATE rides").
		WithArgs(-2, uint64(1), -2, -2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// A second booking of 2 seats no longer fits.
	mock.ExpectBegin()
	expectRideLock(mock, 1, rideRow(1, departs, 3, 1, false))
	mock.ExpectRollback()

	// Canceling the first booking releases its 2 seats.
	mock.ExpectBegin()
	expectBookingLock(mock, 7, bookingRow(7, 1, 2, "active"))
	expectRideLock(mock, 1, rideRow(1, departs, 3, 1, false))
	mock.ExpectExec("UPDATE rides").
		WithArgs(2, uint64(1), 2, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").
		WithArgs("canceled", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := l.CreateBooking(context.Background(), 1, 5, 2, ""); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := l.CreateBooking(context.Background(), 1, 6, 2, ""); err != ErrInsufficientSeats {
		t.Fatalf("second booking should not fit, got %v", err)
	}
	if _, err := l.CancelBooking(context.Background(), 7); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
