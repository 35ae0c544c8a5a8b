package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ride-share-booking/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  The write paths
// that touch seat counts are exposed only as *Tx methods: the seat
// ledger calls them inside the same transaction that adjusts the ride's
// availability, so the two records always move together.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, ride_id, passenger_id, seats_booked, pickup_location, status, created_at, updated_at`

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.RideID, &b.PassengerID, &b.SeatsBooked,
		&b.PickupLocation, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID on the record.  The caller
// must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (ride_id, passenger_id, seats_booked, pickup_location, status, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, q, b.RideID, b.PassengerID, b.SeatsBooked, b.PickupLocation, b.Status, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// GetForUpdateTx loads a booking inside the given transaction with a
// row lock so concurrent mutations of the same booking serialize.
// Returns ErrBookingNotFound when the booking does not exist.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// UpdateSeatsTx sets a booking's seat count within the transaction.
func (r *BookingRepo) UpdateSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, seats int) error {
	const q = `UPDATE bookings SET seats_booked = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, seats, id)
	return err
}

// CancelTx marks a booking canceled within the transaction.  The row is
// kept for history; only active bookings count against ride capacity.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.BookingCanceled, id)
	return err
}

// BookingDetail is a booking joined with its ride for display.
type BookingDetail struct {
	ID             uint64    `json:"id"`
	RideID         uint64    `json:"ride_id"`
	PassengerID    uint64    `json:"passenger_id"`
	SeatsBooked    int       `json:"seats_booked"`
	PickupLocation string    `json:"pickup_location,omitempty"`
	Status         string    `json:"status"`
	BookedAt       time.Time `json:"booked_at"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartsAt      time.Time `json:"departs_at"`
	PriceCents     uint32    `json:"price_cents"`
}

const bookingDetailColumns = `b.id, b.ride_id, b.passenger_id, b.seats_booked, b.pickup_location,
	       b.status, b.created_at, r.origin, r.destination, r.departs_at, r.price_cents`

// GetDetail returns one booking with its ride information, or
// ErrBookingNotFound.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (BookingDetail, error) {
	const q = `SELECT ` + bookingDetailColumns + `
	           FROM bookings b
	           JOIN rides r ON r.id = b.ride_id
	           WHERE b.id = ?`
	var d BookingDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.RideID, &d.PassengerID, &d.SeatsBooked, &d.PickupLocation,
		&d.Status, &d.BookedAt, &d.Origin, &d.Destination, &d.DepartsAt, &d.PriceCents,
	)
	if err == sql.ErrNoRows {
		return BookingDetail{}, ErrBookingNotFound
	}
	return d, err
}

// ListByPassenger returns all bookings of one passenger, newest first.
func (r *BookingRepo) ListByPassenger(ctx context.Context, passengerID uint64) ([]BookingDetail, error) {
	const q = `SELECT ` + bookingDetailColumns + `
	           FROM bookings b
	           JOIN rides r ON r.id = b.ride_id
	           WHERE b.passenger_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(
			&d.ID, &d.RideID, &d.PassengerID, &d.SeatsBooked, &d.PickupLocation,
			&d.Status, &d.BookedAt, &d.Origin, &d.Destination, &d.DepartsAt, &d.PriceCents,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
