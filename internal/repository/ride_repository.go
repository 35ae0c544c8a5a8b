// Package repository contains data access logic for ride operations.
// A ride is a scheduled trip with a seat counter; the counter itself is
// only ever moved through the *Tx methods below so that every change
// participates in a seat-ledger transaction.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/ride-share-booking/internal/model"
)

// RideRepo manages persistence for rides.
type RideRepo struct {
	db *sql.DB
}

// NewRideRepo returns a new RideRepo bound to the given database.
func NewRideRepo(db *sql.DB) *RideRepo { return &RideRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *RideRepo) DB() *sql.DB { return r.db }

// rideColumns is the SELECT list shared by every ride query.
const rideColumns = `id, driver_id, origin, destination, departs_at, seats_total, seats_available, price_cents, notes, is_done, created_at, updated_at`

// scanRide reads one ride row in rideColumns order.
func scanRide(row interface {
	Scan(dest ...interface{}) error
}) (model.Ride, error) {
	var rd model.Ride
	err := row.Scan(
		&rd.ID, &rd.DriverID, &rd.Origin, &rd.Destination, &rd.DepartsAt,
		&rd.SeatsTotal, &rd.SeatsAvailable, &rd.PriceCents, &rd.Notes,
		&rd.IsDone, &rd.CreatedAt, &rd.UpdatedAt,
	)
	return rd, err
}

// Create inserts a new ride.  seats_available starts equal to
// seats_total.  The generated ID and DB-default fields are populated on
// the given ride.
func (r *RideRepo) Create(ctx context.Context, rd *model.Ride) error {
	const q = `INSERT INTO rides (driver_id, origin, destination, departs_at, seats_total, seats_available, price_cents, notes)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rd.DriverID, rd.Origin, rd.Destination, rd.DepartsAt.UTC(),
		rd.SeatsTotal, rd.SeatsTotal, rd.PriceCents, rd.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rd.ID = uint64(id)
	// Query the inserted row back to obtain defaults such as timestamps.
	const sel = `SELECT ` + rideColumns + ` FROM rides WHERE id = ?`
	*rd, err = scanRide(r.db.QueryRowContext(ctx, sel, rd.ID))
	return err
}

// GetByID returns a single ride or ErrRideNotFound.
func (r *RideRepo) GetByID(ctx context.Context, id uint64) (model.Ride, error) {
	const q = `SELECT ` + rideColumns + ` FROM rides WHERE id = ?`
	rd, err := scanRide(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Ride{}, ErrRideNotFound
	}
	return rd, err
}

// GetForUpdateTx loads a ride inside the given transaction and takes a
// row lock on it.  Concurrent seat-ledger operations on the same ride
// serialize on this lock.  Returns ErrRideNotFound when the ride does
// not exist.
func (r *RideRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Ride, error) {
	const q = `SELECT ` + rideColumns + ` FROM rides WHERE id = ? FOR UPDATE`
	rd, err := scanRide(tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Ride{}, ErrRideNotFound
	}
	return rd, err
}

// AdjustSeatsTx moves seats_available by delta (negative to take seats,
// positive to release them) inside the given transaction.  The UPDATE is
// guarded so the counter can never leave the [0, seats_total] range even
// if the previously read value went stale; the number of affected rows
// is returned so callers can detect a guard miss.
func (r *RideRepo) AdjustSeatsTx(ctx context.Context, tx *sql.Tx, rideID uint64, delta int) (int64, error) {
	const q = `UPDATE rides
	           SET seats_available = seats_available + ?, updated_at = NOW()
	           WHERE id = ? AND seats_available + ? >= 0 AND seats_available + ? <= seats_total`
	res, err := tx.ExecContext(ctx, q, delta, rideID, delta, delta)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RideDetail is a ride joined with its driver's email for listings.
type RideDetail struct {
	ID             uint64    `json:"id"`
	DriverID       uint64    `json:"driver_id"`
	DriverEmail    string    `json:"driver_email"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartsAt      time.Time `json:"departs_at"`
	SeatsTotal     int       `json:"seats_total"`
	SeatsAvailable int       `json:"seats_available"`
	PriceCents     uint32    `json:"price_cents"`
	Notes          string    `json:"notes,omitempty"`
	IsDone         bool      `json:"is_done"`
}

const rideDetailColumns = `r.id, r.driver_id, u.email, r.origin, r.destination, r.departs_at,
	       r.seats_total, r.seats_available, r.price_cents, r.notes, r.is_done`

func scanRideDetail(rows *sql.Rows) (RideDetail, error) {
	var d RideDetail
	err := rows.Scan(
		&d.ID, &d.DriverID, &d.DriverEmail, &d.Origin, &d.Destination, &d.DepartsAt,
		&d.SeatsTotal, &d.SeatsAvailable, &d.PriceCents, &d.Notes, &d.IsDone,
	)
	return d, err
}

// List returns all rides with driver info, newest departure first.
func (r *RideRepo) List(ctx context.Context) ([]RideDetail, error) {
	const q = `SELECT ` + rideDetailColumns + `
	           FROM rides r
	           JOIN users u ON u.id = r.driver_id
	           ORDER BY r.departs_at DESC`
	return r.queryDetails(ctx, q)
}

// ListByDriver returns the rides offered by one driver.
func (r *RideRepo) ListByDriver(ctx context.Context, driverID uint64) ([]RideDetail, error) {
	const q = `SELECT ` + rideDetailColumns + `
	           FROM rides r
	           JOIN users u ON u.id = r.driver_id
	           WHERE r.driver_id = ?
	           ORDER BY r.departs_at DESC`
	return r.queryDetails(ctx, q, driverID)
}

// Search filters rides on origin/destination substrings and an optional
// departure date (YYYY-MM-DD, UTC).  Finished rides and rides already
// departed are excluded from search results.
func (r *RideRepo) Search(ctx context.Context, from, to, date string) ([]RideDetail, error) {
	q := `SELECT ` + rideDetailColumns + `
	      FROM rides r
	      JOIN users u ON u.id = r.driver_id
	      WHERE r.is_done = 0 AND r.departs_at > UTC_TIMESTAMP()`
	args := make([]interface{}, 0, 3)
	if s := strings.TrimSpace(from); s != "" {
		q += ` AND r.origin LIKE ?`
		args = append(args, "%"+s+"%")
	}
	if s := strings.TrimSpace(to); s != "" {
		q += ` AND r.destination LIKE ?`
		args = append(args, "%"+s+"%")
	}
	if s := strings.TrimSpace(date); s != "" {
		q += ` AND DATE(r.departs_at) = ?`
		args = append(args, s)
	}
	q += ` ORDER BY r.departs_at ASC`
	return r.queryDetails(ctx, q, args...)
}

func (r *RideRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]RideDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RideDetail, 0)
	for rows.Next() {
		d, err := scanRideDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// UpdateDetails lets the owning driver edit ride fields other than the
// seat counters.  Returns ErrRideNotFound when the ride does not exist
// and ErrForbidden when the caller is not the driver.
func (r *RideRepo) UpdateDetails(ctx context.Context, id, driverID uint64, origin, destination string, departsAt time.Time, priceCents uint32, notes string) error {
	if err := r.checkOwner(ctx, id, driverID); err != nil {
		return err
	}
	const q = `UPDATE rides
	           SET origin = ?, destination = ?, departs_at = ?, price_cents = ?, notes = ?, updated_at = NOW()
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, origin, destination, departsAt.UTC(), priceCents, notes, id)
	return err
}

// MarkDone flags a ride as completed.  Owner-only.
func (r *RideRepo) MarkDone(ctx context.Context, id, driverID uint64) error {
	if err := r.checkOwner(ctx, id, driverID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE rides SET is_done = 1, updated_at = NOW() WHERE id = ?`, id)
	return err
}

// Delete removes a ride.  Owner-only.
func (r *RideRepo) Delete(ctx context.Context, id, driverID uint64) error {
	if err := r.checkOwner(ctx, id, driverID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM rides WHERE id = ?`, id)
	return err
}

// checkOwner verifies that driverID owns the ride.
func (r *RideRepo) checkOwner(ctx context.Context, id, driverID uint64) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx, `SELECT driver_id FROM rides WHERE id = ?`, id).Scan(&actual)
	if err == sql.ErrNoRows {
		return ErrRideNotFound
	}
	if err != nil {
		return err
	}
	if actual != driverID {
		return ErrForbidden
	}
	return nil
}
