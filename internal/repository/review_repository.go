package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ride-share-booking/internal/model"
)

// ReviewRepo manages persistence for ride reviews.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and populates the generated ID.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = `INSERT INTO reviews (ride_id, author_id, rating, comment) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rv.RideID, rv.AuthorID, rv.Rating, rv.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// GetByID returns a single review or ErrReviewNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	const q = `SELECT id, ride_id, author_id, rating, comment, created_at FROM reviews WHERE id = ?`
	var rv model.Review
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rv.ID, &rv.RideID, &rv.AuthorID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Review{}, ErrReviewNotFound
	}
	return rv, err
}

// Update edits rating and comment.  Only the author may update; other
// callers get ErrForbidden.
func (r *ReviewRepo) Update(ctx context.Context, id, authorID uint64, rating int, comment string) error {
	if err := r.checkAuthor(ctx, id, authorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE reviews SET rating = ?, comment = ? WHERE id = ?`, rating, comment, id)
	return err
}

// Delete removes a review.  Author-only.
func (r *ReviewRepo) Delete(ctx context.Context, id, authorID uint64) error {
	if err := r.checkAuthor(ctx, id, authorID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	return err
}

func (r *ReviewRepo) checkAuthor(ctx context.Context, id, authorID uint64) error {
	var actual uint64
	err := r.db.QueryRowContext(ctx, `SELECT author_id FROM reviews WHERE id = ?`, id).Scan(&actual)
	if err == sql.ErrNoRows {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if actual != authorID {
		return ErrForbidden
	}
	return nil
}

// ReviewDetail is a review joined with its ride and author for display.
type ReviewDetail struct {
	ID          uint64    `json:"id"`
	RideID      uint64    `json:"ride_id"`
	AuthorID    uint64    `json:"author_id"`
	AuthorEmail string    `json:"author_email"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	CreatedAt   time.Time `json:"created_at"`
}

const reviewDetailColumns = `v.id, v.ride_id, v.author_id, u.email, v.rating, v.comment,
	       r.origin, r.destination, v.created_at`

// ListByRide returns all reviews for one ride, newest first.
func (r *ReviewRepo) ListByRide(ctx context.Context, rideID uint64) ([]ReviewDetail, error) {
	const q = `SELECT ` + reviewDetailColumns + `
	           FROM reviews v
	           JOIN rides r ON r.id = v.ride_id
	           JOIN users u ON u.id = v.author_id
	           WHERE v.ride_id = ?
	           ORDER BY v.created_at DESC`
	return r.queryDetails(ctx, q, rideID)
}

// ListByAuthor returns all reviews written by one user, newest first.
func (r *ReviewRepo) ListByAuthor(ctx context.Context, authorID uint64) ([]ReviewDetail, error) {
	const q = `SELECT ` + reviewDetailColumns + `
	           FROM reviews v
	           JOIN rides r ON r.id = v.ride_id
	           JOIN users u ON u.id = v.author_id
	           WHERE v.author_id = ?
	           ORDER BY v.created_at DESC`
	return r.queryDetails(ctx, q, authorID)
}

func (r *ReviewRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]ReviewDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReviewDetail, 0)
	for rows.Next() {
		var d ReviewDetail
		if err := rows.Scan(
			&d.ID, &d.RideID, &d.AuthorID, &d.AuthorEmail, &d.Rating, &d.Comment,
			&d.Origin, &d.Destination, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// RidesToReview returns the rides a user has booked but not yet
// reviewed, so clients can prompt for pending reviews.
func (r *ReviewRepo) RidesToReview(ctx context.Context, userID uint64) ([]RideDetail, error) {
	const q = `SELECT DISTINCT ` + rideDetailColumns + `
	           FROM rides r
	           JOIN users u ON u.id = r.driver_id
	           JOIN bookings b ON b.ride_id = r.id
	           WHERE b.passenger_id = ?
	             AND r.id NOT IN (SELECT ride_id FROM reviews WHERE author_id = ?)`
	rows, err := r.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rides := make([]RideDetail, 0)
	for rows.Next() {
		d, err := scanRideDetail(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, d)
	}
	return rides, rows.Err()
}
