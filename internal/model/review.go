package model

import "time"

// Review is a rider's rating of a ride they booked.  Reviews are
// independent of seat accounting.
//
// Fields:
//  ID        – primary key identifier.
//  RideID    – ride being reviewed.
//  AuthorID  – user who wrote the review.
//  Rating    – 1 to 5 inclusive.
//  Comment   – optional free-text comment.
//  CreatedAt – creation timestamp.
type Review struct {
	ID        uint64    // reviews.id
	RideID    uint64    // reviews.ride_id
	AuthorID  uint64    // reviews.author_id
	Rating    int       // reviews.rating
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
}
