package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/ledger"
	"github.com/iliyamo/ride-share-booking/internal/model"
	"github.com/iliyamo/ride-share-booking/internal/queue"
	"github.com/iliyamo/ride-share-booking/internal/repository"
	queue_publisher "github.com/iliyamo/ride-share-booking/internal/service"
)

// BookingHandler exposes the seat ledger over HTTP.  All methods assume
// JWT authentication has already been performed by middleware.  The
// mutating endpoints delegate to the ledger, which runs each operation
// as one atomic transaction; the handler only parses input, maps ledger
// errors to responses and publishes events after a successful commit.
type BookingHandler struct {
	Ledger   *ledger.SeatLedger
	Bookings *repository.BookingRepo
	Rides    *repository.RideRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(l *ledger.SeatLedger, b *repository.BookingRepo, r *repository.RideRepo) *BookingHandler {
	if l == nil || b == nil || r == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l, Bookings: b, Rides: r}
}

type createBookingReq struct {
	RideID         uint64 `json:"ride_id" form:"ride_id"`
	SeatsBooked    string `json:"seats_booked" form:"seats_booked"`
	PickupLocation string `json:"pickup_location" form:"pickup_location"`
}

type updateBookingReq struct {
	SeatsBooked string `json:"seats_booked" form:"seats_booked"`
}

// parseSeats turns the textual seat count into an int.  Unparseable
// input maps to zero, which the ledger rejects as an invalid count; the
// ledger checks ride existence first, so a bad count on a missing ride
// still reports the missing ride.
func parseSeats(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// writeLedgerError maps the ledger error taxonomy onto HTTP responses.
// Every business rejection gets a distinct machine-readable code.
func writeLedgerError(c echo.Context, err error) error {
	switch err {
	case ledger.ErrRideNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ride_not_found"})
	case ledger.ErrBookingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking_not_found"})
	case ledger.ErrInvalidSeatCount:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_seat_count"})
	case ledger.ErrRideClosed:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ride_closed"})
	case ledger.ErrRideFull:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ride_full"})
	case ledger.ErrInsufficientSeats:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient_seats"})
	case ledger.ErrTxConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
}

// publishEvent sends a booking event to the broker after commit.
// Publish failures are logged and never fail the request.
func (h *BookingHandler) publishEvent(ctx context.Context, typ string, b *model.Booking) {
	ride, err := h.Rides.GetByID(ctx, b.RideID)
	if err != nil {
		log.Printf("booking-event: load ride %d failed: %v", b.RideID, err)
		return
	}
	ev := queue.BookingEvent{
		Type:        typ,
		BookingID:   b.ID,
		RideID:      b.RideID,
		PassengerID: b.PassengerID,
		Seats:       b.SeatsBooked,
		Origin:      ride.Origin,
		Destination: ride.Destination,
		DepartsAt:   ride.DepartsAt.UTC().Format(time.RFC3339),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishBookingEvent(ctx, ev); err != nil {
		log.Printf("booking-event: publish %s failed: %v", typ, err)
	}
}

// Create handles POST /v1/bookings.  It reserves seats on a ride for
// the authenticated user.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.RideID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	b, err := h.Ledger.CreateBooking(ctx, req.RideID, userID, parseSeats(req.SeatsBooked), strings.TrimSpace(req.PickupLocation))
	if err != nil {
		return writeLedgerError(c, err)
	}
	h.publishEvent(ctx, queue.EventBookingCreated, b)
	return c.JSON(http.StatusCreated, bookingResp(b))
}

// bookingResp shapes a booking for JSON responses.
func bookingResp(b *model.Booking) echo.Map {
	return echo.Map{
		"id":              b.ID,
		"ride_id":         b.RideID,
		"passenger_id":    b.PassengerID,
		"seats_booked":    b.SeatsBooked,
		"pickup_location": b.PickupLocation,
		"status":          b.Status,
		"booked_at":       b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Update handles PUT /v1/bookings/:id.  It resizes a booking's seat
// count through the ledger.
func (h *BookingHandler) Update(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	b, err := h.Ledger.ChangeBookingSeats(ctx, bookingID, parseSeats(req.SeatsBooked))
	if err != nil {
		return writeLedgerError(c, err)
	}
	h.publishEvent(ctx, queue.EventBookingSeatsChanged, b)
	return c.JSON(http.StatusOK, bookingResp(b))
}

// Cancel handles DELETE /v1/bookings/:id.  It marks the booking
// canceled and releases its seats back to the ride.
func (h *BookingHandler) Cancel(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	b, err := h.Ledger.CancelBooking(ctx, bookingID)
	if err != nil {
		return writeLedgerError(c, err)
	}
	h.publishEvent(ctx, queue.EventBookingCanceled, b)
	return c.JSON(http.StatusOK, echo.Map{"canceled": b.ID, "seats_released": b.SeatsBooked})
}

// List handles GET /v1/my-bookings, returning the caller's bookings
// with ride details.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByPassenger(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	d, err := h.Bookings.GetDetail(c.Request().Context(), bookingID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking_not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, d)
}
