package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/model"
	"github.com/iliyamo/ride-share-booking/internal/repository"
)

// RideHandler provides driver-facing ride management.  Ride details are
// owned by the driver; the seat counters are owned by the seat ledger
// and are deliberately absent from the update request.
type RideHandler struct {
	Rides *repository.RideRepo
}

// NewRideHandler constructs a RideHandler.
func NewRideHandler(r *repository.RideRepo) *RideHandler {
	if r == nil {
		panic("nil repository passed to NewRideHandler")
	}
	return &RideHandler{Rides: r}
}

type rideReq struct {
	Origin      string `json:"origin" form:"origin"`
	Destination string `json:"destination" form:"destination"`
	DepartsAt   string `json:"departs_at" form:"departs_at"` // RFC3339
	SeatsTotal  int    `json:"seats_total" form:"seats_total"`
	PriceCents  uint32 `json:"price_cents" form:"price_cents"`
	Notes       string `json:"notes" form:"notes"`
}

// parseDeparture validates the departure timestamp.
func parseDeparture(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	return t.UTC(), err == nil
}

// Create handles POST /v1/rides.  The ride's capacity is fixed here;
// availability starts equal to it.
func (h *RideHandler) Create(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req rideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Origin == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination are required"})
	}
	departs, ok := parseDeparture(req.DepartsAt)
	if !ok || !departs.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departs_at must be a future RFC3339 timestamp"})
	}
	if req.SeatsTotal < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats_total must be at least 1"})
	}

	ride := &model.Ride{
		DriverID:    driverID,
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartsAt:   departs,
		SeatsTotal:  req.SeatsTotal,
		PriceCents:  req.PriceCents,
		Notes:       strings.TrimSpace(req.Notes),
	}
	if err := h.Rides.Create(c.Request().Context(), ride); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ride failed"})
	}
	return c.JSON(http.StatusCreated, ride)
}

// MyRides handles GET /v1/my-rides.
func (h *RideHandler) MyRides(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rides, err := h.Rides.ListByDriver(c.Request().Context(), driverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rides": rides})
}

// Update handles PUT /v1/rides/:id.  Owner-only; seat counters are not
// editable here.
func (h *RideHandler) Update(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	var req rideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Origin == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin and destination are required"})
	}
	departs, okTime := parseDeparture(req.DepartsAt)
	if !okTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departs_at must be RFC3339"})
	}

	err = h.Rides.UpdateDetails(c.Request().Context(), rideID, driverID,
		req.Origin, req.Destination, departs, req.PriceCents, strings.TrimSpace(req.Notes))
	if err != nil {
		return writeRideRepoError(c, err)
	}
	ride, err := h.Rides.GetByID(c.Request().Context(), rideID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, ride)
}

// MarkDone handles PUT /v1/rides/:id/done.  Owner-only.
func (h *RideHandler) MarkDone(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	if err := h.Rides.MarkDone(c.Request().Context(), rideID, driverID); err != nil {
		return writeRideRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"done": rideID})
}

// Delete handles DELETE /v1/rides/:id.  Owner-only.
func (h *RideHandler) Delete(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	if err := h.Rides.Delete(c.Request().Context(), rideID, driverID); err != nil {
		return writeRideRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// writeRideRepoError maps repository sentinels for ride mutations.
func writeRideRepoError(c echo.Context, err error) error {
	switch err {
	case repository.ErrRideNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ride_not_found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
