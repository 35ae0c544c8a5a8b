package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/repository"
)

// PublicHandler exposes unauthenticated browse endpoints: ride listing,
// ride detail, ride search and per-ride reviews.  These routes sit
// behind the response cache so guests browsing rides do not hit MySQL
// on every request.
type PublicHandler struct {
	Rides   *repository.RideRepo
	Reviews *repository.ReviewRepo
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(r *repository.RideRepo, v *repository.ReviewRepo) *PublicHandler {
	if r == nil || v == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Rides: r, Reviews: v}
}

// ListRides handles GET /v1/rides.
func (h *PublicHandler) ListRides(c echo.Context) error {
	rides, err := h.Rides.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rides": rides})
}

// GetRide handles GET /v1/rides/:id.
func (h *PublicHandler) GetRide(c echo.Context) error {
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	ride, err := h.Rides.GetByID(c.Request().Context(), rideID)
	if err != nil {
		if err == repository.ErrRideNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ride_not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, ride)
}

// SearchRides handles GET /v1/search/rides?from=&to=&date=.  Departed
// and finished rides are never returned.
func (h *PublicHandler) SearchRides(c echo.Context) error {
	rides, err := h.Rides.Search(c.Request().Context(),
		c.QueryParam("from"), c.QueryParam("to"), c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rides": rides})
}

// ListRideReviews handles GET /v1/rides/:id/reviews.
func (h *PublicHandler) ListRideReviews(c echo.Context) error {
	rideID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ride id"})
	}
	reviews, err := h.Reviews.ListByRide(c.Request().Context(), rideID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}
