package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/handler"
	"github.com/iliyamo/ride-share-booking/internal/middleware"
)

// RegisterDriver registers driver-scoped endpoints under /v1.  All
// routes require a valid JWT and the DRIVER role.  Drivers manage ride
// details only; seat counters move exclusively through the booking
// endpoints.
func RegisterDriver(e *echo.Echo, h *handler.RideHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DRIVER"),
	)
	g.POST("/rides", h.Create)
	g.GET("/my-rides", h.MyRides)
	g.PUT("/rides/:id", h.Update)
	g.PUT("/rides/:id/done", h.MarkDone)
	g.DELETE("/rides/:id", h.Delete)
}
