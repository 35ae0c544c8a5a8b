package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/handler"
	"github.com/iliyamo/ride-share-booking/internal/middleware"
)

// RegisterBookings registers the seat-ledger endpoints under /v1.
// Any signed-in user may book; drivers booking seats on other drivers'
// rides is allowed, so both roles are accepted here.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		append([]echo.MiddlewareFunc{
			middleware.JWTAuth(jwtSecret),
			middleware.RequireRole("DRIVER", "PASSENGER"),
		}, mw...)...,
	)
	g.POST("/bookings", h.Create)
	g.GET("/my-bookings", h.List)
	g.GET("/bookings/:id", h.Get)
	g.PUT("/bookings/:id", h.Update)
	g.DELETE("/bookings/:id", h.Cancel)
}
