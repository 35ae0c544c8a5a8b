package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/handler"
	"github.com/iliyamo/ride-share-booking/internal/middleware"
)

// RegisterReviews registers review endpoints under /v1 for signed-in
// users of either role.  Public per-ride review listing lives on the
// public router.
func RegisterReviews(e *echo.Echo, h *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DRIVER", "PASSENGER"),
	)
	g.POST("/reviews", h.Create)
	g.GET("/my-reviews", h.List)
	g.PUT("/reviews/:id", h.Update)
	g.DELETE("/reviews/:id", h.Delete)
}
