// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/handler"
	"github.com/iliyamo/ride-share-booking/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication at
// all.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes and the protected /v1/me
// endpoint.  Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes a refresh token in the body so an expired access
	// token never traps a session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("DRIVER", "PASSENGER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints: ride
// listing, ride detail, ride search and per-ride reviews.  The extra
// middleware (normally the Redis response cache) applies to this group
// only.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/rides", p.ListRides)
	g.GET("/rides/:id", p.GetRide)
	g.GET("/rides/:id/reviews", p.ListRideReviews)
	g.GET("/search/rides", p.SearchRides)
}
