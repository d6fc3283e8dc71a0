package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/handler"
)

// RegisterPublic registers the unauthenticated catalog endpoints.
// Guests can browse tours and upcoming dates (with live seat
// availability) without an account; booking requires authentication.
// The optional cache middleware (Redis) is applied only here so that
// authenticated responses are never cached.
func RegisterPublic(e *echo.Echo, t *handler.TourHandler, d *handler.TourDateHandler, cache ...echo.MiddlewareFunc) {
	g := e.Group("/api", cache...)
	g.GET("/tours", t.List)
	g.GET("/tours/:slug", t.GetBySlug)
	g.GET("/tour-dates", d.List)
}
