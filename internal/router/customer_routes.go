package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/handler"
	"github.com/lucavalca/tour-booking/internal/middleware"
	"github.com/lucavalca/tour-booking/internal/model"
)

// RegisterBookings registers the booking endpoints under /api.  All
// routes require a valid JWT; both roles are accepted because admins
// use the same surface with wider filters and mutation rights, which
// the handlers enforce per-request.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer),
	)
	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.PUT("/bookings/:id", b.Update)
}
