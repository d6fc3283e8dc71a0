package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/handler"
	"github.com/lucavalca/tour-booking/internal/middleware"
	"github.com/lucavalca/tour-booking/internal/model"
)

// RegisterAdmin registers every ADMIN-only endpoint: catalog
// management, QR check-in, the notification feed, dashboard stats and
// user management.  All routes require a valid JWT carrying the ADMIN
// role.
func RegisterAdmin(
	e *echo.Echo,
	t *handler.TourHandler,
	d *handler.TourDateHandler,
	q *handler.QRCodeHandler,
	n *handler.NotificationHandler,
	a *handler.AdminHandler,
	jwtSecret string,
) {
	g := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// catalog management; public reads are registered separately
	g.POST("/tours", t.Create)
	g.PUT("/tours/:id", t.Update)
	g.DELETE("/tours/:id", t.Delete)
	g.POST("/tour-dates", d.Create)
	g.PUT("/tour-dates/:id", d.Update)
	g.DELETE("/tour-dates/:id", d.Delete)

	// meeting-point check-in
	g.POST("/qrcode/verify", q.Verify)

	// notification feed
	g.GET("/notifications", n.List)
	g.GET("/notifications/unread-count", n.UnreadCount)
	g.PUT("/notifications/seen-all", n.MarkAllSeen)
	g.PUT("/notifications/:id/seen", n.MarkSeen)

	// dashboard and user management
	g.GET("/admin/stats", a.DashboardStats)
	g.GET("/admin/users", a.ListUsers)
	g.POST("/admin/users", a.CreateUser)
	g.DELETE("/admin/users/:id", a.DeleteUser)
}
