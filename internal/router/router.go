// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lucavalca/tour-booking/internal/handler"
	"github.com/lucavalca/tour-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  The open
// operations (register, login, refresh, logout and the Firebase token
// exchange) live under /api/auth; /api/auth/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	// Exchange endpoint for clients that signed in through Firebase.
	// Upserts the local account and returns the same token pair the
	// password flow does.
	g.POST("/firebase", a.FirebaseExchange)

	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
