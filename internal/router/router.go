// Package router maps HTTP routes onto handlers and applies the
// middleware chain: rate limiting on everything under /v1, JWT auth
// on protected routes, response caching on the public catalogue.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/handler"
	"github.com/iliyamo/surf-school-booking/internal/middleware"
	"github.com/iliyamo/surf-school-booking/internal/model"
)

// Middlewares groups the cross-cutting middleware instances built in
// main so the register functions stay flat.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc // token bucket on all /v1 routes
	Cache     echo.MiddlewareFunc // response cache on the public catalogue
	JWTSecret string
}

// RegisterRoutes registers the routes that carry no middleware at
// all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints under /v1/auth plus
// the protected identity routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, mw Middlewares) {
	g := e.Group("/v1/auth", mw.RateLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", mw.RateLimit, middleware.JWTAuth(mw.JWTSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterPublic registers the unauthenticated catalogue and the
// confirmation link.  Catalogue reads are cached; the confirmation
// link mutates state and must never be.
func RegisterPublic(e *echo.Echo, ch *handler.CourseHandler, sh *handler.SessionHandler, bh *handler.BookingHandler, mw Middlewares) {
	g := e.Group("/v1", mw.RateLimit)
	g.GET("/courses", ch.List, mw.Cache)
	g.GET("/courses/:id", ch.Get, mw.Cache)
	g.GET("/sessions", sh.List, mw.Cache)
	g.GET("/sessions/:id", sh.Get, mw.Cache)
	g.GET("/bookings/confirm/:token", bh.Confirm)
}

// RegisterBookings registers the authenticated booking operations
// available to both roles.  Ownership checks live in the handlers.
func RegisterBookings(e *echo.Echo, bh *handler.BookingHandler, mw Middlewares) {
	g := e.Group("/v1", mw.RateLimit, middleware.JWTAuth(mw.JWTSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	g.POST("/bookings", bh.Create)
	g.GET("/my-bookings", bh.MyBookings)
	g.GET("/bookings/:id", bh.Get)
	g.PATCH("/bookings/:id/status", bh.SetStatus)
}
