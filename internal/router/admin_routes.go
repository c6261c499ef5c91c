package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/handler"
	"github.com/iliyamo/surf-school-booking/internal/middleware"
	"github.com/iliyamo/surf-school-booking/internal/model"
)

// RegisterAdmin registers the scheduling and management endpoints
// restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, ch *handler.CourseHandler, sh *handler.SessionHandler, bh *handler.BookingHandler, mw Middlewares) {
	g := e.Group("/v1", mw.RateLimit, middleware.JWTAuth(mw.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))

	g.POST("/sessions", sh.Create)
	g.PATCH("/sessions/:id/capacity", sh.SetCapacity)
	g.POST("/sessions/:id/cancel", sh.Cancel)

	g.POST("/courses", ch.Create)
	g.PUT("/courses/:id", ch.Update)
	g.DELETE("/courses/:id", ch.Delete)

	g.PATCH("/bookings/:id/session", bh.SetSession)
	g.DELETE("/bookings/:id", bh.Delete)
}
