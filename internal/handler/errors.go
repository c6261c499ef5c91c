package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/surf-school-booking/internal/model"
	"github.com/iliyamo/surf-school-booking/internal/repository"
	"github.com/iliyamo/surf-school-booking/internal/service"
)

// writeServiceErr maps the core's sentinel errors onto HTTP statuses:
// missing resources are 404, state conflicts 409, seat-ledger
// precondition failures 422, bad input 400, everything unexpected
// 500.
func writeServiceErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrCourseNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})

	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})

	case errors.Is(err, service.ErrVersionConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrBookingCancelled),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})

	case errors.Is(err, service.ErrSessionCancelled),
		errors.Is(err, service.ErrNoAvailableSpots),
		errors.Is(err, service.ErrSpotsNotInitialized),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrCapacityBelowBooked):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrSessionRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pathID parses the numeric :id (or other named) path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// authUserID extracts the authenticated account id stored by the JWT
// middleware.  JWT numeric claims decode as float64.
func authUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// isAdmin reports whether the authenticated caller carries the ADMIN
// role claim.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}
