// Package handler exposes the HTTP endpoints: auth, the public
// course/session catalogue, booking operations and admin scheduling.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load balancer probes.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
