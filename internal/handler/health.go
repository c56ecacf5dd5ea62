package handler // package handler holds the echo handlers of the HTTP API

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is used by load balancers and monitoring to check that the
// process is up.  It writes a plain "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
