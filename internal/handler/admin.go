package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/service"
)

// AdminHandler serves the password protected report: login, first time
// setup, the booking list and booking management.
type AdminHandler struct {
	Auth     *service.AuthService
	Bookings *service.BookingService
	Logger   *zap.Logger
}

func NewAdminHandler(auth *service.AuthService, bookings *service.BookingService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Auth: auth, Bookings: bookings, Logger: logger}
}

// ----- DTOs -----

type passwordReq struct {
	Password string `json:"password"`
}
type statusReq struct {
	Status string `json:"status"`
}
type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login exchanges the report password for an admin access token.
func (h *AdminHandler) Login(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	access, err := h.Auth.Login(req.Password)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, tokenPart{Token: access.Token, Expires: access.Exp})
}

// SetupStatus tells the report page whether a password has been set up,
// so it can offer first time setup instead of the login form.
func (h *AdminHandler) SetupStatus(c echo.Context) error {
	configured, err := h.Auth.HasPassword()
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"configured": configured})
}

// Setup stores the first report password.  Once one exists it answers 409
// and the password can only be changed through ChangePassword.
func (h *AdminHandler) Setup(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Auth.Setup(req.Password); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword replaces the report password.
func (h *AdminHandler) ChangePassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Auth.SetPassword(req.Password); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings returns every booking, filtered by ?status= when given.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	items, err := h.Bookings.List(ctx, c.QueryParam("status"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBooking removes a booking and its comment thread.
func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Bookings.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
