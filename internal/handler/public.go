package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/service"
)

// ServiceCatalog lists the bookable services.
type ServiceCatalog interface {
	Services() []model.Service
	Service(title string) (model.Service, bool)
}

// PublicHandler serves the catalogue and the data the booking form needs.
type PublicHandler struct {
	Catalog  ServiceCatalog
	Settings service.SettingsReader
	Captcha  *service.CaptchaService
	Logger   *zap.Logger
}

func NewPublicHandler(catalog ServiceCatalog, settings service.SettingsReader, captcha *service.CaptchaService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{Catalog: catalog, Settings: settings, Captcha: captcha, Logger: logger}
}

type captchaPart struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

type bookingFormResp struct {
	Service        model.Service `json:"service"`
	WhatsAppNumber string        `json:"whatsapp_number"`
	Captcha        captchaPart   `json:"captcha"`
}

// GetSettings exposes the public part of settings.json.  The report
// password never leaves the server.
func (h *PublicHandler) GetSettings(c echo.Context) error {
	s, err := h.Settings.Get()
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"whatsapp_number": s.WhatsAppNumber})
}

// ListServices returns the whole catalogue.
func (h *PublicHandler) ListServices(c echo.Context) error {
	items := h.Catalog.Services()
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// BookingForm returns the service named by ?service= together with a fresh
// captcha challenge.  The answer is kept server side.
func (h *PublicHandler) BookingForm(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("service"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service is required"})
	}
	svc, ok := h.Catalog.Service(title)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	captcha, err := h.Captcha.New(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	settings, err := h.Settings.Get()
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, bookingFormResp{
		Service:        svc,
		WhatsAppNumber: settings.WhatsAppNumber,
		Captcha:        captchaPart{ID: captcha.ID, Question: captcha.Question},
	})
}
