package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/receipt"
	"github.com/iliyamo/service-booking/internal/service"
)

// BookingHandler serves customer-facing booking endpoints: submission,
// tracking and the PDF receipt.
type BookingHandler struct {
	Bookings *service.BookingService
	BaseURL  string // public origin used in tracking links
	Logger   *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, baseURL string, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, BaseURL: baseURL, Logger: logger}
}

// ----- DTOs -----

// submitReq binds JSON bodies and HTML form posts.  Forms send options as
// options[Name]=Value pairs, which formSelections collects.
type submitReq struct {
	Name           string            `json:"name" form:"name"`
	WhatsAppNumber string            `json:"whatsappNumber" form:"whatsappNumber"`
	Email          string            `json:"email" form:"email"`
	Service        string            `json:"service" form:"service"`
	Date           string            `json:"date" form:"date"`
	Addons         []string          `json:"addons" form:"addons"`
	Options        map[string]string `json:"options" form:"-"`
	CaptchaID      string            `json:"captchaId" form:"captchaId"`
	CaptchaAnswer  answerText        `json:"captcha" form:"captcha"`
}

// answerText accepts the captcha answer as a JSON string or number.
type answerText string

func (a *answerText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = answerText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = answerText(n.String())
	return nil
}

type submitResp struct {
	ID          string `json:"id"`
	WhatsAppURL string `json:"whatsapp_url"`
	TrackURL    string `json:"track_url"`
}

func (h *BookingHandler) trackURL(id string) string {
	return h.BaseURL + "/v1/bookings/" + id
}

// Submit stores a booking.  On success the client is handed the WhatsApp
// link to confirm with the business and the tracking URL.
func (h *BookingHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if isForm(c) {
		form, err := c.FormParams()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		req.Addons, req.Options = formSelections(form, req.Addons)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Bookings.Submit(ctx, service.BookingInput{
		Name:           req.Name,
		WhatsAppNumber: req.WhatsAppNumber,
		Email:          req.Email,
		ServiceTitle:   req.Service,
		Date:           req.Date,
		Addons:         req.Addons,
		Options:        req.Options,
		CaptchaID:      req.CaptchaID,
		CaptchaAnswer:  string(req.CaptchaAnswer),
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, submitResp{
		ID:          res.Booking.ID,
		WhatsAppURL: res.WhatsAppURL,
		TrackURL:    h.trackURL(res.Booking.ID),
	})
}

// Get returns one booking by its short id.
func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Bookings.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Receipt renders the booking as a one page PDF with a QR code pointing
// at its tracking URL.
func (h *BookingHandler) Receipt(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Bookings.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	pdf, err := receipt.Render(b, h.trackURL(b.ID))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="booking-`+b.ID+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func isForm(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}

// formSelections reads options[Name]=Value pairs and adds any addons[]
// values to the add-ons bound from plain "addons" fields.
func formSelections(form url.Values, addons []string) ([]string, map[string]string) {
	options := make(map[string]string)
	for key, vals := range form {
		switch {
		case key == "addons[]":
			addons = append(addons, vals...)
		case strings.HasPrefix(key, "options[") && strings.HasSuffix(key, "]") && len(vals) > 0:
			name := key[len("options[") : len(key)-1]
			if name != "" {
				options[name] = vals[0]
			}
		}
	}
	return addons, options
}
