package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/service-booking/internal/handler"
	"github.com/iliyamo/service-booking/internal/middleware"
	"github.com/iliyamo/service-booking/internal/service"
)

// RegisterRoutes registers routes that need no handler state.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated customer endpoints.
// cache wraps the catalogue listing; submitLimit guards booking submission.
func RegisterPublic(
	e *echo.Echo,
	p *handler.PublicHandler,
	b *handler.BookingHandler,
	cm *handler.CommentHandler,
	cache echo.MiddlewareFunc,
	submitLimit echo.MiddlewareFunc,
) {
	g := e.Group("/v1")
	g.GET("/settings", p.GetSettings)
	g.GET("/services", p.ListServices, cache)
	g.GET("/booking-form", p.BookingForm)

	g.POST("/bookings", b.Submit, submitLimit)
	g.GET("/bookings/:id", b.Get)
	g.GET("/bookings/:id/receipt.pdf", b.Receipt)

	g.GET("/bookings/:id/comments", cm.List)
	g.POST("/bookings/:id/comments", cm.Create)
}

// RegisterAdmin registers the report endpoints.  Login and first time
// setup are open; everything else requires an ADMIN token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, cm *handler.CommentHandler, jwtSecret string) {
	e.POST("/v1/admin/login", a.Login)
	e.GET("/v1/admin/setup", a.SetupStatus)
	e.POST("/v1/admin/setup", a.Setup)

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(service.AdminRole),
	)
	g.GET("/bookings", a.ListBookings)
	g.PATCH("/bookings/:id/status", a.UpdateStatus)
	g.DELETE("/bookings/:id", a.DeleteBooking)
	g.POST("/bookings/:id/comments", cm.CreateAdmin)
	g.DELETE("/comments/:id", cm.Delete)
	g.PUT("/password", a.ChangePassword)
}

// RegisterUploads serves derived comment images from dir under prefix.
func RegisterUploads(e *echo.Echo, prefix, dir string) {
	e.Static(prefix, dir)
}
