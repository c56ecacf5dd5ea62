package middleware

import "github.com/labstack/echo/v4"

// currentUserID returns the subject stored by JWTAuth, or "anon" for
// unauthenticated requests.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// clientIP is the address rate limits are keyed on.
func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
