// Package service holds the booking site's business rules: pricing, captcha
// challenges, bookings, comment threads, admin authentication and the
// booking event publisher.
package service

import "fmt"

// ValidationError reports input that was understood but not acceptable.
// Handlers answer it with 400 and the message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
