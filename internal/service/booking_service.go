package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/queue"
	"github.com/iliyamo/service-booking/internal/repository"
)

const eventPublishTimeout = 5 * time.Second

// Catalog looks services up by title.
type Catalog interface {
	Service(title string) (model.Service, bool)
}

// SettingsReader exposes the site settings.
type SettingsReader interface {
	Get() (model.Settings, error)
}

// ThreadRemover deletes the comment thread of a booking.
type ThreadRemover interface {
	DeleteThread(bookingID string) error
}

// BookingInput is a booking submission as received from the form.
type BookingInput struct {
	Name           string
	WhatsAppNumber string
	Email          string
	ServiceTitle   string
	Date           string
	Addons         []string
	Options        map[string]string
	CaptchaID      string
	CaptchaAnswer  string
}

// SubmitResult is the stored booking plus the link that opens a WhatsApp
// chat with the business pre-filled with the booking summary.
type SubmitResult struct {
	Booking     model.Booking
	WhatsAppURL string
}

type BookingService struct {
	bookings repository.BookingStore
	threads  ThreadRemover
	catalog  Catalog
	captcha  *CaptchaService
	settings SettingsReader
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(
	bookings repository.BookingStore,
	threads ThreadRemover,
	catalog Catalog,
	captcha *CaptchaService,
	settings SettingsReader,
	events EventPublisher,
	logger *zap.Logger,
) *BookingService {
	if events == nil {
		events = NopPublisher{}
	}
	return &BookingService{
		bookings: bookings,
		threads:  threads,
		catalog:  catalog,
		captcha:  captcha,
		settings: settings,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit checks the captcha, prices the selection against the catalogue and
// stores a pending booking.
func (s *BookingService) Submit(ctx context.Context, in BookingInput) (SubmitResult, error) {
	ok, err := s.captcha.Verify(ctx, in.CaptchaID, in.CaptchaAnswer)
	if err != nil {
		return SubmitResult{}, err
	}
	if !ok {
		return SubmitResult{}, NewValidationError("captcha", "Invalid captcha. Please try again.")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.WhatsAppNumber = strings.TrimSpace(in.WhatsAppNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.Date = strings.TrimSpace(in.Date)
	switch {
	case in.Name == "":
		return SubmitResult{}, NewValidationError("name", "name is required")
	case in.WhatsAppNumber == "":
		return SubmitResult{}, NewValidationError("whatsappNumber", "WhatsApp number is required")
	case in.Date == "":
		return SubmitResult{}, NewValidationError("date", "date is required")
	}

	svc, found := s.catalog.Service(strings.TrimSpace(in.ServiceTitle))
	if !found {
		return SubmitResult{}, NewValidationError("service", "Invalid service selected")
	}
	total, addons, err := CalculateTotal(svc, in.Addons, in.Options)
	if err != nil {
		return SubmitResult{}, err
	}

	b, err := s.bookings.Create(ctx, model.Booking{
		Name:           in.Name,
		WhatsAppNumber: in.WhatsAppNumber,
		Email:          in.Email,
		ServiceTitle:   svc.Title,
		Date:           in.Date,
		Addons:         addons,
		Options:        SelectedOptions(in.Options),
		TotalPrice:     total,
		Status:         model.BookingStatusPending,
	})
	if err != nil {
		return SubmitResult{}, err
	}
	s.publish(queue.EventBookingCreated, b)

	settings, err := s.settings.Get()
	if err != nil {
		// the booking is stored; a missing number only degrades the link
		s.logger.Warn("read settings for whatsapp link", zap.Error(err))
	}
	return SubmitResult{Booking: b, WhatsAppURL: WhatsAppLink(settings.WhatsAppNumber, b)}, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (model.Booking, error) {
	return s.bookings.Get(ctx, normaliseID(id))
}

// List returns all bookings, or only those with the given status.
func (s *BookingService) List(ctx context.Context, status string) ([]model.Booking, error) {
	all, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	st := model.BookingStatus(strings.ToLower(status))
	if !st.Valid() {
		return nil, NewValidationError("status", "unknown status %q", status)
	}
	out := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if b.Status == st {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (model.Booking, error) {
	st := model.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return model.Booking{}, NewValidationError("status", "unknown status %q", status)
	}
	b, err := s.bookings.UpdateStatus(ctx, normaliseID(id), st)
	if err != nil {
		return model.Booking{}, err
	}
	s.publish(queue.EventBookingStatusChanged, b)
	return b, nil
}

// Delete removes the booking together with its comment thread.  A failure
// to clear the thread is logged; the booking itself is already gone.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	id = normaliseID(id)
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	if s.threads != nil {
		if err := s.threads.DeleteThread(id); err != nil {
			s.logger.Error("delete comment thread", zap.String("booking_id", id), zap.Error(err))
		}
	}
	s.publish(queue.EventBookingDeleted, b)
	return nil
}

// publish sends the event in the background, bounded by
// eventPublishTimeout.
func (s *BookingService) publish(eventType string, b model.Booking) {
	ev := queue.NewBookingEvent(eventType, b, s.now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
		defer cancel()
		if err := s.events.PublishBookingEvent(ctx, ev); err != nil {
			s.logger.Warn("publish booking event", zap.String("event", ev.Type),
				zap.String("booking_id", ev.BookingID), zap.Error(err))
		}
	}()
}

// WhatsAppLink builds the wa.me link for number with the booking summary as
// the pre-filled message.
func WhatsAppLink(number string, b model.Booking) string {
	msg := "Hello! I'd like to confirm my booking:\n\n" +
		"Booking ID: " + b.ID + "\n" +
		"Service: " + b.ServiceTitle + "\n" +
		"Date: " + b.Date + "\n" +
		"Total Price: $" + strconv.FormatFloat(b.TotalPrice, 'f', -1, 64) + "\n\n" +
		"Thank you!"
	return "https://wa.me/" + digitsOnly(number) + "?text=" + encodeURIComponent(msg)
}

// uriComponentUnescape undoes the escapes url.QueryEscape applies to
// characters that URI components leave as they are.
var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return uriComponentUnescape.Replace(url.QueryEscape(s))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normaliseID accepts ids typed in lower case or with stray spaces.
func normaliseID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
