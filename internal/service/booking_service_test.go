package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/queue"
	"github.com/iliyamo/service-booking/internal/repository"
)

type stubCatalog map[string]model.Service

func (c stubCatalog) Service(title string) (model.Service, bool) {
	s, ok := c[title]
	return s, ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	got    chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{got: make(chan struct{}, 16)}
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.got <- struct{}{}
	return nil
}

func (p *recordingPublisher) wait(t *testing.T, n int) []queue.BookingEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-p.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.BookingEvent(nil), p.events...)
}

type bookingFixture struct {
	svc      *BookingService
	captcha  *CaptchaService
	comments *CommentService
	events   *recordingPublisher
	repo     *repository.BookingRepo
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(settingsPath, []byte(`{"whatsapp_number": "+1 555 0100"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := repository.NewBookingRepo(filepath.Join(dir, "bookings.json"))
	captcha := NewCaptchaService(repository.NewMemoryCaptchaStore(), time.Minute)
	comments := NewCommentService(repository.NewCommentRepo(filepath.Join(dir, "comments.json")), repo, &fakeImages{}, zap.NewNop())
	events := newRecordingPublisher()
	catalog := stubCatalog{"Haircut": pricedService()}

	svc := NewBookingService(repo, comments, catalog, captcha, repository.NewSettingsRepo(settingsPath), events, zap.NewNop())
	return &bookingFixture{svc: svc, captcha: captcha, comments: comments, events: events, repo: repo}
}

func (f *bookingFixture) input(t *testing.T) BookingInput {
	t.Helper()
	c, err := f.captcha.New(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return BookingInput{
		Name:           " Ana ",
		WhatsAppNumber: "+15550001",
		ServiceTitle:   "Haircut",
		Date:           "2026-11-02",
		Addons:         []string{"Wash"},
		Options:        map[string]string{"Length": "Long", "Styling": ""},
		CaptchaID:      c.ID,
		CaptchaAnswer:  fmt.Sprint(c.Answer),
	}
}

func TestSubmitStoresPricedBooking(t *testing.T) {
	f := newBookingFixture(t)
	res, err := f.svc.Submit(context.Background(), f.input(t))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	b := res.Booking
	if b.TotalPrice != 15 {
		t.Errorf("TotalPrice = %v, want 15", b.TotalPrice)
	}
	if b.Name != "Ana" || b.Status != model.BookingStatusPending {
		t.Errorf("booking = %+v", b)
	}
	if _, ok := b.Options["Styling"]; ok {
		t.Errorf("empty option stored: %v", b.Options)
	}

	stored, err := f.svc.Get(context.Background(), b.ID)
	if err != nil || stored.TotalPrice != 15 {
		t.Errorf("Get() = %+v, %v", stored, err)
	}

	want := WhatsAppLink("15550100", b)
	if res.WhatsAppURL != want {
		t.Errorf("WhatsAppURL = %q, want %q", res.WhatsAppURL, want)
	}

	events := f.events.wait(t, 1)
	if events[0].Type != queue.EventBookingCreated || events[0].BookingID != b.ID {
		t.Errorf("event = %+v", events[0])
	}
}

func TestSubmitRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BookingInput)
		field  string
	}{
		{"wrong captcha", func(in *BookingInput) { in.CaptchaAnswer = "99" }, "captcha"},
		{"missing captcha", func(in *BookingInput) { in.CaptchaID = "" }, "captcha"},
		{"missing name", func(in *BookingInput) { in.Name = "  " }, "name"},
		{"missing number", func(in *BookingInput) { in.WhatsAppNumber = "" }, "whatsappNumber"},
		{"missing date", func(in *BookingInput) { in.Date = "" }, "date"},
		{"unknown service", func(in *BookingInput) { in.ServiceTitle = "Massage" }, "service"},
		{"unknown addon", func(in *BookingInput) { in.Addons = []string{"Nope"} }, "addons"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			in := f.input(t)
			tt.mutate(&in)
			_, err := f.svc.Submit(context.Background(), in)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("Submit() error = %v, want ValidationError on %s", err, tt.field)
			}
			items, _ := f.repo.List(context.Background())
			if len(items) != 0 {
				t.Errorf("rejected submission was stored")
			}
		})
	}
}

func TestSubmitCaptchaIsConsumed(t *testing.T) {
	f := newBookingFixture(t)
	in := f.input(t)
	if _, err := f.svc.Submit(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	var ve *ValidationError
	if _, err := f.svc.Submit(context.Background(), in); !errors.As(err, &ve) {
		t.Errorf("replayed captcha error = %v, want ValidationError", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	a, _ := f.svc.Submit(ctx, f.input(t))
	f.svc.Submit(ctx, f.input(t))
	if _, err := f.svc.UpdateStatus(ctx, a.Booking.ID, "Confirmed"); err != nil {
		t.Fatal(err)
	}

	all, _ := f.svc.List(ctx, "")
	if len(all) != 2 {
		t.Errorf("List(\"\") = %d bookings, want 2", len(all))
	}
	confirmed, err := f.svc.List(ctx, "confirmed")
	if err != nil || len(confirmed) != 1 || confirmed[0].ID != a.Booking.ID {
		t.Errorf("List(confirmed) = %+v, %v", confirmed, err)
	}
	var ve *ValidationError
	if _, err := f.svc.List(ctx, "archived"); !errors.As(err, &ve) {
		t.Errorf("List(archived) error = %v, want ValidationError", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Submit(ctx, f.input(t))

	var ve *ValidationError
	if _, err := f.svc.UpdateStatus(ctx, res.Booking.ID, "shipped"); !errors.As(err, &ve) {
		t.Errorf("UpdateStatus(shipped) error = %v, want ValidationError", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, "ZZZZZZ", "completed"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("UpdateStatus(unknown) error = %v, want ErrNotFound", err)
	}

	b, err := f.svc.UpdateStatus(ctx, " "+res.Booking.ID+" ", "completed")
	if err != nil || b.Status != model.BookingStatusCompleted {
		t.Fatalf("UpdateStatus() = %+v, %v", b, err)
	}
	found := false
	for _, ev := range f.events.wait(t, 2) {
		if ev.Type == queue.EventBookingStatusChanged && ev.Status == "completed" {
			found = true
		}
	}
	if !found {
		t.Errorf("no status change event published")
	}
}

func TestDeleteCascadesComments(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	res, _ := f.svc.Submit(ctx, f.input(t))
	id := res.Booking.ID

	if _, err := f.comments.Create(ctx, CommentInput{BookingID: id, Content: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.svc.Get(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v", err)
	}
	left, _ := f.comments.comments.ListByBooking(id)
	if len(left) != 0 {
		t.Errorf("%d comments survived booking deletion", len(left))
	}
	if err := f.svc.Delete(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
	}
}

func TestWhatsAppLink(t *testing.T) {
	b := model.Booking{ID: "K7QX2M", ServiceTitle: "Haircut", Date: "2026-11-02", TotalPrice: 15}
	got := WhatsAppLink("+1 555 0100", b)
	want := "https://wa.me/15550100?text=" +
		"Hello!%20I'd%20like%20to%20confirm%20my%20booking%3A%0A%0A" +
		"Booking%20ID%3A%20K7QX2M%0A" +
		"Service%3A%20Haircut%0A" +
		"Date%3A%202026-11-02%0A" +
		"Total%20Price%3A%20%2415%0A%0A" +
		"Thank%20you!"
	if got != want {
		t.Errorf("WhatsAppLink() =\n%s\nwant\n%s", got, want)
	}

	b.TotalPrice = 52.5
	if got := WhatsAppLink("1", b); !strings.Contains(got, "%2452.5%0A") {
		t.Errorf("fractional price not rendered as entered: %s", got)
	}
}

func TestSubmitTrimsServiceTitle(t *testing.T) {
	f := newBookingFixture(t)
	in := f.input(t)
	in.ServiceTitle = "  Haircut\t"
	res, err := f.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Booking.ServiceTitle != "Haircut" {
		t.Errorf("ServiceTitle = %q, want Haircut", res.Booking.ServiceTitle)
	}
	f.events.wait(t, 1)
}
