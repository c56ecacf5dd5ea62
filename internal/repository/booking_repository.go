package repository

import (
	"context"
	"time"

	"github.com/iliyamo/service-booking/internal/model"
)

// BookingStore persists bookings. Implementations assign the short id on
// Create and report ErrNotFound for unknown ids.
type BookingStore interface {
	Create(ctx context.Context, b model.Booking) (model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (model.Booking, error)
	Delete(ctx context.Context, id string) error
}

// BookingRepo keeps bookings in a single JSON array file.
type BookingRepo struct {
	file  *jsonFile[model.Booking]
	newID func() (string, error)
	now   func() time.Time
}

// NewBookingRepo returns a store backed by the file at path.
func NewBookingRepo(path string) *BookingRepo {
	return &BookingRepo{
		file:  newJSONFile[model.Booking](path),
		newID: NewShortID,
		now:   time.Now,
	}
}

// WithIDGenerator replaces the id generator. Used by tests to force
// collisions.
func (r *BookingRepo) WithIDGenerator(gen func() (string, error)) *BookingRepo {
	r.newID = gen
	return r
}

// Create assigns a fresh id, defaults the status to pending and appends the
// booking.
func (r *BookingRepo) Create(_ context.Context, b model.Booking) (model.Booking, error) {
	err := r.file.update(func(items *[]model.Booking) error {
		taken := make(map[string]bool, len(*items))
		for _, existing := range *items {
			taken[existing.ID] = true
		}
		id, err := GenerateUniqueID(func(id string) bool { return taken[id] }, r.newID)
		if err != nil {
			return err
		}
		b.ID = id
		if b.Status == "" {
			b.Status = model.BookingStatusPending
		}
		if b.CreatedAt == nil {
			now := r.now().UTC()
			b.CreatedAt = &now
		}
		if b.Addons == nil {
			b.Addons = []model.BookingAddon{}
		}
		if b.Options == nil {
			b.Options = map[string]string{}
		}
		*items = append(*items, b)
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// List returns all bookings in insertion order.
func (r *BookingRepo) List(_ context.Context) ([]model.Booking, error) {
	return r.file.load()
}

func (r *BookingRepo) Get(_ context.Context, id string) (model.Booking, error) {
	items, err := r.file.load()
	if err != nil {
		return model.Booking{}, err
	}
	for _, b := range items {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Booking{}, ErrNotFound
}

// UpdateStatus sets the status of one booking and returns the result.
func (r *BookingRepo) UpdateStatus(_ context.Context, id string, status model.BookingStatus) (model.Booking, error) {
	var updated model.Booking
	err := r.file.update(func(items *[]model.Booking) error {
		for i := range *items {
			if (*items)[i].ID == id {
				(*items)[i].Status = status
				updated = (*items)[i]
				return nil
			}
		}
		return ErrNotFound
	})
	return updated, err
}

// Delete removes one booking. An unknown id leaves the file untouched.
func (r *BookingRepo) Delete(_ context.Context, id string) error {
	return r.file.update(func(items *[]model.Booking) error {
		for i, b := range *items {
			if b.ID == id {
				*items = append((*items)[:i], (*items)[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}
