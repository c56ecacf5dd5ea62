package repository

import (
	"strconv"
	"time"

	"github.com/iliyamo/service-booking/internal/model"
)

// CommentRepo keeps the comment threads of all bookings in one JSON array
// file.
type CommentRepo struct {
	file *jsonFile[model.Comment]
	now  func() time.Time
}

func NewCommentRepo(path string) *CommentRepo {
	return &CommentRepo{file: newJSONFile[model.Comment](path), now: time.Now}
}

// Create stores c with a millisecond timestamp id, bumped until it is
// unused, and the current time.
func (r *CommentRepo) Create(c model.Comment) (model.Comment, error) {
	err := r.file.update(func(items *[]model.Comment) error {
		taken := make(map[string]bool, len(*items))
		for _, existing := range *items {
			taken[existing.ID] = true
		}
		now := r.now().UTC()
		ms := now.UnixMilli()
		for taken[strconv.FormatInt(ms, 10)] {
			ms++
		}
		c.ID = strconv.FormatInt(ms, 10)
		c.CreatedAt = now
		*items = append(*items, c)
		return nil
	})
	if err != nil {
		return model.Comment{}, err
	}
	return c, nil
}

// ListByBooking returns the thread of one booking in insertion order.
func (r *CommentRepo) ListByBooking(bookingID string) ([]model.Comment, error) {
	items, err := r.file.load()
	if err != nil {
		return nil, err
	}
	out := []model.Comment{}
	for _, c := range items {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Delete removes one comment and returns it so the caller can clean up its
// images.
func (r *CommentRepo) Delete(id string) (model.Comment, error) {
	var removed model.Comment
	err := r.file.update(func(items *[]model.Comment) error {
		for i, c := range *items {
			if c.ID == id {
				removed = c
				*items = append((*items)[:i], (*items)[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
	return removed, err
}

// DeleteByBooking removes the whole thread of a booking and returns the
// removed comments.
func (r *CommentRepo) DeleteByBooking(bookingID string) ([]model.Comment, error) {
	removed := []model.Comment{}
	err := r.file.update(func(items *[]model.Comment) error {
		kept := (*items)[:0]
		for _, c := range *items {
			if c.BookingID == bookingID {
				removed = append(removed, c)
				continue
			}
			kept = append(kept, c)
		}
		*items = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
