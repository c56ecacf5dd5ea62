package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/media"
	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/repository"
)

// ImageStore derives the stored versions of an uploaded image and removes
// them again.
type ImageStore interface {
	Derive(data []byte) (model.ImagePaths, error)
	Remove(p model.ImagePaths) []error
}

// CommentInput is a new message for a booking's thread.  Image holds the raw
// upload and may be empty.
type CommentInput struct {
	BookingID string
	Content   string
	Image     []byte
	IsAdmin   bool
}

type CommentService struct {
	comments *repository.CommentRepo
	bookings repository.BookingStore
	images   ImageStore
	logger   *zap.Logger
}

func NewCommentService(comments *repository.CommentRepo, bookings repository.BookingStore, images ImageStore, logger *zap.Logger) *CommentService {
	return &CommentService{comments: comments, bookings: bookings, images: images, logger: logger}
}

// Create appends a comment to the thread of an existing booking.  A
// comment needs text, an image or both.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (model.Comment, error) {
	bookingID := normaliseID(in.BookingID)
	if _, err := s.bookings.Get(ctx, bookingID); err != nil {
		return model.Comment{}, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.Image) == 0 {
		return model.Comment{}, NewValidationError("content", "comment text or image is required")
	}

	c := model.Comment{BookingID: bookingID, Content: content, IsAdmin: in.IsAdmin}
	if len(in.Image) > 0 {
		paths, err := s.images.Derive(in.Image)
		if errors.Is(err, media.ErrInvalidImage) {
			return model.Comment{}, NewValidationError("image", "the uploaded file is not a supported image")
		}
		if err != nil {
			return model.Comment{}, err
		}
		c.ImagePaths = &paths
	}

	created, err := s.comments.Create(c)
	if err != nil {
		if c.ImagePaths != nil {
			s.removeImages(*c.ImagePaths)
		}
		return model.Comment{}, err
	}
	return created, nil
}

// List returns the thread of an existing booking in posting order.
func (s *CommentService) List(ctx context.Context, bookingID string) ([]model.Comment, error) {
	bookingID = normaliseID(bookingID)
	if _, err := s.bookings.Get(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.comments.ListByBooking(bookingID)
}

// Delete removes a comment.  Its image files are removed best effort:
// failures are logged and do not fail the call.
func (s *CommentService) Delete(_ context.Context, id string) error {
	c, err := s.comments.Delete(strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if c.ImagePaths != nil {
		s.removeImages(*c.ImagePaths)
	}
	return nil
}

// DeleteThread removes every comment of a booking along with their images.
func (s *CommentService) DeleteThread(bookingID string) error {
	removed, err := s.comments.DeleteByBooking(normaliseID(bookingID))
	if err != nil {
		return err
	}
	for _, c := range removed {
		if c.ImagePaths != nil {
			s.removeImages(*c.ImagePaths)
		}
	}
	return nil
}

func (s *CommentService) removeImages(p model.ImagePaths) {
	for _, err := range s.images.Remove(p) {
		s.logger.Warn("remove comment image", zap.String("full_size", p.FullSize), zap.Error(err))
	}
}
