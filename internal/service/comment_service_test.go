package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/media"
	"github.com/iliyamo/service-booking/internal/model"
	"github.com/iliyamo/service-booking/internal/repository"
)

type fakeImages struct {
	mu        sync.Mutex
	derived   int
	removed   []model.ImagePaths
	removeErr error
}

func (f *fakeImages) Derive(data []byte) (model.ImagePaths, error) {
	if string(data) == "garbage" {
		return model.ImagePaths{}, media.ErrInvalidImage
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.derived++
	return model.ImagePaths{FullSize: "/uploads/comments/a.jpg", Thumbnail: "/uploads/comments/a_thumb.jpg"}, nil
}

func (f *fakeImages) Remove(p model.ImagePaths) []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, p)
	if f.removeErr != nil {
		return []error{f.removeErr}
	}
	return nil
}

func newCommentFixture(t *testing.T) (*CommentService, *fakeImages, string) {
	t.Helper()
	dir := t.TempDir()
	bookings := repository.NewBookingRepo(filepath.Join(dir, "bookings.json"))
	b, err := bookings.Create(context.Background(), model.Booking{Name: "Ana", ServiceTitle: "Haircut"})
	if err != nil {
		t.Fatal(err)
	}
	images := &fakeImages{}
	svc := NewCommentService(repository.NewCommentRepo(filepath.Join(dir, "comments.json")), bookings, images, zap.NewNop())
	return svc, images, b.ID
}

func TestCommentCreateAndList(t *testing.T) {
	ctx := context.Background()
	svc, images, id := newCommentFixture(t)

	if _, err := svc.Create(ctx, CommentInput{BookingID: id, Content: "  When can I come?  "}); err != nil {
		t.Fatal(err)
	}
	withImage, err := svc.Create(ctx, CommentInput{BookingID: id, Content: "see photo", Image: []byte("png"), IsAdmin: true})
	if err != nil {
		t.Fatal(err)
	}
	if withImage.ImagePaths == nil || images.derived != 1 {
		t.Errorf("image not derived: %+v", withImage)
	}
	if _, err := svc.Create(ctx, CommentInput{BookingID: id, Image: []byte("png")}); err != nil {
		t.Errorf("image-only comment rejected: %v", err)
	}

	thread, err := svc.List(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(thread) != 3 {
		t.Fatalf("len(thread) = %d, want 3", len(thread))
	}
	if thread[0].Content != "When can I come?" || !thread[1].IsAdmin {
		t.Errorf("thread = %+v", thread)
	}
}

func TestCommentCreateRejects(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newCommentFixture(t)

	if _, err := svc.Create(ctx, CommentInput{BookingID: "ZZZZZZ", Content: "hi"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown booking error = %v, want ErrNotFound", err)
	}

	var ve *ValidationError
	if _, err := svc.Create(ctx, CommentInput{BookingID: id, Content: "   "}); !errors.As(err, &ve) {
		t.Errorf("empty comment error = %v, want ValidationError", err)
	}
	if _, err := svc.Create(ctx, CommentInput{BookingID: id, Image: []byte("garbage")}); !errors.As(err, &ve) || ve.Field != "image" {
		t.Errorf("bad image error = %v, want ValidationError on image", err)
	}
	if _, err := svc.List(ctx, "ZZZZZZ"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("List(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestCommentDeleteRemovesImagesBestEffort(t *testing.T) {
	ctx := context.Background()
	svc, images, id := newCommentFixture(t)
	images.removeErr = errors.New("permission denied")

	c, err := svc.Create(ctx, CommentInput{BookingID: id, Content: "pic", Image: []byte("png")})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v, want nil despite image removal failure", err)
	}
	if len(images.removed) != 1 {
		t.Errorf("Remove called %d times, want 1", len(images.removed))
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
	}
}

func TestCommentDeleteWithoutImageTouchesNoFiles(t *testing.T) {
	ctx := context.Background()
	svc, images, id := newCommentFixture(t)

	c, err := svc.Create(ctx, CommentInput{BookingID: id, Content: "see you at ten"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ImagePaths != nil {
		t.Fatalf("text comment has image paths %+v", c.ImagePaths)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(images.removed) != 0 {
		t.Errorf("Remove called %d times for a text-only comment, want 0", len(images.removed))
	}
}
