package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/service-booking/internal/service"
)

// MaxImageBytes caps the size of an uploaded comment image.
const MaxImageBytes = 10 << 20

const imageField = "image"

// CommentHandler serves the comment thread of a booking, for customers and
// (with isAdmin set) for the report view.
type CommentHandler struct {
	Comments *service.CommentService
	Logger   *zap.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{Comments: comments, Logger: logger}
}

type commentReq struct {
	Content string `json:"content" form:"content"`
}

var errImageTooLarge = errors.New("image too large")

// List returns the thread of the booking in :id.
func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	items, err := h.Comments.List(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Create posts a customer comment.
func (h *CommentHandler) Create(c echo.Context) error { return h.create(c, false) }

// CreateAdmin posts a comment from the report view.
func (h *CommentHandler) CreateAdmin(c echo.Context) error { return h.create(c, true) }

// create accepts either a JSON body or a multipart form whose optional
// "image" part carries the attachment.
func (h *CommentHandler) create(c echo.Context, isAdmin bool) error {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	image, err := readImage(c)
	if err != nil {
		if errors.Is(err, errImageTooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image too large"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image upload"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	created, err := h.Comments.Create(ctx, service.CommentInput{
		BookingID: c.Param("id"),
		Content:   req.Content,
		Image:     image,
		IsAdmin:   isAdmin,
	})
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Delete removes one comment and its image files.
func (h *CommentHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Comments.Delete(ctx, c.Param("id")); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// readImage returns the bytes of the multipart "image" part, or nil when the
// request is not multipart or carries no such part.
func readImage(c echo.Context) ([]byte, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size > MaxImageBytes {
		return nil, errImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, errImageTooLarge
	}
	return data, nil
}
