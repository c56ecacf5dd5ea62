// Package media derives and removes the image files attached to comments.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/iliyamo/service-booking/internal/model"
)

const (
	fullMaxSide = 1200
	thumbSide   = 50
	jpegQuality = 85
)

// ErrInvalidImage is returned when uploaded bytes cannot be decoded.
var ErrInvalidImage = errors.New("invalid image")

// Images writes derived files into Dir and names them by URLPrefix in the
// returned public paths.
type Images struct {
	Dir       string
	URLPrefix string
}

func NewImages(dir, urlPrefix string) *Images {
	return &Images{Dir: dir, URLPrefix: urlPrefix}
}

// Derive decodes data and stores two JPEGs: the image scaled to fit within
// 1200x1200 keeping its aspect ratio (never enlarged), and a 50x50
// thumbnail cropped around the centre.
func (m *Images) Derive(data []byte) (model.ImagePaths, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return model.ImagePaths{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return model.ImagePaths{}, fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString()
	fullName := name + ".jpg"
	thumbName := name + "_thumb.jpg"

	full := imaging.Fit(img, fullMaxSide, fullMaxSide, imaging.Lanczos)
	if err := m.save(full, fullName); err != nil {
		return model.ImagePaths{}, err
	}
	thumb := imaging.Fill(img, thumbSide, thumbSide, imaging.Center, imaging.Lanczos)
	if err := m.save(thumb, thumbName); err != nil {
		_ = os.Remove(filepath.Join(m.Dir, fullName))
		return model.ImagePaths{}, err
	}

	return model.ImagePaths{
		FullSize:  path.Join(m.URLPrefix, fullName),
		Thumbnail: path.Join(m.URLPrefix, thumbName),
	}, nil
}

func (m *Images) save(img image.Image, name string) error {
	if err := imaging.Save(img, filepath.Join(m.Dir, name), imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Remove deletes the files behind p. Only the base name of each public
// path is used, so nothing outside Dir can be touched. Files that are
// already gone are not reported.
func (m *Images) Remove(p model.ImagePaths) []error {
	var errs []error
	for _, public := range []string{p.FullSize, p.Thumbnail} {
		if public == "" {
			continue
		}
		base := path.Base(public)
		if base == "." || base == "/" || base == ".." {
			continue
		}
		if err := os.Remove(filepath.Join(m.Dir, base)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errs
}
