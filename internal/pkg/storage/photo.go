package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	PhotoSize    = 400
	photoQuality = 80
	// MaxPhotoBytes caps the upload read before decoding.
	MaxPhotoBytes = 10 << 20
)

var ErrUnsupportedImage = errors.New("unsupported image: only jpg, jpeg and png are allowed")

// IsImageExt reports whether filename has an accepted photo extension.
func IsImageExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// CompressPhoto decodes r, honours EXIF orientation, center-crops to a
// PhotoSize square and re-encodes as JPEG.
func CompressPhoto(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(io.LimitReader(r, MaxPhotoBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	thumb := imaging.Fill(img, PhotoSize, PhotoSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(photoQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
