package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	path, err := s.Upload(ctx, strings.NewReader("hello"), "photos/u1/a.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "photos/u1/a.jpg", path)
	assert.Equal(t, "/uploads/photos/u1/a.jpg", s.URL(path))

	ok, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, path))
	require.NoError(t, s.Delete(ctx, path))
	ok, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_FailedWriteLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), iotest.ErrReader(errors.New("disk gone")), "photos/u1/b.jpg", "image/jpeg")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "photos", "u1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_TraversalStaysInside(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	path, err := s.Upload(context.Background(), strings.NewReader("x"), "../../etc/evil.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etc/evil.txt", path)

	_, err = s.Upload(context.Background(), strings.NewReader("x"), "..", "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestCompressPhoto(t *testing.T) {
	src := imaging.New(1200, 800, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	out, err := CompressPhoto(&buf)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, PhotoSize, img.Bounds().Dx())
	assert.Equal(t, PhotoSize, img.Bounds().Dy())
}

func TestCompressPhoto_RejectsGarbage(t *testing.T) {
	_, err := CompressPhoto(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestIsImageExt(t *testing.T) {
	assert.True(t, IsImageExt("me.JPG"))
	assert.True(t, IsImageExt("me.png"))
	assert.False(t, IsImageExt("me.gif"))
}
