// Package imagestore saves uploaded product images to a local directory,
// re-encoded as JPEG and scaled down to a maximum width.
package imagestore

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var ErrUnsupportedFormat = errors.New("unsupported image format, only PNG, JPG and JPEG are allowed")

type Store struct {
	dir       string
	urlPrefix string
	maxWidth  uint
}

func New(dir, urlPrefix string, maxWidth uint) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if maxWidth == 0 {
		maxWidth = 800
	}
	return &Store{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/"), maxWidth: maxWidth}, nil
}

func (s *Store) Dir() string { return s.dir }

func decode(r io.Reader, filename string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	}
	return nil, ErrUnsupportedFormat
}

// Save decodes the upload, resizes it and returns the public URL.
func (s *Store) Save(r io.Reader, filename string) (string, error) {
	img, err := decode(r, filename)
	if errors.Is(err, ErrUnsupportedFormat) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	name := uuid.NewString() + ".jpg"
	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return path.Join(s.urlPrefix, name), nil
}

// Remove deletes a file previously returned by Save. URLs outside the store are ignored.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, path.Base(url)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
