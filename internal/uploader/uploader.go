package uploader

import (
	"context"
	"errors"
	"io"
)

var ErrNotConfigured = errors.New("image storage not configured")

// Uploader stores an image and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, folder string, filename string, r io.Reader) (string, error)
}

// Disabled is used when no storage backend is configured.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrNotConfigured
}
