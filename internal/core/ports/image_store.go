package ports

import (
	"context"
	"io"
)

// Image is a validated profile image upload.
type Image struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists profile images and returns a reference usable as
// User.ProfileImage.
type ImageStore interface {
	Save(ctx context.Context, img Image) (string, error)
	Delete(ctx context.Context, ref string) error
}
