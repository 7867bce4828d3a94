package middleware

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

const (
	// ImageField is the multipart field carrying a profile picture.
	ImageField = "profileImage"
	// MaxImageSize is the largest accepted profile picture in bytes.
	MaxImageSize = 1 << 20

	keyImage     = "profile_image"
	keyUploadErr = "upload_error"
)

var imageTypes = map[string][]string{
	".jpeg": {"image/jpeg"},
	".jpg":  {"image/jpeg"},
	".png":  {"image/png"},
}

// ImageUpload validates an optional profile picture in the multipart form.
// Requests without the field pass through untouched. A rejected file does not
// stop the request: handlers decide what to do through UploadError.
func ImageUpload() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			img, closer, err := acceptImage(c)
			if closer != nil {
				defer closer.Close()
			}
			switch {
			case err != nil:
				c.Set(keyUploadErr, err)
			case img != nil:
				c.Set(keyImage, img)
			}
			return next(c)
		}
	}
}

func acceptImage(c echo.Context) (*ports.Image, io.Closer, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil, nil
	}

	fh, err := c.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, domain.Validation(domain.ErrInvalidImage)
	}
	if fh.Size > MaxImageSize {
		return nil, nil, domain.Validation(domain.ErrImageTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowed, ok := imageTypes[ext]
	if !ok {
		return nil, nil, domain.Validation(domain.ErrInvalidImage)
	}
	declared, _, err := mime.ParseMediaType(fh.Header.Get(echo.HeaderContentType))
	if err != nil || !slices.Contains(allowed, declared) {
		return nil, nil, domain.Validation(domain.ErrInvalidImage)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, domain.Validation(domain.ErrInvalidImage)
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil || !slices.Contains(allowed, detected.String()) {
		return nil, f, domain.Validation(domain.ErrInvalidImage)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, f, domain.Validation(domain.ErrInvalidImage)
	}

	return &ports.Image{
		Name:        fh.Filename,
		ContentType: detected.String(),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

// ImageFrom returns the image accepted by ImageUpload, or nil.
func ImageFrom(c echo.Context) *ports.Image {
	img, _ := c.Get(keyImage).(*ports.Image)
	return img
}

// UploadError returns why ImageUpload rejected the file, or nil.
func UploadError(c echo.Context) error {
	err, _ := c.Get(keyUploadErr).(error)
	return err
}
